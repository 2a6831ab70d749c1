package dto

import (
	"time"

	"github.com/noah-isme/library-admin-api/internal/models"
)

// DashboardResponse is the aggregated librarian dashboard.
type DashboardResponse struct {
	Counts               models.LibraryCounts `json:"counts"`
	TopIssuedBooks       []models.NamedCount  `json:"top_issued_books"`
	LowStockBooks        []LowStockBook       `json:"low_stock_books"`
	CategoryDistribution []models.NamedCount  `json:"category_distribution"`
	MonthlyTrend         []MonthlyTrendPoint  `json:"monthly_trend"`
	RecentActivity       []RecentLoan         `json:"recent_activity"`
	GeneratedAt          time.Time            `json:"generated_at"`
}

// LowStockBook names a title that is nearly unavailable.
type LowStockBook struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Author   string `json:"author"`
	Quantity int    `json:"quantity"`
}

// MonthlyTrendPoint carries issued and returned counts for one month.
type MonthlyTrendPoint struct {
	Label    string `json:"label"`
	Issued   int    `json:"issued"`
	Returned int    `json:"returned"`
}

// RecentLoan is an entry of the recent activity feed.
type RecentLoan struct {
	ID          string           `json:"id"`
	StudentName string           `json:"student_name"`
	BookName    string           `json:"book_name"`
	IssueDate   time.Time        `json:"issue_date"`
	DueDate     time.Time        `json:"due_date"`
	State       models.LoanState `json:"state"`
	Overdue     bool             `json:"overdue"`
}
