package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/library-admin-api/internal/models"
)

const (
	topIssuedLimit      = 5
	lowStockThreshold   = 3
	lowStockLimit       = 10
	categoryLimit       = 7
	recentActivityLimit = 15
)

// ReportRepository runs the read-only aggregates behind the dashboard.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Counts gathers the headline figures as of today.
func (r *ReportRepository) Counts(ctx context.Context, today time.Time) (*models.LibraryCounts, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM books) AS total_books,
        (SELECT COUNT(*) FROM books WHERE quantity > 0) AS available_books,
        (SELECT COUNT(*) FROM loans WHERE returned = FALSE) AS active_loans,
        (SELECT COUNT(*) FROM students) AS members,
        (SELECT COUNT(*) FROM loans WHERE returned = FALSE AND due_date < $1) AS overdue_loans,
        (SELECT COUNT(*) FROM books WHERE created_at >= $2) AS books_added_this_month`
	var counts models.LibraryCounts
	if err := r.db.GetContext(ctx, &counts, query, models.DateOf(today), models.MonthStart(today)); err != nil {
		return nil, fmt.Errorf("library counts: %w", err)
	}
	return &counts, nil
}

// TopIssued ranks book-name snapshots by how many loans carry them.
func (r *ReportRepository) TopIssued(ctx context.Context) ([]models.NamedCount, error) {
	query := fmt.Sprintf(`SELECT book_name AS name, COUNT(*) AS count FROM loans
        GROUP BY book_name ORDER BY count DESC, book_name ASC LIMIT %d`, topIssuedLimit)
	var rows []models.NamedCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("top issued books: %w", err)
	}
	return rows, nil
}

// LowStock lists books with fewer than three copies on the shelf.
func (r *ReportRepository) LowStock(ctx context.Context) ([]models.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books b WHERE b.quantity < %d ORDER BY b.quantity ASC, b.name ASC LIMIT %d",
		bookColumns, lowStockThreshold, lowStockLimit)
	var books []models.Book
	if err := r.db.SelectContext(ctx, &books, query); err != nil {
		return nil, fmt.Errorf("low stock books: %w", err)
	}
	return books, nil
}

// CategoryDistribution counts titles per category, largest first.
func (r *ReportRepository) CategoryDistribution(ctx context.Context) ([]models.NamedCount, error) {
	query := fmt.Sprintf(`SELECT category AS name, COUNT(*) AS count FROM books
        GROUP BY category ORDER BY count DESC, category ASC LIMIT %d`, categoryLimit)
	var rows []models.NamedCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("category distribution: %w", err)
	}
	return rows, nil
}

// IssuedPerMonth counts loans by issue month in [from, to).
func (r *ReportRepository) IssuedPerMonth(ctx context.Context, from, to time.Time) ([]models.MonthlyCount, error) {
	const query = `SELECT date_trunc('month', issue_date)::date AS month, COUNT(*) AS count FROM loans
        WHERE issue_date >= $1 AND issue_date < $2 GROUP BY 1 ORDER BY 1`
	var rows []models.MonthlyCount
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("issued per month: %w", err)
	}
	return rows, nil
}

// ReturnedPerMonth counts returned loans by due month in [from, to).
func (r *ReportRepository) ReturnedPerMonth(ctx context.Context, from, to time.Time) ([]models.MonthlyCount, error) {
	const query = `SELECT date_trunc('month', due_date)::date AS month, COUNT(*) AS count FROM loans
        WHERE returned = TRUE AND due_date >= $1 AND due_date < $2 GROUP BY 1 ORDER BY 1`
	var rows []models.MonthlyCount
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("returned per month: %w", err)
	}
	return rows, nil
}

// RecentLoans returns the most recently issued loans, newest first.
func (r *ReportRepository) RecentLoans(ctx context.Context) ([]models.LoanDetail, error) {
	query := fmt.Sprintf(`SELECT %s,
        s.name AS student_name, es.name AS enrollment_student_name, b.name AS live_book_name
        %s ORDER BY l.issue_date DESC, l.created_at DESC LIMIT %d`, loanColumns, loanDetailFrom, recentActivityLimit)
	var loans []models.LoanDetail
	if err := r.db.SelectContext(ctx, &loans, query); err != nil {
		return nil, fmt.Errorf("recent loans: %w", err)
	}
	return loans, nil
}
