package dto

import "time"

// ActiveLoan is one row of the active loan listing.
type ActiveLoan struct {
	ID          string    `json:"id"`
	StudentName string    `json:"student_name"`
	Enrollment  string    `json:"enrollment"`
	BookName    string    `json:"book_name"`
	IssueDate   time.Time `json:"issue_date"`
	DueDate     time.Time `json:"due_date"`
	Fine        int64     `json:"fine"`
	Overdue     bool      `json:"overdue"`
}

// BulkDeleteRequest lists the IDs to remove.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteResponse reports how many rows were removed.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}
