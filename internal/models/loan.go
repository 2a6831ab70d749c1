package models

import "time"

// LoanState is derived from the returned flag.
type LoanState string

const (
	LoanStateIssued   LoanState = "ISSUED"
	LoanStateReturned LoanState = "RETURNED"
)

// Placeholders used when neither the live reference nor the snapshot resolves.
const (
	UnknownStudentName = "Unknown Student"
	UnknownBookName    = "Unknown Book"
)

// Loan records one copy of a book lent to a student. BookID and StudentID are
// weak references that become nil when the referenced row is deleted;
// Enrollment and BookName are snapshots taken at issue time.
type Loan struct {
	ID         string     `db:"id" json:"id"`
	BookID     *string    `db:"book_id" json:"book_id,omitempty"`
	StudentID  *string    `db:"student_id" json:"student_id,omitempty"`
	Enrollment string     `db:"enrollment" json:"enrollment"`
	BookName   string     `db:"book_name" json:"book_name"`
	IssueDate  time.Time  `db:"issue_date" json:"issue_date"`
	DueDate    time.Time  `db:"due_date" json:"due_date"`
	Returned   bool       `db:"returned" json:"returned"`
	ReturnedAt *time.Time `db:"returned_at" json:"returned_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// State reports the lifecycle state of the loan.
func (l Loan) State() LoanState {
	if l.Returned {
		return LoanStateReturned
	}
	return LoanStateIssued
}

// IsOverdue reports whether the loan is unreturned past its due date on the
// calendar day of today.
func (l Loan) IsOverdue(today time.Time) bool {
	if l.Returned {
		return false
	}
	return DateOf(today).After(DateOf(l.DueDate))
}

// LoanDetail is a loan joined with whatever live names still resolve.
type LoanDetail struct {
	Loan
	StudentName           *string `db:"student_name"`
	EnrollmentStudentName *string `db:"enrollment_student_name"`
	LiveBookName          *string `db:"live_book_name"`
}

// DisplayStudentName resolves the direct reference first, then the student
// currently holding the snapshotted enrollment.
func (d LoanDetail) DisplayStudentName() string {
	if d.StudentName != nil && *d.StudentName != "" {
		return *d.StudentName
	}
	if d.EnrollmentStudentName != nil && *d.EnrollmentStudentName != "" {
		return *d.EnrollmentStudentName
	}
	return UnknownStudentName
}

// DisplayBookName prefers the snapshot and falls back to the live title.
func (d LoanDetail) DisplayBookName() string {
	if d.BookName != "" {
		return d.BookName
	}
	if d.LiveBookName != nil && *d.LiveBookName != "" {
		return *d.LiveBookName
	}
	return UnknownBookName
}

// LoanFilter selects active loans.
type LoanFilter struct {
	OverdueOnly bool
	Today       time.Time
	Page        int
	PageSize    int
}

// NewLoan holds the values the ledger writes when issuing.
type NewLoan struct {
	BookID    string
	StudentID string
	IssueDate time.Time
	DueDate   time.Time
}

// LoanSnapshotUpdate corrects the denormalized fields of a loan.
type LoanSnapshotUpdate struct {
	ID         string `db:"id"`
	Enrollment string `db:"enrollment"`
	BookName   string `db:"book_name"`
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
