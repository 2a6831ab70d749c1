package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/library-admin-api/internal/models"
	"github.com/noah-isme/library-admin-api/pkg/database"
)

const loanColumns = "l.id, l.book_id, l.student_id, l.enrollment, l.book_name, l.issue_date, l.due_date, l.returned, l.returned_at, l.created_at"

const loanDetailFrom = `FROM loans l
        LEFT JOIN students s ON s.id = l.student_id
        LEFT JOIN students es ON es.enrollment = l.enrollment
        LEFT JOIN books b ON b.id = l.book_id`

// LoanRepository persists the loan ledger and keeps book stock in step with it.
type LoanRepository struct {
	db *sqlx.DB
}

// NewLoanRepository constructs a LoanRepository.
func NewLoanRepository(db *sqlx.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// Issue lends one copy of a book. The book row is locked for the duration of
// the transaction and the decrement is guarded by quantity > 0, so two
// concurrent issues of the last copy cannot both succeed.
func (r *LoanRepository) Issue(ctx context.Context, req models.NewLoan) (*models.Loan, error) {
	var loan *models.Loan
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var book struct {
			Name     string `db:"name"`
			Quantity int    `db:"quantity"`
		}
		if err := tx.GetContext(ctx, &book, `SELECT name, quantity FROM books WHERE id = $1 FOR UPDATE`, req.BookID); err != nil {
			if err == sql.ErrNoRows {
				return ErrBookNotFound
			}
			return fmt.Errorf("lock book: %w", err)
		}
		if book.Quantity <= 0 {
			return ErrOutOfStock
		}

		var enrollment string
		if err := tx.GetContext(ctx, &enrollment, `SELECT enrollment FROM students WHERE id = $1`, req.StudentID); err != nil {
			if err == sql.ErrNoRows {
				return ErrStudentNotFound
			}
			return fmt.Errorf("load student: %w", err)
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `UPDATE books SET quantity = quantity - 1, updated_at = $2 WHERE id = $1 AND quantity > 0`, req.BookID, now)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		} else if affected == 0 {
			return ErrOutOfStock
		}

		bookID, studentID := req.BookID, req.StudentID
		created := &models.Loan{
			ID:         uuid.NewString(),
			BookID:     &bookID,
			StudentID:  &studentID,
			Enrollment: enrollment,
			BookName:   book.Name,
			IssueDate:  models.DateOf(req.IssueDate),
			DueDate:    models.DateOf(req.DueDate),
			CreatedAt:  now,
		}
		const insert = `INSERT INTO loans (id, book_id, student_id, enrollment, book_name, issue_date, due_date, returned, created_at)
        VALUES (:id, :book_id, :student_id, :enrollment, :book_name, :issue_date, :due_date, :returned, :created_at)`
		if _, err := tx.NamedExecContext(ctx, insert, created); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		loan = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return marks a loan returned and puts the copy back on the shelf when the
// book still exists. A loan that is already returned is reported with
// ErrAlreadyReturned alongside its current state and nothing is written.
func (r *LoanRepository) Return(ctx context.Context, id string, at time.Time) (*models.Loan, error) {
	var loan models.Loan
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf("SELECT %s FROM loans l WHERE l.id = $1 FOR UPDATE", loanColumns)
		if err := tx.GetContext(ctx, &loan, query, id); err != nil {
			if err == sql.ErrNoRows {
				return ErrLoanNotFound
			}
			return fmt.Errorf("lock loan: %w", err)
		}
		if loan.Returned {
			return ErrAlreadyReturned
		}

		at = at.UTC()
		if loan.BookID != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE books SET quantity = quantity + 1, updated_at = $2 WHERE id = $1`, *loan.BookID, at); err != nil {
				return fmt.Errorf("increment stock: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE loans SET returned = TRUE, returned_at = $2 WHERE id = $1`, id, at); err != nil {
			return fmt.Errorf("mark loan returned: %w", err)
		}
		loan.Returned = true
		loan.ReturnedAt = &at
		return nil
	})
	if err != nil {
		if err == ErrAlreadyReturned {
			return &loan, err
		}
		return nil, err
	}
	return &loan, nil
}

// FindByID fetches a loan by ID.
func (r *LoanRepository) FindByID(ctx context.Context, id string) (*models.Loan, error) {
	query := fmt.Sprintf("SELECT %s FROM loans l WHERE l.id = $1", loanColumns)
	var loan models.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("find loan: %w", err)
	}
	return &loan, nil
}

// ListActive returns a page of unreturned loans ordered by book name.
func (r *LoanRepository) ListActive(ctx context.Context, filter models.LoanFilter) ([]models.LoanDetail, int, error) {
	where, args := activeLoanWhere(filter)
	size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT %s,
        s.name AS student_name, es.name AS enrollment_student_name, b.name AS live_book_name
        %s %s ORDER BY l.book_name ASC, l.issue_date ASC, l.id ASC LIMIT %d OFFSET %d`, loanColumns, loanDetailFrom, where, size, offset)
	var loans []models.LoanDetail
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list active loans: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM loans l "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count active loans: %w", err)
	}
	return loans, total, nil
}

// ListAllActive returns every unreturned loan matching the filter, ignoring
// pagination. It backs the export endpoint.
func (r *LoanRepository) ListAllActive(ctx context.Context, filter models.LoanFilter) ([]models.LoanDetail, error) {
	where, args := activeLoanWhere(filter)
	query := fmt.Sprintf(`SELECT %s,
        s.name AS student_name, es.name AS enrollment_student_name, b.name AS live_book_name
        %s %s ORDER BY l.book_name ASC, l.issue_date ASC, l.id ASC`, loanColumns, loanDetailFrom, where)
	var loans []models.LoanDetail
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("list all active loans: %w", err)
	}
	return loans, nil
}

// UpdateSnapshots corrects enrollment and book name snapshots in one
// transaction. Dates and the returned flag are left alone.
func (r *LoanRepository) UpdateSnapshots(ctx context.Context, updates []models.LoanSnapshotUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	const query = `UPDATE loans SET enrollment = :enrollment, book_name = :book_name WHERE id = :id`
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, update := range updates {
			res, err := tx.NamedExecContext(ctx, query, update)
			if err != nil {
				return fmt.Errorf("update loan %s: %w", update.ID, err)
			}
			if err := expectOneRow(res, ErrLoanNotFound, update.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func activeLoanWhere(filter models.LoanFilter) (string, []interface{}) {
	where := "WHERE l.returned = FALSE"
	var args []interface{}
	if filter.OverdueOnly {
		args = append(args, models.DateOf(filter.Today))
		where += fmt.Sprintf(" AND l.due_date < $%d", len(args))
	}
	return where, args
}
