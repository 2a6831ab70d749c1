package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/library-admin-api/internal/models"
)

var loanDetailColumns = []string{"id", "book_id", "student_id", "enrollment", "book_name", "issue_date", "due_date", "returned", "returned_at", "created_at", "student_name", "enrollment_student_name", "live_book_name"}

func sampleNewLoan() models.NewLoan {
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return models.NewLoan{BookID: "book-1", StudentID: "student-1", IssueDate: issue, DueDate: issue.AddDate(0, 0, 15)}
}

func TestLoanIssueCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, quantity FROM books WHERE id = $1 FOR UPDATE")).
		WithArgs("book-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "quantity"}).AddRow("Dune", 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT enrollment FROM students WHERE id = $1")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"enrollment"}).AddRow("E-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE books SET quantity = quantity - 1")).
		WithArgs("book-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loans").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	loan, err := repo.Issue(context.Background(), sampleNewLoan())
	require.NoError(t, err)
	assert.Equal(t, "Dune", loan.BookName)
	assert.Equal(t, "E-1", loan.Enrollment)
	assert.False(t, loan.Returned)
	assert.NotEmpty(t, loan.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanIssueOutOfStockRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM books WHERE id = \\$1 FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"name", "quantity"}).AddRow("Dune", 0))
	mock.ExpectRollback()

	_, err := repo.Issue(context.Background(), sampleNewLoan())
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanIssueLostRaceOnDecrement(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"name", "quantity"}).AddRow("Dune", 1))
	mock.ExpectQuery("FROM students").
		WillReturnRows(sqlmock.NewRows([]string{"enrollment"}).AddRow("E-1"))
	mock.ExpectExec("UPDATE books SET quantity = quantity - 1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Issue(context.Background(), sampleNewLoan())
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanIssueMissingReferences(t *testing.T) {
	t.Run("book", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		repo := NewLoanRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"name", "quantity"}))
		mock.ExpectRollback()

		_, err := repo.Issue(context.Background(), sampleNewLoan())
		assert.ErrorIs(t, err, ErrBookNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("student", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		repo := NewLoanRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").
			WillReturnRows(sqlmock.NewRows([]string{"name", "quantity"}).AddRow("Dune", 2))
		mock.ExpectQuery("FROM students").WillReturnRows(sqlmock.NewRows([]string{"enrollment"}))
		mock.ExpectRollback()

		_, err := repo.Issue(context.Background(), sampleNewLoan())
		assert.ErrorIs(t, err, ErrStudentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoanIssueInsertFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"name", "quantity"}).AddRow("Dune", 2))
	mock.ExpectQuery("FROM students").
		WillReturnRows(sqlmock.NewRows([]string{"enrollment"}).AddRow("E-1"))
	mock.ExpectExec("UPDATE books").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loans").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Issue(context.Background(), sampleNewLoan())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var loanRowColumns = []string{"id", "book_id", "student_id", "enrollment", "book_name", "issue_date", "due_date", "returned", "returned_at", "created_at"}

func TestLoanReturnRestoresStock(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM loans l WHERE l.id = $1 FOR UPDATE")).
		WithArgs("loan-1").
		WillReturnRows(sqlmock.NewRows(loanRowColumns).AddRow("loan-1", "book-1", "student-1", "E-1", "Dune", issue, issue.AddDate(0, 0, 15), false, nil, issue))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE books SET quantity = quantity + 1")).
		WithArgs("book-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loans SET returned = TRUE, returned_at = $2 WHERE id = $1")).
		WithArgs("loan-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	loan, err := repo.Return(context.Background(), "loan-1", at)
	require.NoError(t, err)
	assert.True(t, loan.Returned)
	require.NotNil(t, loan.ReturnedAt)
	assert.Equal(t, at, *loan.ReturnedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanReturnDeletedBookSkipsStock(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(loanRowColumns).AddRow("loan-1", nil, nil, "E-1", "Dune", issue, issue, false, nil, issue))
	mock.ExpectExec("UPDATE loans SET returned = TRUE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.Return(context.Background(), "loan-1", time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanReturnAlreadyReturned(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	returnedAt := issue.AddDate(0, 0, 3)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(loanRowColumns).AddRow("loan-1", "book-1", "student-1", "E-1", "Dune", issue, issue, true, returnedAt, issue))
	mock.ExpectRollback()

	loan, err := repo.Return(context.Background(), "loan-1", time.Now())
	assert.ErrorIs(t, err, ErrAlreadyReturned)
	require.NotNil(t, loan)
	assert.True(t, loan.Returned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanReturnNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows(loanRowColumns))
	mock.ExpectRollback()

	_, err := repo.Return(context.Background(), "missing", time.Now())
	assert.ErrorIs(t, err, ErrLoanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveOverdueOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	today := time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(loanDetailColumns).
		AddRow("loan-1", nil, "student-1", "E-1", "Dune", issue, issue.AddDate(0, 0, 15), false, nil, issue, "Ayesha", "Ayesha", nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.returned = FALSE AND l.due_date < $1 ORDER BY l.book_name ASC, l.issue_date ASC, l.id ASC LIMIT 10 OFFSET 0")).
		WithArgs(models.DateOf(today)).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM loans l WHERE l.returned = FALSE AND l.due_date < $1")).
		WithArgs(models.DateOf(today)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	loans, total, err := repo.ListActive(context.Background(), models.LoanFilter{OverdueOnly: true, Today: today, Page: 1})
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, loans[0].BookID)
	assert.Equal(t, "Ayesha", loans[0].DisplayStudentName())
	assert.Equal(t, "Dune", loans[0].DisplayBookName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllActiveHasNoLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.returned = FALSE ORDER BY l.book_name ASC, l.issue_date ASC, l.id ASC")).
		WillReturnRows(sqlmock.NewRows(loanDetailColumns))

	loans, err := repo.ListAllActive(context.Background(), models.LoanFilter{})
	require.NoError(t, err)
	assert.Empty(t, loans)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSnapshotsUnknownLoanRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE loans SET enrollment").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE loans SET enrollment").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateSnapshots(context.Background(), []models.LoanSnapshotUpdate{
		{ID: "loan-1", Enrollment: "E-1", BookName: "Dune"},
		{ID: "missing", Enrollment: "E-2", BookName: "Emma"},
	})
	assert.ErrorIs(t, err, ErrLoanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
