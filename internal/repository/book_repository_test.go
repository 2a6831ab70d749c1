package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/library-admin-api/internal/models"
)

var bookRowColumns = []string{"id", "name", "author", "category", "language", "quantity", "created_at", "updated_at"}

func TestBookListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	now := time.Now()
	category := models.CategoryFiction
	mock.ExpectQuery(regexp.QuoteMeta("FROM books b WHERE 1=1 AND b.category = $1 AND (LOWER(b.name) LIKE $2 OR LOWER(b.author) LIKE $2) ORDER BY b.name ASC, b.id ASC LIMIT 10 OFFSET 10")).
		WithArgs(string(category), "%dune%").
		WillReturnRows(sqlmock.NewRows(bookRowColumns).AddRow("b1", "Dune", "Herbert", "Fiction", "English", 2, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM books b WHERE 1=1 AND b.category = $1")).
		WithArgs(string(category), "%dune%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	books, total, err := repo.List(context.Background(), models.BookFilter{Category: &category, Search: "DUNE", Page: 2})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Name)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectQuery("FROM books b WHERE b.id = \\$1").WithArgs("missing").WillReturnRows(sqlmock.NewRows(bookRowColumns))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectExec("INSERT INTO books").WillReturnResult(sqlmock.NewResult(1, 1))

	book := &models.Book{Name: "Dune", Author: "Herbert", Category: models.CategoryFiction, Language: models.LanguageEnglish, Quantity: 3}
	require.NoError(t, repo.Create(context.Background(), book))
	assert.NotEmpty(t, book.ID)
	assert.False(t, book.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookBulkUpdateUnknownIDRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE books SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.BulkUpdate(context.Background(), []models.Book{{ID: "b1", Name: "Dune"}, {ID: "ghost", Name: "Emma"}})
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookBulkUpdateCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.BulkUpdate(context.Background(), []models.Book{{ID: "b1", Name: "Dune", Quantity: 4}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookDeleteByIDsIgnoresMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	ids := []string{"b1", "ghost"}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id = ANY($1)")).
		WithArgs(pq.Array(ids)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteByIDs(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookDeleteByIDsPropagatesError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectExec("DELETE FROM books").WillReturnError(errors.New("boom"))

	_, err := repo.DeleteByIDs(context.Background(), []string{"b1"})
	assert.Error(t, err)
}

func TestPageWindow(t *testing.T) {
	limit, offset := pageWindow(0, 0)
	assert.Equal(t, models.DefaultPageSize, limit)
	assert.Equal(t, 0, offset)

	limit, offset = pageWindow(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)
}
