package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/library-admin-api/internal/models"
	"github.com/noah-isme/library-admin-api/pkg/database"
)

const bookColumns = "b.id, b.name, b.author, b.category, b.language, b.quantity, b.created_at, b.updated_at"

// BookRepository manages persistence for catalog titles.
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository constructs a BookRepository.
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

// List returns books matching the filter ordered by name, with the total
// number of matches.
func (r *BookRepository) List(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error) {
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("b.category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}
	if filter.Language != nil {
		conditions = append(conditions, fmt.Sprintf("b.language = $%d", len(args)+1))
		args = append(args, *filter.Language)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(b.name) LIKE $%d OR LOWER(b.author) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("FROM books b WHERE %s", strings.Join(conditions, " AND "))
	size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY b.name ASC, b.id ASC LIMIT %d OFFSET %d", bookColumns, base, size, offset)
	var books []models.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	return books, total, nil
}

// FindByID fetches a book by ID.
func (r *BookRepository) FindByID(ctx context.Context, id string) (*models.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books b WHERE b.id = $1", bookColumns)
	var book models.Book
	if err := r.db.GetContext(ctx, &book, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &book, nil
}

// Create inserts a new book.
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now
	const query = `INSERT INTO books (id, name, author, category, language, quantity, created_at, updated_at)
        VALUES (:id, :name, :author, :category, :language, :quantity, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// BulkUpdate applies every row in one transaction. An unknown ID aborts the
// whole batch with ErrBookNotFound.
func (r *BookRepository) BulkUpdate(ctx context.Context, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}
	const query = `UPDATE books SET name = :name, author = :author, category = :category, language = :language, quantity = :quantity, updated_at = :updated_at WHERE id = :id`
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()
		for i := range books {
			books[i].UpdatedAt = now
			res, err := tx.NamedExecContext(ctx, query, books[i])
			if err != nil {
				return fmt.Errorf("update book %s: %w", books[i].ID, err)
			}
			if err := expectOneRow(res, ErrBookNotFound, books[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByIDs removes the listed books and reports how many rows went away.
// IDs that do not exist are ignored.
func (r *BookRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete books: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete books: %w", err)
	}
	return affected, nil
}

func expectOneRow(res sql.Result, notFound error, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}

func pageWindow(page, size int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = models.DefaultPageSize
	}
	return size, (page - 1) * size
}
