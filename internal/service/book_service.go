package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/library-admin-api/internal/models"
	"github.com/noah-isme/library-admin-api/internal/repository"
	appErrors "github.com/noah-isme/library-admin-api/pkg/errors"
)

type bookRepository interface {
	List(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error)
	FindByID(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	BulkUpdate(ctx context.Context, books []models.Book) error
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// dashboardInvalidator drops cached dashboard payloads after a mutation.
type dashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// CreateBookRequest holds the payload for registering a title.
type CreateBookRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Author   string `json:"author" validate:"required,max=40"`
	Category string `json:"category" validate:"omitempty,book_category"`
	Language string `json:"language" validate:"omitempty,book_language"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// book builds the model, defaulting category to Education and language to
// English.
func (r CreateBookRequest) book(id string) models.Book {
	book := models.Book{
		ID:       id,
		Name:     r.Name,
		Author:   r.Author,
		Category: models.BookCategory(r.Category),
		Language: models.BookLanguage(r.Language),
		Quantity: r.Quantity,
	}
	if book.Category == "" {
		book.Category = models.CategoryEducation
	}
	if book.Language == "" {
		book.Language = models.LanguageEnglish
	}
	return book
}

// UpdateBookRequest is one row of a bulk catalog update.
type UpdateBookRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	CreateBookRequest
}

// BookListRequest carries catalog listing parameters.
type BookListRequest struct {
	Category string
	Language string
	Search   string
	Page     int
}

// BookService handles catalog use-cases.
type BookService struct {
	repo        bookRepository
	invalidator dashboardInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewBookService constructs the catalog service. invalidator may be nil.
func NewBookService(repo bookRepository, invalidator dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *BookService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// Create registers a new title with its initial stock.
func (s *BookService) Create(ctx context.Context, req CreateBookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid book payload")
	}
	created := req.book("")
	book := &created
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, internalError(err, "failed to create book")
	}
	s.invalidate(ctx)
	return book, nil
}

// List returns a page of books sorted by name.
func (s *BookService) List(ctx context.Context, req BookListRequest) ([]models.Book, *models.Pagination, error) {
	filter := models.BookFilter{Search: req.Search, PageSize: models.DefaultPageSize}
	if req.Category != "" {
		category := models.BookCategory(req.Category)
		if !category.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
		}
		filter.Category = &category
	}
	if req.Language != "" {
		language := models.BookLanguage(req.Language)
		if !language.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown language")
		}
		filter.Language = &language
	}
	books, pagination, err := listPage(req.Page, filter.PageSize, func(page int) ([]models.Book, int, error) {
		filter.Page = page
		return s.repo.List(ctx, filter)
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to list books")
	}
	return books, pagination, nil
}

// Get returns a single book.
func (s *BookService) Get(ctx context.Context, id string) (*models.Book, error) {
	if err := s.validator.Var(id, "required,uuid"); err != nil {
		return nil, validationError(err, "invalid book id")
	}
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		}
		return nil, internalError(err, "failed to load book")
	}
	return book, nil
}

// BulkUpdate validates every row and then applies the batch atomically.
func (s *BookService) BulkUpdate(ctx context.Context, reqs []UpdateBookRequest) ([]models.Book, error) {
	if len(reqs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one book is required")
	}
	books := make([]models.Book, 0, len(reqs))
	for _, req := range reqs {
		if err := s.validator.Struct(req); err != nil {
			return nil, validationError(err, "invalid book payload")
		}
		books = append(books, req.book(req.ID))
	}
	if err := s.repo.BulkUpdate(ctx, books); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "book not found")
		}
		return nil, internalError(err, "failed to update books")
	}
	s.invalidate(ctx)
	return books, nil
}

// BulkDelete removes the listed books. Unknown IDs are ignored.
func (s *BookService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if err := validateIDs(s.validator, ids); err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, internalError(err, "failed to delete books")
	}
	s.invalidate(ctx)
	return deleted, nil
}

func (s *BookService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
}
