package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/library-admin-api/internal/models"
	"github.com/noah-isme/library-admin-api/internal/repository"
	appErrors "github.com/noah-isme/library-admin-api/pkg/errors"
)

type mockBookRepo struct {
	books      map[string]models.Book
	lastFilter models.BookFilter
	listTotal  int
	listCalls  []int
	updated    []models.Book
	deleted    []string
	err        error
}

func (m *mockBookRepo) List(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error) {
	m.lastFilter = filter
	m.listCalls = append(m.listCalls, filter.Page)
	if m.err != nil {
		return nil, 0, m.err
	}
	books := make([]models.Book, 0, len(m.books))
	for _, b := range m.books {
		books = append(books, b)
	}
	return books, m.listTotal, nil
}

func (m *mockBookRepo) FindByID(ctx context.Context, id string) (*models.Book, error) {
	if b, ok := m.books[id]; ok {
		return &b, nil
	}
	return nil, repository.ErrBookNotFound
}

func (m *mockBookRepo) Create(ctx context.Context, book *models.Book) error {
	if m.err != nil {
		return m.err
	}
	if m.books == nil {
		m.books = map[string]models.Book{}
	}
	book.ID = uuid.NewString()
	m.books[book.ID] = *book
	return nil
}

func (m *mockBookRepo) BulkUpdate(ctx context.Context, books []models.Book) error {
	for _, b := range books {
		if _, ok := m.books[b.ID]; !ok {
			return fmt.Errorf("%w: %s", repository.ErrBookNotFound, b.ID)
		}
	}
	m.updated = books
	for _, b := range books {
		m.books[b.ID] = b
	}
	return nil
}

func (m *mockBookRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := m.books[id]; ok {
			delete(m.books, id)
			m.deleted = append(m.deleted, id)
			n++
		}
	}
	return n, nil
}

func validBookRequest() CreateBookRequest {
	return CreateBookRequest{Name: "Dune", Author: "Frank Herbert", Category: "Fiction", Language: "English", Quantity: 2}
}

func TestBookServiceCreate(t *testing.T) {
	repo := &mockBookRepo{}
	invalidator := &countingInvalidator{}
	svc := NewBookService(repo, invalidator, nil, zap.NewNop())

	book, err := svc.Create(context.Background(), validBookRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, models.CategoryFiction, book.Category)
	assert.Equal(t, 2, book.Quantity)
	assert.Equal(t, 1, invalidator.calls)
}

func TestBookServiceCreateAppliesDefaults(t *testing.T) {
	svc := NewBookService(&mockBookRepo{}, nil, nil, zap.NewNop())

	book, err := svc.Create(context.Background(), CreateBookRequest{Name: "Emma", Author: "Jane Austen", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryEducation, book.Category)
	assert.Equal(t, models.LanguageEnglish, book.Language)
}

func TestBookServiceCreateRejectsInvalidEnums(t *testing.T) {
	svc := NewBookService(&mockBookRepo{}, nil, nil, zap.NewNop())

	for name, mutate := range map[string]func(*CreateBookRequest){
		"category": func(r *CreateBookRequest) { r.Category = "Cooking" },
		"language": func(r *CreateBookRequest) { r.Language = "French" },
		"quantity": func(r *CreateBookRequest) { r.Quantity = -1 },
		"name":     func(r *CreateBookRequest) { r.Name = "" },
	} {
		t.Run(name, func(t *testing.T) {
			req := validBookRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestBookServiceListBeyondLastPage(t *testing.T) {
	repo := &mockBookRepo{books: map[string]models.Book{"b1": {ID: "b1", Name: "Dune"}}, listTotal: 21}
	svc := NewBookService(repo, nil, nil, zap.NewNop())

	_, pagination, err := svc.List(context.Background(), BookListRequest{Category: "Fiction", Search: "du", Page: 7})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3}, repo.listCalls)
	assert.Equal(t, 3, pagination.Page)
	assert.Equal(t, 3, pagination.TotalPages)
	require.NotNil(t, repo.lastFilter.Category)
	assert.Equal(t, models.CategoryFiction, *repo.lastFilter.Category)
	assert.Equal(t, models.DefaultPageSize, repo.lastFilter.PageSize)
}

func TestBookServiceListDefaultsToFirstPage(t *testing.T) {
	repo := &mockBookRepo{}
	svc := NewBookService(repo, nil, nil, zap.NewNop())

	books, pagination, err := svc.List(context.Background(), BookListRequest{Page: 0})
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Equal(t, []int{1}, repo.listCalls)
	assert.Equal(t, 1, pagination.Page)

	_, _, err = svc.List(context.Background(), BookListRequest{Language: "Klingon"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookServiceGet(t *testing.T) {
	id := uuid.NewString()
	svc := NewBookService(&mockBookRepo{books: map[string]models.Book{id: {ID: id, Name: "Dune"}}}, nil, nil, zap.NewNop())

	book, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Name)

	_, err = svc.Get(context.Background(), uuid.NewString())
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), "not-a-uuid")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookServiceBulkUpdateIsAllOrNothing(t *testing.T) {
	known := uuid.NewString()
	repo := &mockBookRepo{books: map[string]models.Book{known: {ID: known, Name: "Dune", Quantity: 1}}}
	svc := NewBookService(repo, nil, nil, zap.NewNop())

	update := UpdateBookRequest{ID: known, CreateBookRequest: validBookRequest()}
	update.Quantity = 5
	missing := UpdateBookRequest{ID: uuid.NewString(), CreateBookRequest: validBookRequest()}

	_, err := svc.BulkUpdate(context.Background(), []UpdateBookRequest{update, missing})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, repo.books[known].Quantity)

	invalid := update
	invalid.Category = "Cooking"
	_, err = svc.BulkUpdate(context.Background(), []UpdateBookRequest{update, invalid})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)

	books, err := svc.BulkUpdate(context.Background(), []UpdateBookRequest{update})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 5, repo.books[known].Quantity)
}

func TestBookServiceBulkDeleteIgnoresMissing(t *testing.T) {
	first, second := uuid.NewString(), uuid.NewString()
	repo := &mockBookRepo{books: map[string]models.Book{first: {ID: first}, second: {ID: second}}}
	svc := NewBookService(repo, nil, nil, zap.NewNop())

	deleted, err := svc.BulkDelete(context.Background(), []string{first, second, uuid.NewString()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Empty(t, repo.books)

	_, err = svc.BulkDelete(context.Background(), []string{"999"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.BulkDelete(context.Background(), nil)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
