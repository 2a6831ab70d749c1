package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/library-admin-api/internal/dto"
	"github.com/noah-isme/library-admin-api/internal/models"
	"github.com/noah-isme/library-admin-api/internal/service"
	"github.com/noah-isme/library-admin-api/pkg/response"
)

type bookService interface {
	Create(ctx context.Context, req service.CreateBookRequest) (*models.Book, error)
	List(ctx context.Context, req service.BookListRequest) ([]models.Book, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Book, error)
	BulkUpdate(ctx context.Context, reqs []service.UpdateBookRequest) ([]models.Book, error)
	BulkDelete(ctx context.Context, ids []string) (int64, error)
}

// BookHandler exposes catalog endpoints.
type BookHandler struct {
	books bookService
}

// NewBookHandler constructs BookHandler.
func NewBookHandler(books bookService) *BookHandler {
	return &BookHandler{books: books}
}

// List godoc
// @Summary List books
// @Tags Books
// @Produce json
// @Param category query string false "Category"
// @Param language query string false "Language"
// @Param search query string false "Search by name or author"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books [get]
func (h *BookHandler) List(c *gin.Context) {
	books, pagination, err := h.books.List(c.Request.Context(), service.BookListRequest{
		Category: strings.TrimSpace(c.Query("category")),
		Language: strings.TrimSpace(c.Query("language")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     pageQuery(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books, pagination)
}

// Get godoc
// @Summary Get book detail
// @Tags Books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	book, err := h.books.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// Create godoc
// @Summary Add a book to the catalog
// @Tags Books
// @Accept json
// @Produce json
// @Param payload body service.CreateBookRequest true "Book payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req service.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	book, err := h.books.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, book)
}

// BulkUpdate godoc
// @Summary Update several books at once
// @Description Applies every change or none of them
// @Tags Books
// @Accept json
// @Produce json
// @Param payload body []service.UpdateBookRequest true "Books"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /books/bulk [put]
func (h *BookHandler) BulkUpdate(c *gin.Context) {
	var reqs []service.UpdateBookRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	books, err := h.books.BulkUpdate(c.Request.Context(), reqs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books, nil)
}

// BulkDelete godoc
// @Summary Remove books
// @Description Unknown IDs are ignored
// @Tags Books
// @Accept json
// @Produce json
// @Param payload body dto.BulkDeleteRequest true "IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books/bulk-delete [post]
func (h *BookHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	deleted, err := h.books.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.BulkDeleteResponse{Deleted: deleted}, nil)
}
