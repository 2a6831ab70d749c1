package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/library-admin-api/internal/dto"
	"github.com/noah-isme/library-admin-api/internal/models"
	"github.com/noah-isme/library-admin-api/internal/service"
	appErrors "github.com/noah-isme/library-admin-api/pkg/errors"
	"github.com/noah-isme/library-admin-api/pkg/response"
)

type loanService interface {
	Issue(ctx context.Context, req service.IssueLoanRequest) (*models.Loan, error)
	Return(ctx context.Context, id string) (*models.Loan, error)
	ListActive(ctx context.Context, req service.ActiveLoanRequest) ([]dto.ActiveLoan, *models.Pagination, error)
	BulkUpdate(ctx context.Context, reqs []service.UpdateLoanRequest) ([]models.LoanSnapshotUpdate, error)
}

type loanExporter interface {
	ActiveLoans(ctx context.Context, format string, overdueOnly bool) (*service.ExportFile, error)
}

// LoanHandler exposes the loan ledger.
type LoanHandler struct {
	loans    loanService
	exporter loanExporter
}

// NewLoanHandler constructs LoanHandler.
func NewLoanHandler(loans loanService, exporter loanExporter) *LoanHandler {
	return &LoanHandler{loans: loans, exporter: exporter}
}

// Issue godoc
// @Summary Lend a book to a student
// @Description due_date defaults to the configured loan period
// @Tags Loans
// @Accept json
// @Produce json
// @Param payload body service.IssueLoanRequest true "Loan payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /loans [post]
func (h *LoanHandler) Issue(c *gin.Context) {
	var req service.IssueLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	loan, err := h.loans.Issue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, loan)
}

// Return godoc
// @Summary Mark a loan returned
// @Description Returning twice leaves the ledger unchanged and reports ALREADY_RETURNED in meta
// @Tags Loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /loans/{id}/return [post]
func (h *LoanHandler) Return(c *gin.Context) {
	loan, err := h.loans.Return(c.Request.Context(), c.Param("id"))
	if err != nil {
		if notice, ok := appErrors.AsNotice(err); ok && loan != nil {
			response.Notice(c, http.StatusOK, loan, notice)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, loan, nil)
}

// Active godoc
// @Summary List unreturned loans
// @Tags Loans
// @Produce json
// @Param overdue_only query bool false "Only overdue loans"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /loans/active [get]
func (h *LoanHandler) Active(c *gin.Context) {
	loans, pagination, err := h.loans.ListActive(c.Request.Context(), service.ActiveLoanRequest{
		OverdueOnly: boolQuery(c, "overdue_only"),
		Page:        pageQuery(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, loans, pagination)
}

// Export godoc
// @Summary Download unreturned loans
// @Tags Loans
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param overdue_only query bool false "Only overdue loans"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /loans/export [get]
func (h *LoanHandler) Export(c *gin.Context) {
	file, err := h.exporter.ActiveLoans(c.Request.Context(), c.Query("format"), boolQuery(c, "overdue_only"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// BulkUpdate godoc
// @Summary Correct loan snapshots
// @Description Rewrites enrollment and book_name of several loans at once
// @Tags Loans
// @Accept json
// @Produce json
// @Param payload body []service.UpdateLoanRequest true "Loans"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /loans/bulk [put]
func (h *LoanHandler) BulkUpdate(c *gin.Context) {
	var reqs []service.UpdateLoanRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	updated, err := h.loans.BulkUpdate(c.Request.Context(), reqs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}
