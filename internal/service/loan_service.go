package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/library-admin-api/internal/dto"
	"github.com/noah-isme/library-admin-api/internal/models"
	"github.com/noah-isme/library-admin-api/internal/repository"
	appErrors "github.com/noah-isme/library-admin-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// Loan event labels recorded in metrics.
const (
	LoanEventIssued   = "issued"
	LoanEventReturned = "returned"
)

type loanRepository interface {
	Issue(ctx context.Context, req models.NewLoan) (*models.Loan, error)
	Return(ctx context.Context, id string, at time.Time) (*models.Loan, error)
	ListActive(ctx context.Context, filter models.LoanFilter) ([]models.LoanDetail, int, error)
	ListAllActive(ctx context.Context, filter models.LoanFilter) ([]models.LoanDetail, error)
	UpdateSnapshots(ctx context.Context, updates []models.LoanSnapshotUpdate) error
}

type loanMetrics interface {
	RecordLoanEvent(event string)
}

// FinePolicy charges a flat amount once a loan is overdue.
type FinePolicy struct {
	OverdueFine int64
}

// Assess returns the fine owed for loan as of today.
func (p FinePolicy) Assess(loan models.Loan, today time.Time) int64 {
	if loan.IsOverdue(today) {
		return p.OverdueFine
	}
	return 0
}

// LoanConfig tunes the lending rules.
type LoanConfig struct {
	PeriodDays  int
	OverdueFine int64
}

// IssueLoanRequest is the payload for lending a book. DueDate is optional and
// uses the YYYY-MM-DD form.
type IssueLoanRequest struct {
	BookID    string `json:"book_id" validate:"required,uuid"`
	StudentID string `json:"student_id" validate:"required,uuid"`
	DueDate   string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateLoanRequest corrects the snapshot fields of one loan.
type UpdateLoanRequest struct {
	ID         string `json:"id" validate:"required,uuid"`
	Enrollment string `json:"enrollment" validate:"required,max=40"`
	BookName   string `json:"book_name" validate:"required,max=200"`
}

// ActiveLoanRequest selects active loans.
type ActiveLoanRequest struct {
	OverdueOnly bool
	Page        int
}

// LoanService drives the loan lifecycle.
type LoanService struct {
	repo        loanRepository
	invalidator dashboardInvalidator
	metrics     loanMetrics
	validator   *validator.Validate
	logger      *zap.Logger
	fines       FinePolicy
	period      int
	now         func() time.Time
}

// LoanServiceParams groups constructor dependencies.
type LoanServiceParams struct {
	Repo        loanRepository
	Invalidator dashboardInvalidator
	Metrics     loanMetrics
	Validator   *validator.Validate
	Logger      *zap.Logger
	Config      LoanConfig
}

// NewLoanService constructs a LoanService with sane defaults.
func NewLoanService(params LoanServiceParams) *LoanService {
	cfg := params.Config
	if cfg.PeriodDays <= 0 {
		cfg.PeriodDays = 15
	}
	if cfg.OverdueFine < 0 {
		cfg.OverdueFine = 0
	}
	validate := params.Validator
	if validate == nil {
		validate = NewValidator()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanService{
		repo:        params.Repo,
		invalidator: params.Invalidator,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      logger,
		fines:       FinePolicy{OverdueFine: cfg.OverdueFine},
		period:      cfg.PeriodDays,
		now:         time.Now,
	}
}

// Issue lends a copy of a book to a student. The due date defaults to today
// plus the loan period and may not lie in the past.
func (s *LoanService) Issue(ctx context.Context, req IssueLoanRequest) (*models.Loan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid loan payload")
	}
	today := models.DateOf(s.now())
	due := today.AddDate(0, 0, s.period)
	if req.DueDate != "" {
		parsed, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			return nil, validationError(err, "due_date must use YYYY-MM-DD")
		}
		if parsed.Before(today) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "due_date cannot be before the issue date")
		}
		due = parsed
	}

	loan, err := s.repo.Issue(ctx, models.NewLoan{BookID: req.BookID, StudentID: req.StudentID, IssueDate: today, DueDate: due})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		case errors.Is(err, repository.ErrStudentNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		case errors.Is(err, repository.ErrOutOfStock):
			return nil, appErrors.Clone(appErrors.ErrOutOfStock, "no copies of this book are available")
		}
		return nil, internalError(err, "failed to issue book")
	}

	s.logger.Info("book issued",
		zap.String("loan_id", loan.ID),
		zap.String("book", loan.BookName),
		zap.String("enrollment", loan.Enrollment),
		zap.Time("due_date", loan.DueDate))
	s.record(LoanEventIssued)
	s.invalidate(ctx)
	return loan, nil
}

// Return closes a loan. Returning a loan twice yields the loan together with
// an ALREADY_RETURNED notice and changes nothing.
func (s *LoanService) Return(ctx context.Context, id string) (*models.Loan, error) {
	if err := s.validator.Var(id, "required,uuid"); err != nil {
		return nil, validationError(err, "invalid loan id")
	}
	loan, err := s.repo.Return(ctx, id, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLoanNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "loan not found")
		case errors.Is(err, repository.ErrAlreadyReturned):
			return loan, appErrors.Clone(appErrors.ErrAlreadyReturned, "this book has already been returned")
		}
		return nil, internalError(err, "failed to return book")
	}

	s.logger.Info("book returned", zap.String("loan_id", loan.ID), zap.String("book", loan.BookName))
	s.record(LoanEventReturned)
	s.invalidate(ctx)
	return loan, nil
}

// ListActive returns a page of unreturned loans with derived fine and
// overdue state.
func (s *LoanService) ListActive(ctx context.Context, req ActiveLoanRequest) ([]dto.ActiveLoan, *models.Pagination, error) {
	today := s.now()
	filter := models.LoanFilter{OverdueOnly: req.OverdueOnly, Today: today, PageSize: models.DefaultPageSize}
	loans, pagination, err := listPage(req.Page, filter.PageSize, func(page int) ([]models.LoanDetail, int, error) {
		filter.Page = page
		return s.repo.ListActive(ctx, filter)
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to list active loans")
	}
	return s.views(loans, today), pagination, nil
}

// ExportActive returns every unreturned loan, unpaginated.
func (s *LoanService) ExportActive(ctx context.Context, overdueOnly bool) ([]dto.ActiveLoan, error) {
	today := s.now()
	loans, err := s.repo.ListAllActive(ctx, models.LoanFilter{OverdueOnly: overdueOnly, Today: today})
	if err != nil {
		return nil, internalError(err, "failed to load active loans")
	}
	return s.views(loans, today), nil
}

// BulkUpdate corrects enrollment and book name snapshots atomically.
func (s *LoanService) BulkUpdate(ctx context.Context, reqs []UpdateLoanRequest) ([]models.LoanSnapshotUpdate, error) {
	if len(reqs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one loan is required")
	}
	updates := make([]models.LoanSnapshotUpdate, 0, len(reqs))
	for _, req := range reqs {
		if err := s.validator.Struct(req); err != nil {
			return nil, validationError(err, "invalid loan payload")
		}
		updates = append(updates, models.LoanSnapshotUpdate{ID: req.ID, Enrollment: req.Enrollment, BookName: req.BookName})
	}
	if err := s.repo.UpdateSnapshots(ctx, updates); err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "loan not found")
		}
		return nil, internalError(err, "failed to update loans")
	}
	s.invalidate(ctx)
	return updates, nil
}

func (s *LoanService) views(loans []models.LoanDetail, today time.Time) []dto.ActiveLoan {
	views := make([]dto.ActiveLoan, 0, len(loans))
	for _, loan := range loans {
		views = append(views, dto.ActiveLoan{
			ID:          loan.ID,
			StudentName: loan.DisplayStudentName(),
			Enrollment:  loan.Enrollment,
			BookName:    loan.DisplayBookName(),
			IssueDate:   loan.IssueDate,
			DueDate:     loan.DueDate,
			Fine:        s.fines.Assess(loan.Loan, today),
			Overdue:     loan.IsOverdue(today),
		})
	}
	return views
}

func (s *LoanService) record(event string) {
	if s.metrics != nil {
		s.metrics.RecordLoanEvent(event)
	}
}

func (s *LoanService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
}
