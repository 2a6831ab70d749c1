package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/library-admin-api/internal/dto"
	"github.com/noah-isme/library-admin-api/internal/models"
)

const (
	dashboardCachePattern = "dash:*"
	trendMonths           = 6
)

type reportRepository interface {
	Counts(ctx context.Context, today time.Time) (*models.LibraryCounts, error)
	TopIssued(ctx context.Context) ([]models.NamedCount, error)
	LowStock(ctx context.Context) ([]models.Book, error)
	CategoryDistribution(ctx context.Context) ([]models.NamedCount, error)
	IssuedPerMonth(ctx context.Context, from, to time.Time) ([]models.MonthlyCount, error)
	ReturnedPerMonth(ctx context.Context, from, to time.Time) ([]models.MonthlyCount, error)
	RecentLoans(ctx context.Context) ([]models.LoanDetail, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the librarian dashboard.
type DashboardService struct {
	repo   reportRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Repo   reportRepository
	Cache  *CacheService
	Logger *zap.Logger
	Config DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:   params.Repo,
		cache:  params.Cache,
		logger: logger,
		now:    time.Now,
		cfg:    cfg,
	}
}

// Summary returns the dashboard and whether it was served from cache. The
// figures are recomputed on every call unless the cache is enabled.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	now := s.now().UTC()
	key := fmt.Sprintf("dash:summary:%s", now.Format(dateLayout))

	var cached dto.DashboardResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	resp, err := s.compute(ctx, now)
	if err != nil {
		return nil, false, internalError(err, "failed to build dashboard")
	}
	if err := s.cache.Set(ctx, key, resp, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard", zap.Error(err))
	}
	return resp, false, nil
}

// Invalidate drops every cached dashboard payload.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (s *DashboardService) compute(ctx context.Context, now time.Time) (*dto.DashboardResponse, error) {
	counts, err := s.repo.Counts(ctx, now)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopIssued(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.CategoryDistribution(ctx)
	if err != nil {
		return nil, err
	}

	months := trailingMonths(now, trendMonths)
	to := months[len(months)-1].AddDate(0, 1, 0)
	issued, err := s.repo.IssuedPerMonth(ctx, months[0], to)
	if err != nil {
		return nil, err
	}
	returned, err := s.repo.ReturnedPerMonth(ctx, months[0], to)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.RecentLoans(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		Counts:               *counts,
		TopIssuedBooks:       nonNil(top),
		LowStockBooks:        make([]dto.LowStockBook, 0, len(lowStock)),
		CategoryDistribution: nonNil(categories),
		MonthlyTrend:         buildTrend(months, issued, returned),
		RecentActivity:       make([]dto.RecentLoan, 0, len(recent)),
		GeneratedAt:          now,
	}
	for _, book := range lowStock {
		resp.LowStockBooks = append(resp.LowStockBooks, dto.LowStockBook{ID: book.ID, Name: book.Name, Author: book.Author, Quantity: book.Quantity})
	}
	for _, loan := range recent {
		resp.RecentActivity = append(resp.RecentActivity, dto.RecentLoan{
			ID:          loan.ID,
			StudentName: loan.DisplayStudentName(),
			BookName:    loan.DisplayBookName(),
			IssueDate:   loan.IssueDate,
			DueDate:     loan.DueDate,
			State:       loan.State(),
			Overdue:     loan.IsOverdue(now),
		})
	}
	return resp, nil
}

// trailingMonths returns the first day of the n calendar months ending with
// the month of now, oldest first.
func trailingMonths(now time.Time, n int) []time.Time {
	current := models.MonthStart(now)
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[i] = current.AddDate(0, i-n+1, 0)
	}
	return months
}

func buildTrend(months []time.Time, issued, returned []models.MonthlyCount) []dto.MonthlyTrendPoint {
	issuedBy := indexByMonth(issued)
	returnedBy := indexByMonth(returned)
	points := make([]dto.MonthlyTrendPoint, 0, len(months))
	for _, month := range months {
		key := month.Format("2006-01")
		points = append(points, dto.MonthlyTrendPoint{
			Label:    month.Format("Jan 2006"),
			Issued:   issuedBy[key],
			Returned: returnedBy[key],
		})
	}
	return points
}

func indexByMonth(rows []models.MonthlyCount) map[string]int {
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Month.UTC().Format("2006-01")] += row.Count
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
