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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEnrollment(ctx context.Context, enrollment string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	BulkUpdate(ctx context.Context, students []models.Student) error
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// CreateStudentRequest holds payload for registering members.
type CreateStudentRequest struct {
	Name       string  `json:"name" validate:"max=30"`
	Enrollment string  `json:"enrollment" validate:"required,max=40"`
	Address    string  `json:"address" validate:"max=40"`
	Phone      string  `json:"phone" validate:"max=20"`
	Gender     string  `json:"gender" validate:"required,gender"`
	UserID     *string `json:"user_id" validate:"omitempty,uuid"`
}

// UpdateStudentRequest is one row of a bulk membership update.
type UpdateStudentRequest struct {
	ID         string `json:"id" validate:"required,uuid"`
	Name       string `json:"name" validate:"max=30"`
	Enrollment string `json:"enrollment" validate:"required,max=40"`
	Address    string `json:"address" validate:"max=40"`
	Phone      string `json:"phone" validate:"max=20"`
	Gender     string `json:"gender" validate:"required,gender"`
}

// StudentListRequest carries membership listing parameters.
type StudentListRequest struct {
	Gender string
	Search string
	Page   int
}

// StudentService handles student use-cases.
type StudentService struct {
	repo        studentRepository
	invalidator dashboardInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, invalidator dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns students sorted by name with pagination metadata.
func (s *StudentService) List(ctx context.Context, req StudentListRequest) ([]models.Student, *models.Pagination, error) {
	filter := models.StudentFilter{Search: req.Search, PageSize: models.DefaultPageSize}
	if req.Gender != "" {
		gender := models.Gender(req.Gender)
		if !gender.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown gender")
		}
		filter.Gender = &gender
	}
	students, pagination, err := listPage(req.Page, filter.PageSize, func(page int) ([]models.Student, int, error) {
		filter.Page = page
		return s.repo.List(ctx, filter)
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	return students, pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	if err := s.validator.Var(id, "required,uuid"); err != nil {
		return nil, validationError(err, "invalid student id")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. The enrollment must be unused.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	exists, err := s.repo.ExistsByEnrollment(ctx, req.Enrollment, "")
	if err != nil {
		return nil, internalError(err, "failed to validate enrollment")
	}
	if exists {
		return nil, duplicateEnrollment(req.Enrollment)
	}
	student := &models.Student{
		UserID:     req.UserID,
		Name:       req.Name,
		Enrollment: req.Enrollment,
		Address:    req.Address,
		Phone:      req.Phone,
		Gender:     models.Gender(req.Gender),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateEnrollment) {
			return nil, duplicateEnrollment(req.Enrollment)
		}
		return nil, internalError(err, "failed to create student")
	}
	s.invalidate(ctx)
	return student, nil
}

// BulkUpdate applies every row atomically. Enrollment numbers must stay
// unique across the batch and against students outside it.
func (s *StudentService) BulkUpdate(ctx context.Context, reqs []UpdateStudentRequest) ([]models.Student, error) {
	if len(reqs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one student is required")
	}
	seen := make(map[string]string, len(reqs))
	students := make([]models.Student, 0, len(reqs))
	for _, req := range reqs {
		if err := s.validator.Struct(req); err != nil {
			return nil, validationError(err, "invalid student payload")
		}
		if owner, ok := seen[req.Enrollment]; ok && owner != req.ID {
			return nil, duplicateEnrollment(req.Enrollment)
		}
		seen[req.Enrollment] = req.ID
		students = append(students, models.Student{
			ID:         req.ID,
			Name:       req.Name,
			Enrollment: req.Enrollment,
			Address:    req.Address,
			Phone:      req.Phone,
			Gender:     models.Gender(req.Gender),
		})
	}
	for _, student := range students {
		exists, err := s.repo.ExistsByEnrollment(ctx, student.Enrollment, student.ID)
		if err != nil {
			return nil, internalError(err, "failed to validate enrollment")
		}
		if exists {
			return nil, duplicateEnrollment(student.Enrollment)
		}
	}
	if err := s.repo.BulkUpdate(ctx, students); err != nil {
		switch {
		case errors.Is(err, repository.ErrStudentNotFound):
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "student not found")
		case errors.Is(err, repository.ErrDuplicateEnrollment):
			return nil, appErrors.Wrap(err, appErrors.ErrDuplicate.Code, appErrors.ErrDuplicate.Status, "enrollment already exists")
		}
		return nil, internalError(err, "failed to update students")
	}
	s.invalidate(ctx)
	return students, nil
}

// BulkDelete removes the listed students. Their loans keep the enrollment
// snapshot.
func (s *StudentService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if err := validateIDs(s.validator, ids); err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, internalError(err, "failed to delete students")
	}
	s.invalidate(ctx)
	return deleted, nil
}

func (s *StudentService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
}

func duplicateEnrollment(enrollment string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrDuplicate, "enrollment "+enrollment+" already exists")
}
