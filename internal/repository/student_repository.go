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

const studentColumns = "s.id, s.user_id, s.name, s.enrollment, s.address, s.phone, s.gender, s.created_at, s.updated_at"

// StudentRepository manages persistence for library members.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters sorted by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.Gender != nil {
		conditions = append(conditions, fmt.Sprintf("s.gender = $%d", len(args)+1))
		args = append(args, *filter.Gender)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR LOWER(s.enrollment) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("FROM students s WHERE %s", strings.Join(conditions, " AND "))
	size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY s.name ASC, s.id ASC LIMIT %d OFFSET %d", studentColumns, base, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ExistsByEnrollment checks if an enrollment is taken, optionally ignoring
// the student with excludeID.
func (r *StudentRepository) ExistsByEnrollment(ctx context.Context, enrollment string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE enrollment = $1"
	args := []interface{}{enrollment}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create inserts a new student. A concurrent insert of the same enrollment
// surfaces as ErrDuplicateEnrollment.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, user_id, name, enrollment, address, phone, gender, created_at, updated_at)
        VALUES (:id, :user_id, :name, :enrollment, :address, :phone, :gender, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEnrollment
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// BulkUpdate applies every row in one transaction.
func (r *StudentRepository) BulkUpdate(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	const query = `UPDATE students SET name = :name, enrollment = :enrollment, address = :address, phone = :phone, gender = :gender, updated_at = :updated_at WHERE id = :id`
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()
		for i := range students {
			students[i].UpdatedAt = now
			res, err := tx.NamedExecContext(ctx, query, students[i])
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: %s", ErrDuplicateEnrollment, students[i].Enrollment)
				}
				return fmt.Errorf("update student %s: %w", students[i].ID, err)
			}
			if err := expectOneRow(res, ErrStudentNotFound, students[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByIDs removes the listed students. Missing IDs are ignored and loans
// keep their enrollment snapshot.
func (r *StudentRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete students: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete students: %w", err)
	}
	return affected, nil
}
