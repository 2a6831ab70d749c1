package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/library-admin-api/internal/models"
)

const (
	userColumns         = "id, email, password_hash, full_name, role, active, last_login, created_at, updated_at"
	refreshTokenColumns = "id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent"
)

// UserRepository stores librarian accounts, their refresh sessions and the
// audit trail. Lookups return sql.ErrNoRows unwrapped when nothing matches.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns the account registered under email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.getOne(ctx, &user, "users", userColumns, "email", email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns the account with id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.getOne(ctx, &user, "users", userColumns, "id", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin stamps a successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	return r.insert(ctx, "users", "id, email, password_hash, full_name, role, active, created_at, updated_at", user)
}

// CreateRefreshToken persists a new session.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	return r.insert(ctx, "refresh_tokens", refreshTokenColumns, token)
}

// FindRefreshToken returns the session holding token.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.getOne(ctx, &rt, "refresh_tokens", refreshTokenColumns, "token", token); err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken ends a session.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// CreateAuditLog appends an audit trail entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	return r.insert(ctx, "audit_logs", "id, user_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at", log)
}

func (r *UserRepository) getOne(ctx context.Context, dest interface{}, table, columns, key string, value string) error {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 LIMIT 1", columns, table, key)
	if err := r.db.GetContext(ctx, dest, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("find %s by %s: %w", table, key, err)
	}
	return nil
}

// insert writes arg into table using named parameters derived from columns.
func (r *UserRepository) insert(ctx context.Context, table, columns string, arg interface{}) error {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, columns, namedParams(columns))
	if _, err := r.db.NamedExecContext(ctx, query, arg); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// namedParams turns "a, b" into ":a, :b".
func namedParams(columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = ":" + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
