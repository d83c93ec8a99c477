package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maganghub/maganghub-api/internal/models"
)

const userColumns = `id, username, email, password_hash, full_name, role, active, last_login, created_at, updated_at`

// UserRepository manages accounts and refresh tokens.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername fetches an account by username or email.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 OR email = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID fetches an account by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin records a successful login timestamp.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, ts, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a new refresh token row.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked, ip_address, user_agent)
	VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken looks up a non-revoked refresh token by its value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent
	FROM refresh_tokens WHERE token = $1 AND revoked = FALSE`
	var row models.RefreshToken
	if err := r.db.GetContext(ctx, &row, query, token); err != nil {
		return nil, err
	}
	return &row, nil
}

// RevokeRefreshToken marks one token revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $1 WHERE id = $2`, revokedAt, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens revokes all of a user's outstanding tokens.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $1 WHERE user_id = $2 AND revoked = FALSE`, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

// FindSiswaByUser resolves the student profile linked to an account.
func (r *UserRepository) FindSiswaByUser(ctx context.Context, userID string) (*models.Siswa, error) {
	const query = `SELECT id, user_id, nisn, full_name, kelas_id, jurusan_id, phone, address, active, created_at, updated_at
	FROM siswa WHERE user_id = $1`
	var siswa models.Siswa
	if err := r.db.GetContext(ctx, &siswa, query, userID); err != nil {
		return nil, err
	}
	return &siswa, nil
}

// FindGuruByUser resolves the teacher profile (with role flags) linked to an
// account.
func (r *UserRepository) FindGuruByUser(ctx context.Context, userID string) (*models.Guru, error) {
	const query = `SELECT id, user_id, nip, full_name, phone, jurusan_id, kelas_id,
	is_kaprog, is_koordinator, is_wali_kelas, is_pembimbing, active, created_at, updated_at
	FROM guru WHERE user_id = $1`
	var row models.GuruRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, err
	}
	guru := row.Unflatten()
	return &guru, nil
}
