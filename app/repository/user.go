package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
)

const userColumns = `id, username, email, fullname, avatar, password_hash, is_email_verified,
		       refresh_token, email_verification_token, email_verification_expires_at,
		       forgot_password_token, forgot_password_expires_at, created_at, updated_at`

type UserRepository struct {
	db executor
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (username, email, fullname, avatar, password_hash, is_email_verified,
		                   email_verification_token, email_verification_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.FullName,
		user.Avatar,
		user.PasswordHash,
		user.IsEmailVerified,
		user.EmailVerificationToken,
		user.EmailVerificationExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateEntry
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = uint64(id)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email_verification_token = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE forgot_password_token = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET
			username = ?,
			email = ?,
			fullname = ?,
			avatar = ?,
			password_hash = ?,
			is_email_verified = ?,
			refresh_token = ?,
			email_verification_token = ?,
			email_verification_expires_at = ?,
			forgot_password_token = ?,
			forgot_password_expires_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	user.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.FullName,
		user.Avatar,
		user.PasswordHash,
		user.IsEmailVerified,
		user.RefreshToken,
		user.EmailVerificationToken,
		user.EmailVerificationExpiresAt,
		user.ForgotPasswordToken,
		user.ForgotPasswordExpiresAt,
		user.UpdatedAt,
		user.ID,
	)
	return err
}

// SetRefreshToken unconditionally overwrites the stored refresh token.
// Used by login (fresh session) and logout (clear).
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID uint64, token sql.NullString) error {
	query := `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, token, time.Now(), userID)
	return err
}

// SwapRefreshToken replaces the stored refresh token only if it still equals
// current (null-safe compare, so a NULL slot can be claimed too). Returns
// false when another request rotated first; the loser must treat its view as
// stale. This is the atomic compare-and-rotate for session rotation.
func (r *UserRepository) SwapRefreshToken(ctx context.Context, userID uint64, current, next sql.NullString) (bool, error) {
	query := `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ? AND refresh_token <=> ?`
	result, err := r.db.ExecContext(ctx, query, next, time.Now(), userID, current)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// PurgeExpiredEphemeralTokens clears verification and reset tokens whose
// expiry has passed. Rows with live tokens are untouched.
func (r *UserRepository) PurgeExpiredEphemeralTokens(ctx context.Context, now time.Time) (int64, error) {
	verificationQuery := `
		UPDATE users SET email_verification_token = NULL, email_verification_expires_at = NULL
		WHERE email_verification_expires_at < ?
	`
	resetQuery := `
		UPDATE users SET forgot_password_token = NULL, forgot_password_expires_at = NULL
		WHERE forgot_password_expires_at < ?
	`
	var purged int64
	for _, query := range []string{verificationQuery, resetQuery} {
		result, err := r.db.ExecContext(ctx, query, now)
		if err != nil {
			return purged, err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return purged, err
		}
		purged += rows
	}
	return purged, nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.Avatar,
		&user.PasswordHash,
		&user.IsEmailVerified,
		&user.RefreshToken,
		&user.EmailVerificationToken,
		&user.EmailVerificationExpiresAt,
		&user.ForgotPasswordToken,
		&user.ForgotPasswordExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
