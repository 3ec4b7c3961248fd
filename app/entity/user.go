package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID              uint64
	Username        string
	Email           string
	FullName        string
	Avatar          sql.NullString
	PasswordHash    string
	IsEmailVerified bool

	// At most one live refresh token per user; rotation overwrites it,
	// which is what invalidates the previous one.
	RefreshToken sql.NullString

	EmailVerificationToken     sql.NullString
	EmailVerificationExpiresAt sql.NullTime
	ForgotPasswordToken        sql.NullString
	ForgotPasswordExpiresAt    sql.NullTime

	CreatedAt time.Time
	UpdatedAt time.Time
}
