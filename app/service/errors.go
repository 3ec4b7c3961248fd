package service

import "errors"

var (
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailNotVerified     = errors.New("email is not verified")
	ErrEmailAlreadyVerified = errors.New("email is already verified")
	ErrWeakPassword         = errors.New("password does not meet policy requirements")
	ErrPasswordMismatch     = errors.New("old password is incorrect")

	// ErrInvalidToken covers malformed, tampered, expired and never-issued
	// ephemeral tokens alike, so callers cannot probe which tokens exist.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUnauthorized is the single failure for every session-resolution
	// path: missing tokens, bad signatures, dead identities, stale refresh
	// tokens and lost rotation races all look the same to the caller.
	ErrUnauthorized = errors.New("unauthorized access")

	ErrNoMembership     = errors.New("no membership for this project")
	ErrInsufficientRole = errors.New("insufficient role to perform this action")

	ErrProjectNotFound  = errors.New("project not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrSubTaskNotFound  = errors.New("subtask not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrMemberNotFound   = errors.New("project member not found")
	ErrMemberExists     = errors.New("user is already a member of this project")
	ErrInvalidRole      = errors.New("role is not a valid project role")
	ErrAssigneeNotFound = errors.New("assignee username does not exist")
)
