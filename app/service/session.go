package service

import (
	"context"
	"database/sql"

	"github.com/taskhub-io/ms-go-taskhub/app/dto"
	"github.com/taskhub-io/ms-go-taskhub/app/entity"
	"github.com/taskhub-io/ms-go-taskhub/app/repository"
)

// SessionService resolves a caller's identity from the access/refresh token
// pair and rotates both tokens on every successful resolution. Rotation on
// every request is a deliberate anti-replay measure: each resolved request
// invalidates the previous refresh token, so two tabs racing on the same
// stale pair will see the loser fail with ErrUnauthorized on its next use.
type SessionService struct {
	userRepo *repository.UserRepository
	tokens   *TokenService
}

func NewSessionService(userRepo *repository.UserRepository, tokens *TokenService) *SessionService {
	return &SessionService{userRepo: userRepo, tokens: tokens}
}

// Resolve implements the session state machine:
//
//	no access, no refresh        -> ErrUnauthorized
//	no access, refresh invalid   -> ErrUnauthorized
//	no access, refresh valid     -> rotate via the refresh subject
//	access invalid               -> ErrUnauthorized (never repaired via refresh)
//	access valid                 -> rotate via the access subject
//
// An invalid access token is terminal even when a usable refresh token is
// present; the refresh fallback only applies when no access token was sent.
func (s *SessionService) Resolve(ctx context.Context, accessToken, refreshToken string) (*dto.Session, error) {
	if accessToken == "" {
		if refreshToken == "" {
			return nil, ErrUnauthorized
		}
		return s.Refresh(ctx, refreshToken)
	}

	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	return s.rotate(ctx, user)
}

// Refresh resolves identity from the refresh token alone. The token must be
// signature-valid, unexpired and equal to the value currently stored on the
// user row; anything else is ErrUnauthorized. On success the pair rotates,
// which makes every refresh token single-use.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*dto.Session, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	if !user.RefreshToken.Valid || user.RefreshToken.String != refreshToken {
		return nil, ErrUnauthorized
	}

	return s.rotate(ctx, user)
}

// rotate issues a fresh pair and persists the new refresh token with a
// compare-and-swap against the value read on this request. Losing the swap
// means a concurrent request rotated first; this request's view is stale and
// it fails rather than issuing a second live pair.
func (s *SessionService) rotate(ctx context.Context, user *entity.User) (*dto.Session, error) {
	access, accessExpiresAt, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	refresh, refreshExpiresAt, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	next := sql.NullString{String: refresh, Valid: true}
	swapped, err := s.userRepo.SwapRefreshToken(ctx, user.ID, user.RefreshToken, next)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, ErrUnauthorized
	}
	user.RefreshToken = next

	return &dto.Session{
		User:             user,
		AccessToken:      access,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}
