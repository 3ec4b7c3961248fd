package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService is the token codec: it mints and verifies the signed
// access/refresh pair and generates opaque ephemeral tokens for the email
// verification and password reset flows. Access and refresh tokens are
// signed with independent secrets and are never interchangeable.
type TokenService struct {
	cfg *config.Config
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{cfg: cfg}
}

type SessionClaims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

func (s *TokenService) IssueAccessToken(userID uint64) (string, time.Time, error) {
	return s.issue(userID, s.cfg.AccessTokenSecret, s.cfg.AccessTokenTTL)
}

func (s *TokenService) IssueRefreshToken(userID uint64) (string, time.Time, error) {
	return s.issue(userID, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenTTL)
}

func (s *TokenService) ParseAccessToken(tokenString string) (*SessionClaims, error) {
	return s.parse(tokenString, s.cfg.AccessTokenSecret)
}

func (s *TokenService) ParseRefreshToken(tokenString string) (*SessionClaims, error) {
	return s.parse(tokenString, s.cfg.RefreshTokenSecret)
}

func (s *TokenService) issue(userID uint64, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes tokens issued within the same second distinct,
			// so rotation always yields a new token string.
			ID:        uuid.New().String(),
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *TokenService) parse(tokenString, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// NewEphemeralToken generates the one-time opaque value used for email
// verification and password reset. The raw value is delivered out-of-band
// and stored verbatim for a later exact-match lookup.
func (s *TokenService) NewEphemeralToken() (string, time.Time, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	return hex.EncodeToString(buf), time.Now().Add(s.cfg.TempTokenTTL), nil
}
