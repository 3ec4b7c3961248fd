package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/controller"
	"github.com/taskhub-io/ms-go-taskhub/app/middleware"
	"github.com/taskhub-io/ms-go-taskhub/app/repository"
	"github.com/taskhub-io/ms-go-taskhub/app/service"
	"github.com/taskhub-io/ms-go-taskhub/app/validation"
	"github.com/taskhub-io/ms-go-taskhub/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	findByEmailQuery     = `(?s)SELECT id, username, email, fullname, avatar, password_hash, is_email_verified,\s+refresh_token, email_verification_token, email_verification_expires_at,\s+forgot_password_token, forgot_password_expires_at, created_at, updated_at\s+FROM users WHERE email = \?`
	findByUsernameQuery  = `(?s)SELECT id, username, email, fullname, avatar, password_hash, is_email_verified,\s+refresh_token, email_verification_token, email_verification_expires_at,\s+forgot_password_token, forgot_password_expires_at, created_at, updated_at\s+FROM users WHERE username = \?`
	insertUserQuery      = `(?s)INSERT INTO users \(username, email, fullname, avatar, password_hash, is_email_verified,\s+email_verification_token, email_verification_expires_at, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?, \?, \?, \?\)`
	setRefreshTokenQuery = `UPDATE users SET refresh_token = \?, updated_at = \? WHERE id = \?$`
)

var userColumns = []string{
	"id",
	"username",
	"email",
	"fullname",
	"avatar",
	"password_hash",
	"is_email_verified",
	"refresh_token",
	"email_verification_token",
	"email_verification_expires_at",
	"forgot_password_token",
	"forgot_password_expires_at",
	"created_at",
	"updated_at",
}

func newUserControllerWithMock(t *testing.T) (*controller.UserController, sqlmock.Sqlmock, *echo.Echo, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	cfg := &config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		TempTokenTTL:       20 * time.Minute,
		PublicBaseURL:      "http://localhost:8080",
		PasswordPolicy: config.PasswordPolicy{
			MinLength: 1,
		},
	}

	userRepo := repository.NewUserRepository(db)
	tokens := service.NewTokenService(cfg)
	authService := service.NewAuthService(userRepo, tokens, &service.LogMailer{}, cfg)
	sessionService := service.NewSessionService(userRepo, tokens)

	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = controller.ErrorHandler

	return controller.NewUserController(authService, sessionService), mock, e, func() { _ = db.Close() }
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Errors     []string        `json:"errors"`
	Data       json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return env
}

// doJSON runs the handler through the echo error handler so failures render
// as the envelope, the way a live server responds.
func doJSON(e *echo.Echo, handler echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	if err := handler(ctx); err != nil {
		e.HTTPErrorHandler(err, ctx)
	}
	return rec
}

func TestUserController_Register_Success(t *testing.T) {
	userController, mock, e, cleanup := newUserControllerWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(findByUsernameQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectExec(insertUserQuery).
		WillReturnResult(sqlmock.NewResult(1, 1))

	body, _ := json.Marshal(map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"fullname": "Alice Example",
		"password": "password",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/register", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doJSON(e, userController.Register, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserController_Register_ValidationFailure(t *testing.T) {
	userController, mock, e, cleanup := newUserControllerWithMock(t)
	defer cleanup()

	body, _ := json.Marshal(map[string]string{
		"username": "al",
		"email":    "not-an-email",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/register", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doJSON(e, userController.Register, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatal("expected success=false")
	}
	if len(env.Errors) == 0 {
		t.Fatal("expected per-field validation errors")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserController_Login_SetsBothCookies(t *testing.T) {
	userController, mock, e, cleanup := newUserControllerWithMock(t)
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	now := time.Now()
	mock.ExpectQuery(findByEmailQuery).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1), "alice", "alice@example.com", "Alice Example", nil,
			string(hash), true, nil, nil, nil, nil, nil, now, now,
		))
	mock.ExpectExec(setRefreshTokenQuery).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body, _ := json.Marshal(map[string]string{
		"email":    "alice@example.com",
		"password": "password",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doJSON(e, userController.Login, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	names := map[string]bool{}
	for _, cookie := range rec.Result().Cookies() {
		names[cookie.Name] = cookie.Value != ""
	}
	if !names[middleware.AccessTokenCookie] || !names[middleware.RefreshTokenCookie] {
		t.Fatalf("expected both session cookies to be set, got %v", names)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserController_Login_UnverifiedEmailIs403(t *testing.T) {
	userController, mock, e, cleanup := newUserControllerWithMock(t)
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	now := time.Now()
	mock.ExpectQuery(findByEmailQuery).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1), "alice", "alice@example.com", "Alice Example", nil,
			string(hash), false, nil, nil, nil, nil, nil, now, now,
		))

	body, _ := json.Marshal(map[string]string{
		"email":    "alice@example.com",
		"password": "password",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doJSON(e, userController.Login, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("expected no cookies on a rejected login")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserController_ResendVerification_AlreadyVerifiedIsMasked(t *testing.T) {
	userController, mock, e, cleanup := newUserControllerWithMock(t)
	defer cleanup()

	// A verified account must get the same generic answer as an unknown
	// address, so responses do not reveal which emails are verified.
	now := time.Now()
	mock.ExpectQuery(findByEmailQuery).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1), "alice", "alice@example.com", "Alice Example", nil,
			"hash", true, nil, nil, nil, nil, nil, now, now,
		))

	body, _ := json.Marshal(map[string]string{
		"email": "alice@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/resend-verification", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doJSON(e, userController.ResendVerification, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected the generic success envelope, got %+v", env)
	}
	if env.Message != "if the email exists, a verification mail has been sent" {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	// No token may have been issued or stored.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserController_RefreshAccessToken_NoCookieIs401(t *testing.T) {
	userController, mock, e, cleanup := newUserControllerWithMock(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/refresh-access-token", nil)

	rec := doJSON(e, userController.RefreshAccessToken, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Errors == nil {
		t.Fatalf("expected failure envelope with errors array, got %+v", env)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
