package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"
	"github.com/taskhub-io/ms-go-taskhub/app/middleware"
	"github.com/taskhub-io/ms-go-taskhub/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type UserController struct {
	auth     *service.AuthService
	sessions *service.SessionService
}

func NewUserController(auth *service.AuthService, sessions *service.SessionService) *UserController {
	return &UserController{auth: auth, sessions: sessions}
}

func (c *UserController) Register(ctx echo.Context) error {
	var req httpdto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	user, err := c.auth.Register(ctx.Request().Context(), req.Username, req.Email, req.FullName, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return httpdto.NewAPIError(http.StatusConflict, "user already exists")
		}
		if errors.Is(err, service.ErrWeakPassword) {
			return httpdto.NewAPIError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(http.StatusCreated, httpdto.NewEnvelope(
		http.StatusCreated,
		"user registered successfully, please verify your email",
		httpdto.NewUserResponse(user),
	))
}

func (c *UserController) Login(ctx echo.Context) error {
	var req httpdto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	session, err := c.auth.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return httpdto.NewAPIError(http.StatusUnauthorized, "invalid credentials")
		}
		if errors.Is(err, service.ErrEmailNotVerified) {
			return httpdto.NewAPIError(http.StatusForbidden, "please verify your email")
		}
		return err
	}

	middleware.SetSessionCookies(ctx, session)

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"user logged in successfully",
		httpdto.NewUserResponse(session.User),
	))
}

func (c *UserController) Logout(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}

	if err := c.auth.Logout(ctx.Request().Context(), user.ID); err != nil {
		return err
	}

	middleware.ClearSessionCookies(ctx)

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "user logged out successfully", nil))
}

func (c *UserController) VerifyEmail(ctx echo.Context) error {
	token := ctx.Param("token")
	if token == "" {
		return httpdto.NewAPIError(http.StatusBadRequest, "token is required")
	}

	if _, err := c.auth.VerifyEmail(ctx.Request().Context(), token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return httpdto.NewAPIError(http.StatusBadRequest, "invalid or expired token")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "email verified successfully", nil))
}

func (c *UserController) ResendVerification(ctx echo.Context) error {
	var req httpdto.ResendVerificationRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	switch err := c.auth.ResendEmailVerification(ctx.Request().Context(), req.Email); {
	case err == nil:
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrEmailAlreadyVerified):
		// Unknown and already-verified addresses get the same answer as
		// unverified ones, so callers cannot enumerate account state.
		logrus.WithError(err).Debug("verification resend suppressed")
	default:
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"if the email exists, a verification mail has been sent",
		nil,
	))
}

func (c *UserController) ForgotPassword(ctx echo.Context) error {
	var req httpdto.ForgotPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	err := c.auth.ForgotPassword(ctx.Request().Context(), req.Email)
	if err != nil && !errors.Is(err, service.ErrUserNotFound) {
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"if the email exists, a password reset mail has been sent",
		nil,
	))
}

func (c *UserController) ResetPassword(ctx echo.Context) error {
	token := ctx.Param("token")
	if token == "" {
		return httpdto.NewAPIError(http.StatusBadRequest, "token is required")
	}

	var req httpdto.ResetPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	if _, err := c.auth.ResetPassword(ctx.Request().Context(), token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return httpdto.NewAPIError(http.StatusBadRequest, "invalid or expired token")
		}
		if errors.Is(err, service.ErrWeakPassword) {
			return httpdto.NewAPIError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "password reset successfully", nil))
}

func (c *UserController) ChangePassword(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}

	var req httpdto.ChangePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	err := c.auth.ChangePassword(ctx.Request().Context(), user.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrPasswordMismatch) {
			return httpdto.NewAPIError(http.StatusBadRequest, "old password is incorrect")
		}
		if errors.Is(err, service.ErrWeakPassword) {
			return httpdto.NewAPIError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "password changed successfully", nil))
}

// RefreshAccessToken mints a new pair from the refresh cookie alone. The
// presented token must match the stored one; rotation invalidates it.
func (c *UserController) RefreshAccessToken(ctx echo.Context) error {
	cookie, err := ctx.Cookie(middleware.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}

	session, err := c.sessions.Refresh(ctx.Request().Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return httpdto.NewAPIError(http.StatusUnauthorized, "refresh token is expired or used")
		}
		return err
	}

	middleware.SetSessionCookies(ctx, session)

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"access token refreshed successfully",
		httpdto.TokenPairResponse{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
		},
	))
}

func (c *UserController) Me(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"user data fetched successfully",
		httpdto.UserResponse{
			Username:        user.Username,
			Email:           user.Email,
			FullName:        user.FullName,
			Avatar:          user.Avatar,
			IsEmailVerified: user.IsEmailVerified,
		},
	))
}
