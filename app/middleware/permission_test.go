package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"
	"github.com/taskhub-io/ms-go-taskhub/app/entity"
	"github.com/taskhub-io/ms-go-taskhub/app/middleware"
	"github.com/taskhub-io/ms-go-taskhub/app/service"

	"github.com/labstack/echo/v4"
)

type stubAuthorizer struct {
	role string
	err  error

	gotUserID    uint64
	gotProjectID uint64
	gotRoles     []string
}

func (s *stubAuthorizer) Authorize(_ context.Context, userID, projectID uint64, allowedRoles []string) (string, error) {
	s.gotUserID = userID
	s.gotProjectID = projectID
	s.gotRoles = allowedRoles
	if s.err != nil {
		return "", s.err
	}
	return s.role, nil
}

// newAuthorizedContext builds a context that already passed the session
// middleware, by chaining it with a stub resolver.
func runGate(t *testing.T, authorizer *stubAuthorizer, projectID string, roles []string, next echo.HandlerFunc) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("projectId")
	ctx.SetParamValues(projectID)

	sessions := middleware.NewSessionMiddleware(&stubResolver{session: stubSession()})
	permissions := middleware.NewPermissionMiddleware(authorizer)

	handler := sessions.RequireLogin(permissions.RequireProjectRole(roles...)(next))
	return handler(ctx)
}

func TestRequireProjectRole_NoMembership(t *testing.T) {
	authorizer := &stubAuthorizer{err: service.ErrNoMembership}

	err := runGate(t, authorizer, "2", entity.AvailableUserRoles, func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	var apiErr *httpdto.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 APIError, got %v", err)
	}
	if authorizer.gotUserID != 1 || authorizer.gotProjectID != 2 {
		t.Fatalf("unexpected lookup: user %d project %d", authorizer.gotUserID, authorizer.gotProjectID)
	}
}

func TestRequireProjectRole_InsufficientRole(t *testing.T) {
	authorizer := &stubAuthorizer{err: service.ErrInsufficientRole}

	err := runGate(t, authorizer, "2", []string{entity.RoleAdmin}, func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	var apiErr *httpdto.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 APIError, got %v", err)
	}
	if len(authorizer.gotRoles) != 1 || authorizer.gotRoles[0] != entity.RoleAdmin {
		t.Fatalf("unexpected allow-list: %v", authorizer.gotRoles)
	}
}

func TestRequireProjectRole_BadProjectID(t *testing.T) {
	authorizer := &stubAuthorizer{role: entity.RoleAdmin}

	err := runGate(t, authorizer, "abc", entity.AvailableUserRoles, func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	var apiErr *httpdto.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
}

func TestRequireProjectRole_AttachesResolvedRole(t *testing.T) {
	authorizer := &stubAuthorizer{role: entity.RoleProjectAdmin}

	err := runGate(t, authorizer, "2", entity.AvailableUserRoles, func(c echo.Context) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			t.Fatal("expected current user in context")
		}
		if user.Role != entity.RoleProjectAdmin {
			t.Fatalf("expected role %q, got %q", entity.RoleProjectAdmin, user.Role)
		}
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
}
