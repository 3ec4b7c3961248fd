package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
	"github.com/taskhub-io/ms-go-taskhub/app/repository"
	"github.com/taskhub-io/ms-go-taskhub/app/service"

	"github.com/DATA-DOG/go-sqlmock"
)

var memberColumns = []string{
	"id",
	"project_id",
	"user_id",
	"role",
	"created_at",
	"updated_at",
}

func newPermissionServiceWithMock(t *testing.T) (*service.PermissionService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, cleanup := newMockDB(t)
	svc := service.NewPermissionService(repository.NewMembershipRepository(db))
	return svc, mock, cleanup
}

func memberRow(role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(memberColumns).AddRow(uint64(10), uint64(2), uint64(1), role, now, now)
}

func TestPermissionService_Authorize_NoMembership(t *testing.T) {
	svc, mock, cleanup := newPermissionServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findMembershipQuery).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows(memberColumns))

	_, err := svc.Authorize(context.Background(), 1, 2, entity.AvailableUserRoles)
	if !errors.Is(err, service.ErrNoMembership) {
		t.Fatalf("expected ErrNoMembership, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPermissionService_Authorize_RoleNotInAllowList(t *testing.T) {
	svc, mock, cleanup := newPermissionServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findMembershipQuery).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(memberRow(entity.RoleMember))

	_, err := svc.Authorize(context.Background(), 1, 2, []string{entity.RoleAdmin, entity.RoleProjectAdmin})
	if !errors.Is(err, service.ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPermissionService_Authorize_RolesHaveNoHierarchy(t *testing.T) {
	svc, mock, cleanup := newPermissionServiceWithMock(t)
	defer cleanup()

	// admin is not implicitly allowed where only project_admin is listed.
	mock.ExpectQuery(findMembershipQuery).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(memberRow(entity.RoleAdmin))

	_, err := svc.Authorize(context.Background(), 1, 2, []string{entity.RoleProjectAdmin})
	if !errors.Is(err, service.ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPermissionService_Authorize_AllowedReturnsRole(t *testing.T) {
	svc, mock, cleanup := newPermissionServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findMembershipQuery).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(memberRow(entity.RoleProjectAdmin))

	role, err := svc.Authorize(context.Background(), 1, 2, entity.AvailableUserRoles)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if role != entity.RoleProjectAdmin {
		t.Fatalf("expected role %q, got %q", entity.RoleProjectAdmin, role)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
