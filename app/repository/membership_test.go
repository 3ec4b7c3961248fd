package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
	"github.com/taskhub-io/ms-go-taskhub/app/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	insertMemberQuery            = `(?s)INSERT INTO project_members \(project_id, user_id, role, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?\)`
	findMemberByUserProjectQuery = `(?s)SELECT id, project_id, user_id, role, created_at, updated_at\s+FROM project_members WHERE user_id = \? AND project_id = \?`
	listMembersQuery             = `(?s)SELECT pm\.id, pm\.project_id, pm\.user_id, pm\.role, pm\.created_at, pm\.updated_at,\s+u\.username, u\.email, u\.fullname\s+FROM project_members pm\s+JOIN users u ON u\.id = pm\.user_id\s+WHERE pm\.project_id = \?\s+ORDER BY pm\.created_at`
	updateMemberRoleQuery        = `UPDATE project_members SET role = \?, updated_at = \? WHERE id = \?`
	deleteMemberQuery            = `DELETE FROM project_members WHERE id = \?`
)

var memberColumns = []string{
	"id",
	"project_id",
	"user_id",
	"role",
	"created_at",
	"updated_at",
}

func TestMembershipRepository_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewMembershipRepository(db)
	now := time.Now()
	member := &entity.ProjectMember{
		ProjectID: 2,
		UserID:    1,
		Role:      entity.RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec(insertMemberQuery).
		WithArgs(member.ProjectID, member.UserID, member.Role, member.CreatedAt, member.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(10, 1))

	if err := repo.Create(context.Background(), member); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if member.ID != 10 {
		t.Fatalf("expected ID 10, got %d", member.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMembershipRepository_FindByUserAndProject(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewMembershipRepository(db)
	now := time.Now()

	mock.ExpectQuery(findMemberByUserProjectQuery).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows(memberColumns).
			AddRow(uint64(10), uint64(2), uint64(1), entity.RoleAdmin, now, now))

	member, err := repo.FindByUserAndProject(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if member == nil || member.Role != entity.RoleAdmin {
		t.Fatalf("unexpected member: %+v", member)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMembershipRepository_FindByUserAndProject_NoRowIsNil(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewMembershipRepository(db)

	mock.ExpectQuery(findMemberByUserProjectQuery).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows(memberColumns))

	member, err := repo.FindByUserAndProject(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if member != nil {
		t.Fatalf("expected nil member, got %+v", member)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMembershipRepository_ListByProject(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewMembershipRepository(db)
	now := time.Now()
	detailColumns := append(append([]string{}, memberColumns...), "username", "email", "fullname")

	mock.ExpectQuery(listMembersQuery).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(detailColumns).
			AddRow(uint64(10), uint64(2), uint64(1), entity.RoleAdmin, now, now, "alice", "alice@example.com", "Alice Example").
			AddRow(uint64(11), uint64(2), uint64(3), entity.RoleMember, now, now, "bob", "bob@example.com", "Bob Example"))

	members, err := repo.ListByProject(context.Background(), 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Username != "alice" || members[1].Role != entity.RoleMember {
		t.Fatalf("unexpected members: %+v, %+v", members[0], members[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMembershipRepository_UpdateRole(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewMembershipRepository(db)

	mock.ExpectExec(updateMemberRoleQuery).
		WithArgs(entity.RoleProjectAdmin, sqlmock.AnyArg(), uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UpdateRole(context.Background(), 10, entity.RoleProjectAdmin)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMembershipRepository_Delete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewMembershipRepository(db)

	mock.ExpectExec(deleteMemberQuery).
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.Delete(context.Background(), 10)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
