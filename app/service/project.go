package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
	"github.com/taskhub-io/ms-go-taskhub/app/repository"
)

type ProjectService struct {
	db       *sql.DB
	projects *repository.ProjectRepository
	members  *repository.MembershipRepository
	users    *repository.UserRepository
}

func NewProjectService(
	db *sql.DB,
	projects *repository.ProjectRepository,
	members *repository.MembershipRepository,
	users *repository.UserRepository,
) *ProjectService {
	return &ProjectService{
		db:       db,
		projects: projects,
		members:  members,
		users:    users,
	}
}

func (s *ProjectService) List(ctx context.Context, userID uint64) ([]*entity.Project, error) {
	return s.projects.ListByCreator(ctx, userID)
}

func (s *ProjectService) Get(ctx context.Context, projectID uint64) (*entity.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// Create inserts the project and an admin membership for the creator in one
// transaction, so a project never exists without its admin.
func (s *ProjectService) Create(ctx context.Context, userID uint64, name, description string) (*entity.Project, error) {
	now := time.Now()
	project := &entity.Project{
		Name:        name,
		Description: description,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.projects.WithTx(tx).Create(ctx, project); err != nil {
		return nil, err
	}

	member := &entity.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      entity.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.members.WithTx(tx).Create(ctx, member); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, projectID uint64, name, description string) (*entity.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	project.Name = name
	project.Description = description
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, projectID uint64) error {
	rows, err := s.projects.Delete(ctx, projectID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *ProjectService) ListMembers(ctx context.Context, projectID uint64) ([]*entity.ProjectMemberDetail, error) {
	return s.members.ListByProject(ctx, projectID)
}

// AddMember adds a user to the project by username with the given role.
// The (user, project) pair is unique; adding an existing member fails.
func (s *ProjectService) AddMember(ctx context.Context, projectID uint64, username, role string) (*entity.ProjectMember, error) {
	if !entity.IsValidUserRole(role) {
		return nil, ErrInvalidRole
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.members.FindByUserAndProject(ctx, user.ID, projectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberExists
	}

	now := time.Now()
	member := &entity.ProjectMember{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *ProjectService) UpdateMemberRole(ctx context.Context, projectID, memberID uint64, role string) (*entity.ProjectMember, error) {
	if !entity.IsValidUserRole(role) {
		return nil, ErrInvalidRole
	}

	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.ProjectID != projectID {
		return nil, ErrMemberNotFound
	}

	if _, err := s.members.UpdateRole(ctx, memberID, role); err != nil {
		return nil, err
	}
	member.Role = role
	return member, nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, projectID, memberID uint64) error {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil || member.ProjectID != projectID {
		return ErrMemberNotFound
	}

	_, err = s.members.Delete(ctx, memberID)
	return err
}
