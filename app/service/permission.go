package service

import (
	"context"

	"github.com/taskhub-io/ms-go-taskhub/app/repository"
)

// PermissionService is the project-scoped authorization gate. A caller is
// allowed iff their membership role on the project is literally in the
// allow-list; roles are a flat enumeration with no hierarchy.
type PermissionService struct {
	members *repository.MembershipRepository
}

func NewPermissionService(members *repository.MembershipRepository) *PermissionService {
	return &PermissionService{members: members}
}

// Authorize performs exactly one membership lookup and returns the caller's
// role on success so downstream code never re-queries it.
func (s *PermissionService) Authorize(ctx context.Context, userID, projectID uint64, allowedRoles []string) (string, error) {
	member, err := s.members.FindByUserAndProject(ctx, userID, projectID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", ErrNoMembership
	}

	for _, role := range allowedRoles {
		if role == member.Role {
			return member.Role, nil
		}
	}
	return "", ErrInsufficientRole
}
