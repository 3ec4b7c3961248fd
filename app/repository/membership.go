package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
)

type MembershipRepository struct {
	db executor
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) WithTx(tx *sql.Tx) *MembershipRepository {
	return &MembershipRepository{db: tx}
}

func (r *MembershipRepository) Create(ctx context.Context, member *entity.ProjectMember) error {
	query := `
		INSERT INTO project_members (project_id, user_id, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		member.ProjectID,
		member.UserID,
		member.Role,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	member.ID = uint64(id)
	return nil
}

// FindByUserAndProject returns the single membership row for the pair, or
// nil when the user has no membership on the project. The schema enforces
// at most one row per (user, project).
func (r *MembershipRepository) FindByUserAndProject(ctx context.Context, userID, projectID uint64) (*entity.ProjectMember, error) {
	query := `
		SELECT id, project_id, user_id, role, created_at, updated_at
		FROM project_members WHERE user_id = ? AND project_id = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, projectID))
}

func (r *MembershipRepository) FindByID(ctx context.Context, id uint64) (*entity.ProjectMember, error) {
	query := `
		SELECT id, project_id, user_id, role, created_at, updated_at
		FROM project_members WHERE id = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *MembershipRepository) ListByProject(ctx context.Context, projectID uint64) ([]*entity.ProjectMemberDetail, error) {
	query := `
		SELECT pm.id, pm.project_id, pm.user_id, pm.role, pm.created_at, pm.updated_at,
		       u.username, u.email, u.fullname
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = ?
		ORDER BY pm.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*entity.ProjectMemberDetail
	for rows.Next() {
		member := &entity.ProjectMemberDetail{}
		if err := rows.Scan(
			&member.ID,
			&member.ProjectID,
			&member.UserID,
			&member.Role,
			&member.CreatedAt,
			&member.UpdatedAt,
			&member.Username,
			&member.Email,
			&member.FullName,
		); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, id uint64, role string) (int64, error) {
	query := `UPDATE project_members SET role = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, role, time.Now(), id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MembershipRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	query := `DELETE FROM project_members WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MembershipRepository) scanOne(row *sql.Row) (*entity.ProjectMember, error) {
	member := &entity.ProjectMember{}
	err := row.Scan(
		&member.ID,
		&member.ProjectID,
		&member.UserID,
		&member.Role,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}
