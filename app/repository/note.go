package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
)

type NoteRepository struct {
	db executor
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *entity.Note) error {
	query := `
		INSERT INTO notes (project_id, created_by, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		note.ProjectID,
		note.CreatedBy,
		note.Content,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	note.ID = uint64(id)
	return nil
}

func (r *NoteRepository) FindByID(ctx context.Context, id uint64) (*entity.Note, error) {
	query := `
		SELECT id, project_id, created_by, content, created_at, updated_at
		FROM notes WHERE id = ?
	`
	note := &entity.Note{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID,
		&note.ProjectID,
		&note.CreatedBy,
		&note.Content,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

// ListByProjectAndAuthor returns the caller's own notes on the project.
func (r *NoteRepository) ListByProjectAndAuthor(ctx context.Context, projectID, authorID uint64) ([]*entity.Note, error) {
	query := `
		SELECT id, project_id, created_by, content, created_at, updated_at
		FROM notes WHERE project_id = ? AND created_by = ? ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, projectID, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*entity.Note
	for rows.Next() {
		note := &entity.Note{}
		if err := rows.Scan(
			&note.ID,
			&note.ProjectID,
			&note.CreatedBy,
			&note.Content,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) Update(ctx context.Context, note *entity.Note) error {
	query := `UPDATE notes SET content = ?, updated_at = ? WHERE id = ?`
	note.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query, note.Content, note.UpdatedAt, note.ID)
	return err
}

func (r *NoteRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	query := `DELETE FROM notes WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
