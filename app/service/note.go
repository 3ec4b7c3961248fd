package service

import (
	"context"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
	"github.com/taskhub-io/ms-go-taskhub/app/repository"
)

// NoteService is plain CRUD; project-role authorization for notes happens
// in the route middleware since every note route carries the project id.
type NoteService struct {
	notes *repository.NoteRepository
}

func NewNoteService(notes *repository.NoteRepository) *NoteService {
	return &NoteService{notes: notes}
}

func (s *NoteService) List(ctx context.Context, projectID, authorID uint64) ([]*entity.Note, error) {
	return s.notes.ListByProjectAndAuthor(ctx, projectID, authorID)
}

func (s *NoteService) Get(ctx context.Context, projectID, noteID uint64) (*entity.Note, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil || note.ProjectID != projectID {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (s *NoteService) Create(ctx context.Context, projectID, authorID uint64, content string) (*entity.Note, error) {
	now := time.Now()
	note := &entity.Note{
		ProjectID: projectID,
		CreatedBy: authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, projectID, noteID uint64, content string) (*entity.Note, error) {
	note, err := s.Get(ctx, projectID, noteID)
	if err != nil {
		return nil, err
	}

	note.Content = content
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, projectID, noteID uint64) error {
	note, err := s.Get(ctx, projectID, noteID)
	if err != nil {
		return err
	}

	_, err = s.notes.Delete(ctx, note.ID)
	return err
}
