package learning

import (
	"context"
	"strings"

	"github.com/splax/learnhub/internal/domain"
)

// ListNotes returns the caller's notes on a lesson.
func (s Service) ListNotes(ctx context.Context, caller domain.Identity, lessonID int64) ([]domain.Note, error) {
	if err := s.guard.EnsureLessonVisible(ctx, caller, lessonID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, caller.ID, lessonID)
}

// CreateNote stores a note on a visible lesson.
func (s Service) CreateNote(ctx context.Context, caller domain.Identity, lessonID int64, content string) (*domain.Note, error) {
	if err := s.guard.EnsureLessonVisible(ctx, caller, lessonID); err != nil {
		return nil, err
	}
	note := &domain.Note{UserID: caller.ID, LessonID: lessonID, Content: strings.TrimSpace(content)}
	if note.Content == "" {
		return nil, domain.Invalid("note cannot be empty")
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote rewrites a note of the caller.
func (s Service) UpdateNote(ctx context.Context, caller domain.Identity, id int64, content string) (*domain.Note, error) {
	note, err := s.repo.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.UserID != caller.ID {
		return nil, domain.ErrForbidden
	}
	note.Content = strings.TrimSpace(content)
	if note.Content == "" {
		return nil, domain.Invalid("note cannot be empty")
	}
	if err := s.repo.UpdateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note of the caller.
func (s Service) DeleteNote(ctx context.Context, caller domain.Identity, id int64) error {
	note, err := s.repo.GetNote(ctx, id)
	if err != nil {
		return err
	}
	if note.UserID != caller.ID {
		return domain.ErrForbidden
	}
	return s.repo.DeleteNote(ctx, id)
}

// ListBookmarks returns the caller's bookmarks.
func (s Service) ListBookmarks(ctx context.Context, caller domain.Identity) ([]domain.Bookmark, error) {
	return s.repo.ListBookmarks(ctx, caller.ID)
}

// CreateBookmark saves a visible lesson. Bookmarking twice is a conflict.
func (s Service) CreateBookmark(ctx context.Context, caller domain.Identity, lessonID int64) (*domain.Bookmark, error) {
	if err := s.guard.EnsureLessonVisible(ctx, caller, lessonID); err != nil {
		return nil, err
	}
	bookmark := &domain.Bookmark{UserID: caller.ID, LessonID: lessonID}
	if err := s.repo.CreateBookmark(ctx, bookmark); err != nil {
		return nil, err
	}
	return bookmark, nil
}

// DeleteBookmark removes a bookmark of the caller.
func (s Service) DeleteBookmark(ctx context.Context, caller domain.Identity, id int64) error {
	bookmark, err := s.repo.GetBookmark(ctx, id)
	if err != nil {
		return err
	}
	if bookmark.UserID != caller.ID {
		return domain.ErrForbidden
	}
	return s.repo.DeleteBookmark(ctx, id)
}
