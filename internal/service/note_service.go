package service

import (
	"context"
	"errors"
	"strings"

	"scribesnap/internal/entities"
	"scribesnap/internal/models"
	"scribesnap/internal/repository"
)

var (
	ErrEmptyNote    = errors.New("a note needs a title or some content")
	ErrInvalidColor = errors.New("color must be one of the note palette")
)

// NoteService defines the interface for note business logic. Every operation
// is scoped to the calling user's id.
type NoteService interface {
	List(ctx context.Context, userID string) (*models.NoteListResponse, error)
	Create(ctx context.Context, userID string, req *models.CreateNoteRequest) (*models.NoteResponse, error)
	Get(ctx context.Context, userID, noteID string) (*models.NoteResponse, error)
	Update(ctx context.Context, userID, noteID string, req *models.UpdateNoteRequest) (*models.NoteResponse, error)
	Delete(ctx context.Context, userID, noteID string) error
}

type noteService struct {
	repo repository.NoteRepository
}

// NewNoteService creates a new note service.
func NewNoteService(repo repository.NoteRepository) NoteService {
	return &noteService{repo: repo}
}

// List returns the user's notes, most recently updated first.
func (s *noteService) List(ctx context.Context, userID string) (*models.NoteListResponse, error) {
	notes, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	resp := &models.NoteListResponse{Notes: make([]*models.NoteResponse, len(notes))}
	for i, note := range notes {
		resp.Notes[i] = toNoteResponse(note)
	}
	resp.Count = len(resp.Notes)
	return resp, nil
}

// Create stores a new note. A note that is blank after trimming both fields
// is rejected before touching the store.
func (s *noteService) Create(ctx context.Context, userID string, req *models.CreateNoteRequest) (*models.NoteResponse, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" && content == "" {
		return nil, ErrEmptyNote
	}

	color := req.Color
	if color == "" {
		color = entities.NoteColors[0]
	}
	if !entities.ValidNoteColor(color) {
		return nil, ErrInvalidColor
	}

	note, err := s.repo.Create(userID, title, content, color)
	if err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

// Get returns a single note owned by the user.
func (s *noteService) Get(ctx context.Context, userID, noteID string) (*models.NoteResponse, error) {
	note, err := s.repo.FindByID(noteID, userID)
	if err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

// Update patches the given fields. The empty-note invariant holds for the
// resulting row, so an update that would blank out both fields is rejected.
func (s *noteService) Update(ctx context.Context, userID, noteID string, req *models.UpdateNoteRequest) (*models.NoteResponse, error) {
	if req.Color != nil && !entities.ValidNoteColor(*req.Color) {
		return nil, ErrInvalidColor
	}

	current, err := s.repo.FindByID(noteID, userID)
	if err != nil {
		return nil, err
	}

	title := current.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	content := current.Content
	if req.Content != nil {
		content = strings.TrimSpace(*req.Content)
		req.Content = &content
	}
	if title == "" && content == "" {
		return nil, ErrEmptyNote
	}

	note, err := s.repo.Update(noteID, userID, req.Title, req.Content, req.Color)
	if err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

// Delete removes the note. Irreversible; there is no undo.
func (s *noteService) Delete(ctx context.Context, userID, noteID string) error {
	return s.repo.Delete(noteID, userID)
}

func toNoteResponse(note *entities.Note) *models.NoteResponse {
	return &models.NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Color:     note.Color,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
