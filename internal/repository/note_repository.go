package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"scribesnap/internal/entities"
)

const noteColumns = "id, user_id, title, content, color, created_at, updated_at"

// NoteRepository defines the interface for note database operations. Every
// query is scoped to the owning user; a note belonging to someone else reads
// as ErrNotFound.
type NoteRepository interface {
	Create(userID, title, content, color string) (*entities.Note, error)
	FindByID(id, userID string) (*entities.Note, error)
	ListByUser(userID string) ([]*entities.Note, error)
	Update(id, userID string, title, content, color *string) (*entities.Note, error)
	Delete(id, userID string) error
}

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db}
}

func scanNote(row *sql.Row) (*entities.Note, error) {
	var note entities.Note
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.Color,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}
	return &note, nil
}

// Create inserts a new note owned by userID.
func (r *noteRepository) Create(userID, title, content, color string) (*entities.Note, error) {
	query := `
		INSERT INTO notes (user_id, title, content, color)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + noteColumns

	note, err := scanNote(r.db.QueryRow(query, userID, title, content, color))
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// FindByID returns the note only when it is owned by userID.
func (r *noteRepository) FindByID(id, userID string) (*entities.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND user_id = $2`
	return scanNote(r.db.QueryRow(query, id, userID))
}

// ListByUser returns the user's notes, most recently updated first.
func (r *noteRepository) ListByUser(userID string) ([]*entities.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*entities.Note
	for rows.Next() {
		var note entities.Note
		if err := rows.Scan(
			&note.ID,
			&note.UserID,
			&note.Title,
			&note.Content,
			&note.Color,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, &note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// Update patches the given fields and refreshes updated_at. Nil fields are
// left unchanged.
func (r *noteRepository) Update(id, userID string, title, content, color *string) (*entities.Note, error) {
	query := `
		UPDATE notes
		SET title = COALESCE($3, title),
		    content = COALESCE($4, content),
		    color = COALESCE($5, color),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + noteColumns

	return scanNote(r.db.QueryRow(query, id, userID, title, content, color))
}

// Delete removes the note when owned by userID.
func (r *noteRepository) Delete(id, userID string) error {
	res, err := r.db.Exec(`DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return requireRow(res)
}
