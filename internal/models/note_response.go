package models

import "time"

// NoteResponse is the public view of a note.
type NoteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteListResponse wraps the notes list.
type NoteListResponse struct {
	Notes []*NoteResponse `json:"notes"`
	Count int             `json:"count"`
}
