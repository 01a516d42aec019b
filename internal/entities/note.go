package entities

import "time"

// NoteColors is the fixed palette a note's color must come from. The first
// entry is the default for new notes.
var NoteColors = []string{"yellow", "green", "blue", "purple", "pink"}

// ValidNoteColor reports whether color belongs to the palette.
func ValidNoteColor(color string) bool {
	for _, c := range NoteColors {
		if c == color {
			return true
		}
	}
	return false
}

// Note represents a note row in the database. Each note belongs to exactly
// one user; title and content may be empty individually but never both.
type Note struct {
	ID        string    `json:"id"` // UUID
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
