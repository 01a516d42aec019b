package models

// CreateNoteRequest represents the request body for creating a note. Color is
// optional and defaults to the first palette entry.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Color   string `json:"color,omitempty"`
}

// UpdateNoteRequest represents a partial note update. Nil fields are left
// unchanged.
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Color   *string `json:"color,omitempty"`
}
