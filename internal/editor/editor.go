// Package editor models the note editor form: a draft of title, content and
// color, the empty-note save guard and the unsaved-changes check.
package editor

import (
	"errors"
	"strings"

	"scribesnap/internal/scribe"
)

// ErrEmptyNote rejects saving a note whose title and content are both blank.
var ErrEmptyNote = errors.New("add a title or content to save the note")

// DefaultColor is the palette entry new notes start with.
const DefaultColor = "yellow"

// Editor is the draft state of the modal form. A nil original means a new
// note is being created.
type Editor struct {
	original *scribe.Note

	Title   string
	Content string
	Color   string
}

// New creates an editor pre-filled from the note being edited, or an empty
// draft with the default color when note is nil.
func New(note *scribe.Note) *Editor {
	e := &Editor{original: note, Color: DefaultColor}
	if note != nil {
		copied := *note
		e.original = &copied
		e.Title = note.Title
		e.Content = note.Content
		e.Color = note.Color
	}
	return e
}

// Editing reports whether the draft edits an existing note.
func (e *Editor) Editing() bool {
	return e.original != nil
}

// Payload validates the draft and returns the trimmed fields to persist.
// A draft blank in both title and content is rejected before any store call.
func (e *Editor) Payload() (title, content, color string, err error) {
	title = strings.TrimSpace(e.Title)
	content = strings.TrimSpace(e.Content)
	if title == "" && content == "" {
		return "", "", "", ErrEmptyNote
	}
	return title, content, e.Color, nil
}

// Dirty reports whether closing would discard work: a new note with any text
// entered, or an edit where any field (color included) differs from the
// original. Callers must ask for confirmation before closing a dirty draft.
func (e *Editor) Dirty() bool {
	hasText := strings.TrimSpace(e.Title) != "" || strings.TrimSpace(e.Content) != ""
	if !hasText {
		return false
	}
	if e.original == nil {
		return true
	}
	return e.Title != e.original.Title ||
		e.Content != e.original.Content ||
		e.Color != e.original.Color
}
