// Package dashboard holds the authenticated screen's state: the user's notes,
// the live search filter and the create/edit/delete operations. Local state
// changes only after the store call succeeds (confirm-then-apply).
package dashboard

import (
	"context"
	"strings"
	"sync"

	"scribesnap/internal/scribe"
)

// Controller owns the notes list for one signed-in user.
type Controller struct {
	store scribe.NotesStore

	mu      sync.Mutex
	notes   []scribe.Note
	query   string
	loading bool
	loadGen uint64
}

// New creates a controller over the given store.
func New(store scribe.NotesStore) *Controller {
	return &Controller{store: store}
}

// Load fetches the user's notes. Each call supersedes earlier in-flight
// loads; a result arriving for a superseded load is discarded.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadGen++
	gen := c.loadGen
	c.loading = true
	c.mu.Unlock()

	notes, err := c.store.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen {
		// A newer load owns the state now.
		return nil
	}
	c.loading = false
	if err != nil {
		return err
	}
	c.notes = notes
	return nil
}

// Loading reports whether the initial load is still outstanding.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SetQuery updates the live search string.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// Query returns the current search string.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Notes returns the unfiltered list in display order.
func (c *Controller) Notes() []scribe.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]scribe.Note, len(c.notes))
	copy(out, c.notes)
	return out
}

// Filtered returns the notes matching the search string, case-insensitively,
// against title and content. An empty query matches everything.
func (c *Controller) Filtered() []scribe.Note {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := strings.ToLower(c.query)
	if q == "" {
		out := make([]scribe.Note, len(c.notes))
		copy(out, c.notes)
		return out
	}

	var out []scribe.Note
	for _, n := range c.notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}

// Create inserts a note and, once the store confirms, prepends the returned
// record (server-assigned id and timestamps) to the list.
func (c *Controller) Create(ctx context.Context, title, content, color string) (*scribe.Note, error) {
	note, err := c.store.Insert(ctx, title, content, color)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.notes = append([]scribe.Note{*note}, c.notes...)
	c.mu.Unlock()
	return note, nil
}

// Edit updates a note and patches the local entry in place once the store
// confirms. The entry keeps its position; no re-sort happens on edit.
func (c *Controller) Edit(ctx context.Context, id string, fields scribe.NoteFields) (*scribe.Note, error) {
	note, err := c.store.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i := range c.notes {
		if c.notes[i].ID == id {
			c.notes[i] = *note
			break
		}
	}
	c.mu.Unlock()
	return note, nil
}

// Delete removes the note remotely, then drops exactly the matching local
// entry. There is no undo.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.notes {
		if c.notes[i].ID == id {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}
