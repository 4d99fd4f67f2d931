package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tobiakanji/logos-go/internal/models"
)

// Notes fetches the full remote notes list.
func (c *Client) Notes(ctx context.Context) ([]*models.Note, error) {
	var notes []*models.Note
	err := c.getJSON(ctx, fmt.Sprintf("%s/notes", c.notesBaseURL), &notes)
	return notes, err
}

// CreateNote pushes a new note and returns the server's copy, which
// carries the server-assigned id.
func (c *Client) CreateNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	return c.sendNote(ctx, "POST", fmt.Sprintf("%s/notes", c.notesBaseURL), note)
}

// UpdateNote pushes changes to an existing server-side note.
func (c *Client) UpdateNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	return c.sendNote(ctx, "PUT", fmt.Sprintf("%s/notes/%d", c.notesBaseURL, note.ID), note)
}

// DeleteNote removes a note remotely. Deleting an already-absent note
// is treated as success, so replays after a partial failure converge.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", fmt.Sprintf("%s/notes/%d", c.notesBaseURL, id), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status %d deleting note %d", resp.StatusCode, id)
	}
	return nil
}

func (c *Client) sendNote(ctx context.Context, method, url string, note *models.Note) (*models.Note, error) {
	payload, err := json.Marshal(note)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(string(payload)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %d from notes API", resp.StatusCode)
	}
	var saved models.Note
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return nil, fmt.Errorf("failed to decode notes API response: %w", err)
	}
	return &saved, nil
}
