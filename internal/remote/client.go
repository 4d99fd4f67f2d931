// Package remote is the HTTP client for the upstream scripture content
// API and the notes API. It owns no caching; callers decide how to
// degrade when a request fails.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tobiakanji/logos-go/internal/models"
)

// ErrNetwork wraps transport-level failures so callers can distinguish
// "the network is down" from "the server said no".
var ErrNetwork = errors.New("network failure")

// Client talks to the scripture content API and the notes API.
type Client struct {
	client        *http.Client
	sourceBaseURL string
	notesBaseURL  string
}

// New creates a new Client. Base URLs must not have a trailing slash.
func New(sourceBaseURL, notesBaseURL string) *Client {
	return &Client{
		client:        &http.Client{Timeout: 30 * time.Second},
		sourceBaseURL: sourceBaseURL,
		notesBaseURL:  notesBaseURL,
	}
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// Testaments fetches the top-level testament list.
func (c *Client) Testaments(ctx context.Context) ([]*models.Testament, error) {
	var testaments []*models.Testament
	err := c.getJSON(ctx, fmt.Sprintf("%s/testaments", c.sourceBaseURL), &testaments)
	return testaments, err
}

// Books fetches the books belonging to a testament.
func (c *Client) Books(ctx context.Context, testamentID int64) ([]*models.Book, error) {
	var books []*models.Book
	err := c.getJSON(ctx, fmt.Sprintf("%s/testaments/%d/books", c.sourceBaseURL, testamentID), &books)
	return books, err
}

// Chapter fetches a single chapter's verses.
func (c *Client) Chapter(ctx context.Context, bookID string, number int) (*models.Chapter, error) {
	var chapter models.Chapter
	err := c.getJSON(ctx, fmt.Sprintf("%s/books/%s/chapters/%d", c.sourceBaseURL, bookID, number), &chapter)
	if err != nil {
		return nil, err
	}
	if chapter.BookID == "" {
		chapter.BookID = bookID
	}
	if chapter.Number == 0 {
		chapter.Number = number
	}
	return &chapter, nil
}

// Book fetches a single book with all of its chapters, for the lazy
// per-book download path.
func (c *Client) Book(ctx context.Context, bookID string) (*models.Book, error) {
	var book models.Book
	err := c.getJSON(ctx, fmt.Sprintf("%s/books/%s", c.sourceBaseURL, bookID), &book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FullDataset streams the bulk endpoint's body, reporting written/total
// bytes at network-chunk granularity via onChunk (which may be nil).
// The body is decoded only after it has been read in full; a truncated
// or failed stream returns an error and no dataset.
func (c *Client) FullDataset(ctx context.Context, onChunk func(written, total int64)) (*models.BibleDataset, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/bible/full", c.sourceBaseURL), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from bulk endpoint", resp.StatusCode)
	}

	total := resp.ContentLength // -1 when the server does not say
	var buf bytes.Buffer
	var written int64
	chunk := make([]byte, 64*1024)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			written += int64(n)
			if onChunk != nil {
				onChunk(written, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("%w: bulk download interrupted: %v", ErrNetwork, readErr)
		}
	}

	var dataset models.BibleDataset
	if err := json.Unmarshal(buf.Bytes(), &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse bulk dataset: %w", err)
	}
	if len(dataset.Books) == 0 {
		return nil, fmt.Errorf("bulk dataset contained no books")
	}
	return &dataset, nil
}

// Online probes the notes API with a short timeout. It is the
// connectivity check used before draining the pending queue.
func (c *Client) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/notes", c.notesBaseURL), nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
