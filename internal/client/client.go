package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyText is returned when the server rejects a submission as empty.
	ErrEmptyText = errors.New("client: empty text")
	// ErrNotFound is returned when a requested entry is not in the list.
	ErrNotFound = errors.New("client: entry not found")
	// ErrTextTooLarge is returned when the submission exceeds the server's body limit.
	ErrTextTooLarge = errors.New("client: text too large")
)

// Item is one clipboard entry as returned by the server.
type Item struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusError describes an unexpected HTTP status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("client: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the clipboard API.
type Client struct {
	baseURL string
	http    *http.Client
	retry   RetryPolicy
}

// Option customises the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(cl *Client) {
		cl.retry = p
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		retry:   DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type submitResponse struct {
	Success   bool      `json:"success"`
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Error     string    `json:"error"`
}

// Submit posts text and returns the stored item.
// It makes exactly one attempt; POST is not idempotent.
func (c *Client) Submit(ctx context.Context, text string) (Item, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Item{}, fmt.Errorf("client: encode request: %w", err)
	}

	var out submitResponse
	if err := unwrapPermanent(c.do(ctx, http.MethodPost, payload, &out)); err != nil {
		return Item{}, err
	}

	return Item{ID: out.ID, Text: out.Text, CreatedAt: out.CreatedAt}, nil
}

// List returns the current items, newest first.
func (c *Client) List(ctx context.Context) ([]Item, error) {
	var items []Item
	err := Retry(ctx, c.retry, func() error {
		items = nil
		return c.do(ctx, http.MethodGet, nil, &items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns the item with the given id, or ErrNotFound.
func (c *Client) Get(ctx context.Context, id int64) (Item, error) {
	items, err := c.List(ctx)
	if err != nil {
		return Item{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

// do performs one request. 4xx responses are permanent; transport errors
// and 5xx are left retryable.
func (c *Client) do(ctx context.Context, method string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/clipboard", reader)
	if err != nil {
		return Permanent(fmt.Errorf("client: build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)

		if method == http.MethodPost {
			switch resp.StatusCode {
			case http.StatusBadRequest:
				return Permanent(ErrEmptyText)
			case http.StatusRequestEntityTooLarge:
				return Permanent(ErrTextTooLarge)
			}
		}

		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		if resp.StatusCode < http.StatusInternalServerError {
			return Permanent(statusErr)
		}
		return statusErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return Permanent(fmt.Errorf("client: decode response: %w", err))
	}
	return nil
}
