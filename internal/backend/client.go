// Package backend is the thin client for the managed to-do service. It covers
// the handful of operations the service exposes: sign-in/sign-out, item
// create/update/delete, a one-shot list, and a live snapshot subscription.
// Persistence, ownership filtering and authorization all live server-side;
// nothing here reimplements them.
package backend

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

	"github.com/rs/zerolog"

	"todosync/internal/model"
)

// Client talks JSON over HTTP to the backend. Zero value is not usable; build
// one with New.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  *TokenStore
	log     zerolog.Logger
}

// New returns a Client for the backend at baseURL. Every request is bounded by
// timeout; a hung request surfaces as an ordinary error rather than blocking
// the caller forever.
func New(baseURL string, tokens *TokenStore, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// apiError is the backend's error envelope: a list of messages attached to an
// otherwise-failed operation.
type apiError struct {
	Message string `json:"message"`
}

type itemEnvelope struct {
	Item   model.Item `json:"item"`
	Errors []apiError `json:"errors,omitempty"`
}

type listEnvelope struct {
	Items  []model.Item `json:"items"`
	Errors []apiError   `json:"errors,omitempty"`
}

func joinAPIErrors(errs []apiError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if strings.TrimSpace(e.Message) != "" {
			msgs = append(msgs, e.Message)
		}
	}
	if len(msgs) == 0 {
		return errors.New("backend reported an unspecified error")
	}
	return errors.New(strings.Join(msgs, "; "))
}

// UpdateItemRequest is a partial update. Nil fields are left untouched by the
// backend; in particular an update without AttachmentRef never changes an
// existing attachment.
type UpdateItemRequest struct {
	Content       *string `json:"content,omitempty"`
	Done          *bool   `json:"done,omitempty"`
	AttachmentRef *string `json:"attachmentRef,omitempty"`
}

// CreateItem creates a new item. attachmentRef may be empty for items without
// a photo.
func (c *Client) CreateItem(ctx context.Context, content, attachmentRef string) (model.Item, error) {
	body := map[string]string{"content": content}
	if strings.TrimSpace(attachmentRef) != "" {
		body["attachmentRef"] = attachmentRef
	}
	var env itemEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/items", body, &env); err != nil {
		return model.Item{}, fmt.Errorf("create item: %w", err)
	}
	if err := joinAPIErrors(env.Errors); err != nil {
		return model.Item{}, fmt.Errorf("create item: %w", err)
	}
	c.log.Debug().Str("id", env.Item.ID).Msg("item created")
	return env.Item, nil
}

// UpdateItem applies a partial update to the item with the given id.
func (c *Client) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (model.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Item{}, errors.New("update item: missing id")
	}
	var env itemEnvelope
	if err := c.do(ctx, http.MethodPatch, "/api/items/"+id, req, &env); err != nil {
		return model.Item{}, fmt.Errorf("update item %s: %w", id, err)
	}
	if err := joinAPIErrors(env.Errors); err != nil {
		return model.Item{}, fmt.Errorf("update item %s: %w", id, err)
	}
	c.log.Debug().Str("id", id).Msg("item updated")
	return env.Item, nil
}

// DeleteItem removes the item with the given id. Confirmation is the caller's
// responsibility; this issues the request unconditionally.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("delete item: missing id")
	}
	var env itemEnvelope
	if err := c.do(ctx, http.MethodDelete, "/api/items/"+id, nil, &env); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	if err := joinAPIErrors(env.Errors); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	c.log.Debug().Str("id", id).Msg("item deleted")
	return nil
}

// ListItems fetches the current collection once, without subscribing. Used by
// the scriptable CLI; the TUI relies on the live subscription instead.
func (c *Client) ListItems(ctx context.Context) (model.Snapshot, error) {
	var env listEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/items", nil, &env); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if err := joinAPIErrors(env.Errors); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return model.Snapshot(env.Items), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok, err := c.tokens.Token(); err == nil && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrNotSignedIn
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The envelope's errors (when present) beat a bare status code.
		var env itemEnvelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil {
			if apiErr := joinAPIErrors(env.Errors); apiErr != nil {
				return apiErr
			}
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
