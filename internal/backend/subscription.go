package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"todosync/internal/model"
)

// ErrSubscriptionClosed is reported by Subscription.Err after the transport
// terminated without an explicit Cancel.
var ErrSubscriptionClosed = errors.New("subscription closed by transport")

// wire frames for the watch socket. The client sends one subscribe frame; the
// server then pushes a full snapshot on every collection change. Never a diff.
type watchRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

type watchFrame struct {
	ID    string       `json:"id,omitempty"`
	Type  string       `json:"type"`
	Items []model.Item `json:"items,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Subscription is a live view of the item collection. Snapshots arrive on
// Snapshots() in delivery order; the channel closes when the subscription
// ends, at which point Err explains why (nil after a local Cancel).
type Subscription struct {
	conn  *websocket.Conn
	snaps chan model.Snapshot

	cancelOnce sync.Once
	canceled   chan struct{}

	mu  sync.Mutex
	err error
}

// Watch opens the live subscription. The server scopes the collection to the
// authenticated principal; the client never filters by owner itself.
func (c *Client) Watch(ctx context.Context) (*Subscription, error) {
	wsURL, err := watchURL(c.baseURL)
	if err != nil {
		return nil, err
	}

	hdr := http.Header{}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, err
		}
		if tok == "" {
			return nil, ErrNotSignedIn
		}
		hdr.Set("Authorization", "Bearer "+tok)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, hdr)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrNotSignedIn
		}
		return nil, fmt.Errorf("watch: dial %s: %w", wsURL, err)
	}

	sub := &Subscription{
		conn:     conn,
		snaps:    make(chan model.Snapshot),
		canceled: make(chan struct{}),
	}

	reqID := uuid.NewString()
	if err := conn.WriteJSON(watchRequest{ID: reqID, Action: "subscribe"}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("watch: subscribe: %w", err)
	}
	c.log.Debug().Str("request", reqID).Msg("subscription opened")

	go sub.readLoop(c)
	return sub, nil
}

// Snapshots returns the snapshot stream. The channel closes when the
// subscription ends (Cancel or transport failure).
func (s *Subscription) Snapshots() <-chan model.Snapshot { return s.snaps }

// Err reports why the subscription ended. Nil while it is still live or after
// a local Cancel.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel stops the subscription. Idempotent, and safe to call after the
// subscription already ended on its own.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		close(s.canceled)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteMessage(websocket.CloseMessage, msg)
		_ = s.conn.Close()
	})
}

func (s *Subscription) readLoop(c *Client) {
	defer close(s.snaps)
	for {
		var frame watchFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			select {
			case <-s.canceled:
				// Local cancel; not an error.
			default:
				s.mu.Lock()
				s.err = fmt.Errorf("%w: %v", ErrSubscriptionClosed, err)
				s.mu.Unlock()
				c.log.Warn().Err(err).Msg("subscription terminated")
			}
			return
		}

		switch frame.Type {
		case "snapshot":
			snap := make(model.Snapshot, len(frame.Items))
			copy(snap, frame.Items)
			select {
			case s.snaps <- snap:
			case <-s.canceled:
				return
			}
		case "error":
			s.mu.Lock()
			s.err = fmt.Errorf("%w: %s", ErrSubscriptionClosed, frame.Error)
			s.mu.Unlock()
			c.log.Warn().Str("error", frame.Error).Msg("subscription rejected by server")
			return
		default:
			// Unknown frame types are skipped so protocol additions stay
			// backward compatible.
			c.log.Debug().Str("type", frame.Type).Msg("ignoring unknown watch frame")
		}
	}
}

func watchURL(base string) (string, error) {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/api/items/watch", nil
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/api/items/watch", nil
	default:
		return "", fmt.Errorf("watch: unsupported server url %q", base)
	}
}
