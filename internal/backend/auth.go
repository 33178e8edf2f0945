package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotSignedIn is returned when an operation needs a session token and none
// is stored, or the backend rejected the one we sent.
var ErrNotSignedIn = errors.New("not signed in (run `todosync login`)")

// sessionClaims is the subset of the backend token's claims the client reads.
// The token is issued and verified server-side; the client only parses it
// (unverified) to show who is signed in.
type sessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// TokenStore keeps the session token on disk between runs.
type TokenStore struct {
	path string

	mu     sync.Mutex
	cached string
	loaded bool
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Token returns the stored session token, or empty when signed out.
func (ts *TokenStore) Token() (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.loaded {
		return ts.cached, nil
	}
	b, err := os.ReadFile(ts.path)
	if err != nil {
		if os.IsNotExist(err) {
			ts.loaded = true
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	ts.cached = strings.TrimSpace(string(b))
	ts.loaded = true
	return ts.cached, nil
}

func (ts *TokenStore) put(token string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(ts.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(ts.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	ts.cached = token
	ts.loaded = true
	return nil
}

func (ts *TokenStore) clear() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.cached = ""
	ts.loaded = true
	if err := os.Remove(ts.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SignIn exchanges credentials for a session token and persists it.
func (c *Client) SignIn(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/session", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errors.New("sign in: invalid credentials")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sign in: unexpected status %s", resp.Status)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("sign in: decode response: %w", err)
	}
	if strings.TrimSpace(out.Token) == "" {
		return errors.New("sign in: backend returned no token")
	}
	if err := c.tokens.put(out.Token); err != nil {
		return err
	}
	c.log.Info().Str("user", c.CurrentUser()).Msg("signed in")
	return nil
}

// SignOut invalidates the server session (best effort) and always clears the
// local token.
func (c *Client) SignOut(ctx context.Context) error {
	if tok, err := c.tokens.Token(); err == nil && tok != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/session", nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+tok)
			if resp, err := c.httpc.Do(req); err == nil {
				resp.Body.Close()
			}
		}
	}
	return c.tokens.clear()
}

// CurrentUser returns an identity label for the signed-in principal, or empty
// when signed out. The label comes from the token's claims; verification is
// the backend's job, this is display only.
func (c *Client) CurrentUser() string {
	tok, err := c.tokens.Token()
	if err != nil || tok == "" {
		return ""
	}
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return ""
	}
	switch {
	case claims.Email != "":
		return claims.Email
	case claims.Username != "":
		return claims.Username
	default:
		return claims.Subject
	}
}
