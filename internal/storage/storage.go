// Package storage is the client for the attachment object store. Objects are
// written once under collision-resistant keys and fetched through short-lived
// signed URLs; the service handles durability and access control.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// KeyPrefix is the access-controlled area uploads land in. It matches the
// storage service's per-user read/write grant.
const KeyPrefix = "photos/"

const maxUploadBytes int64 = 50 * 1024 * 1024 // 50MB

// errUploadTooLarge aborts an upload whose blob exceeds the cap. Truncating
// would store a corrupted object under a key the caller then attaches.
var errUploadTooLarge = fmt.Errorf("blob exceeds upload limit of %d bytes", maxUploadBytes)

// cappedReader fails the stream once more than limit bytes have been read,
// which aborts the in-flight PUT instead of ending the body early.
type cappedReader struct {
	r    io.Reader
	left int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.left < 0 {
		return 0, errUploadTooLarge
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	if c.left < 0 {
		return 0, errUploadTooLarge
	}
	return n, err
}

// TokenSource supplies the bearer token for storage requests.
type TokenSource interface {
	Token() (string, error)
}

// Client performs uploads and signed-URL resolution against the storage
// service.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	log     zerolog.Logger

	// maxUpload is replaceable in tests; production clients keep the cap.
	maxUpload int64
}

func New(baseURL string, tokens TokenSource, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:     &http.Client{Timeout: timeout},
		tokens:    tokens,
		log:       log,
		maxUpload: maxUploadBytes,
	}
}

// ObjectKey builds a fresh storage key for an upload: submission time in unix
// millis plus the sanitized original filename, under the photos/ area. Two
// uploads of the same file in the same millisecond are the only collision, and
// the service rejects overwrites.
func ObjectKey(now time.Time, filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "attachment"
	}
	// Keys travel in URL paths; keep them to a safe charset.
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	return fmt.Sprintf("%s%d-%s", KeyPrefix, now.UnixMilli(), name)
}

// ContentTypeFor guesses a MIME type from the filename extension, defaulting
// to application/octet-stream.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return "application/octet-stream"
}

// Upload stores the blob under key and returns the key the service recorded.
// The returned key is what belongs in an item's attachmentRef; callers must
// not attach it before Upload returns successfully.
func (c *Client) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("upload: missing key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/storage/objects/"+escapeKey(key), &cappedReader{r: r, left: c.maxUpload})
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	if err := c.authorize(req); err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			return "", fmt.Errorf("upload %s: %w", key, errUploadTooLarge)
		}
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload %s: unexpected status %s", key, resp.Status)
	}

	var out struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("upload %s: decode response: %w", key, err)
	}
	if strings.TrimSpace(out.Key) == "" {
		return "", fmt.Errorf("upload %s: service returned no key", key)
	}
	c.log.Debug().Str("key", out.Key).Msg("object uploaded")
	return out.Key, nil
}

// ResolveURL exchanges a storage key for a time-limited fetchable URL. The
// URL's validity window is defined by the service; callers re-resolve on every
// snapshot instead of caching across them.
func (c *Client) ResolveURL(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("resolve url: missing key")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/storage/addresses/"+escapeKey(key), nil)
	if err != nil {
		return "", err
	}
	if err := c.authorize(req); err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve url %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("resolve url %s: unexpected status %s", key, resp.Status)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("resolve url %s: decode response: %w", key, err)
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", fmt.Errorf("resolve url %s: service returned no url", key)
	}
	return out.URL, nil
}

func (c *Client) authorize(req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return err
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return nil
}

// escapeKey escapes each path segment while keeping the / separators, so keys
// like photos/123-a.png stay readable in service logs.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
