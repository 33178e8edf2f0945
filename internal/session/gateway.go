package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"todosync/internal/backend"
	"todosync/internal/model"
	"todosync/internal/storage"
)

// ItemWriter is the slice of the backend client the gateway needs.
type ItemWriter interface {
	CreateItem(ctx context.Context, content, attachmentRef string) (model.Item, error)
	UpdateItem(ctx context.Context, id string, req backend.UpdateItemRequest) (model.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// Uploader is the slice of the storage client the gateway needs.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// Gateway commits edit sessions. One commit performs, strictly in order: an
// upload when a file is staged, then exactly one create or update. The order
// is an invariant, not an accident: an item must never reference a storage key
// before the object is durably stored.
type Gateway struct {
	items ItemWriter
	blobs Uploader
	log   zerolog.Logger

	// now is replaceable in tests so object keys are deterministic.
	now func() time.Time
}

func NewGateway(items ItemWriter, blobs Uploader, log zerolog.Logger) *Gateway {
	return &Gateway{items: items, blobs: blobs, log: log, now: time.Now}
}

// Result describes what a commit did.
type Result struct {
	// Skipped is true when blank staged content made the commit a no-op.
	Skipped bool
	// Item is the created/updated record when a request was issued and
	// succeeded.
	Item model.Item
	// UploadedKey is the storage key of the uploaded file, when one was
	// staged.
	UploadedKey string
}

// Commit turns the staged session into remote requests per its mode.
//
// Session afterwards:
//   - blank content: untouched (still open), no request issued
//   - upload failure: untouched (still open) so the user can retry
//   - create/update issued: Closed, whether the request succeeded or failed;
//     a failure after a completed upload is surfaced, not retried
func (g *Gateway) Commit(ctx context.Context, s *Session) (Result, error) {
	if s.Mode() == Closed {
		return Result{}, errors.New("commit: no open edit session")
	}
	if s.Blank() {
		return Result{Skipped: true}, nil
	}
	content := strings.TrimSpace(s.Content())

	var uploadedKey string
	if s.FilePath() != "" {
		key, err := g.uploadStagedFile(ctx, s.FilePath())
		if err != nil {
			// Abort the whole commit; no create/update happens and the
			// session stays open for a retry.
			return Result{}, fmt.Errorf("commit: %w", err)
		}
		uploadedKey = key
	}

	var (
		item model.Item
		err  error
	)
	switch s.Mode() {
	case Creating:
		item, err = g.items.CreateItem(ctx, content, uploadedKey)
	case Editing:
		req := backend.UpdateItemRequest{Content: &content}
		// Only a freshly uploaded file touches the attachment; an edit
		// without one leaves the existing reference as-is.
		if uploadedKey != "" {
			req.AttachmentRef = &uploadedKey
		}
		item, err = g.items.UpdateItem(ctx, s.ItemID(), req)
	}

	// The session closes regardless: the upload (if any) already happened and
	// a failed create/update is reported, not rolled back.
	s.Cancel()

	if err != nil {
		g.log.Error().Err(err).Str("key", uploadedKey).Msg("commit request failed")
		return Result{UploadedKey: uploadedKey}, err
	}
	return Result{Item: item, UploadedKey: uploadedKey}, nil
}

// Delete issues the single delete request for id. Confirmation gating happens
// in the caller (TUI confirm modal, CLI --yes); a declined confirmation means
// this is never called.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	return g.items.DeleteItem(ctx, id)
}

// SetDone flips an item's done flag via a partial update.
func (g *Gateway) SetDone(ctx context.Context, id string, done bool) (model.Item, error) {
	return g.items.UpdateItem(ctx, id, backend.UpdateItemRequest{Done: &done})
}

func (g *Gateway) uploadStagedFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	key := storage.ObjectKey(g.now(), name)
	stored, err := g.blobs.Upload(ctx, key, f, storage.ContentTypeFor(name))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return stored, nil
}
