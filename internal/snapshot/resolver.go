package snapshot

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"todosync/internal/model"
)

// URLResolver exchanges a storage key for a time-limited fetchable URL.
type URLResolver interface {
	ResolveURL(ctx context.Context, key string) (string, error)
}

// ResolveAttachments maps item id -> fetchable URL for every item in the
// snapshot that carries an attachment reference. Resolutions run as
// independent tasks and are all settled before the map is returned; a single
// failed resolution only leaves that item's entry absent, it never blocks the
// others. Items without an attachment never gain an entry.
//
// The result is rebuilt from scratch per snapshot; callers must not merge it
// with a previous snapshot's map.
func ResolveAttachments(ctx context.Context, snap model.Snapshot, r URLResolver, log zerolog.Logger) map[string]string {
	urls := make(map[string]string)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, it := range snap {
		if !it.HasAttachment() {
			continue
		}
		g.Go(func() error {
			u, err := r.ResolveURL(ctx, it.AttachmentRef)
			if err != nil {
				// Degrades a single item's presentation; never escalated.
				log.Debug().Err(err).Str("id", it.ID).Str("key", it.AttachmentRef).
					Msg("attachment resolution failed")
				return nil
			}
			mu.Lock()
			urls[it.ID] = u
			mu.Unlock()
			return nil
		})
	}
	// Errors are swallowed per task, so Wait only joins completion.
	_ = g.Wait()
	return urls
}
