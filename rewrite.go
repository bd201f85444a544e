package trailblog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gosimple/slug"
)

// rewriteCursorKey is where the batch job checkpoints its scan cursor
// between batches. Losing the checkpoint is harmless; the rewrite is
// idempotent and simply starts over.
const rewriteCursorKey = "rewrite:cursor"

// RewriteFunc inspects one post and returns true if it changed the post and
// it should be persisted again.
type RewriteFunc func(*Post) bool

// DefaultRewrite upgrades records written before the current schema: it
// backfills the slug from the subject. It never purges a record.
func DefaultRewrite(post *Post) bool {
	if post.Slug == "" && post.Subject != "" {
		post.Slug = slug.Make(post.Subject)
		return true
	}
	return false
}

// RewriteAll walks every post, deleted included, in resumable batches:
// read the next batch after the checkpoint, apply fn, persist changed
// records, checkpoint the cursor, repeat until the scan is empty. On
// completion the checkpoint is cleared and the whole cache is dropped,
// since rewritten records may appear in any listing. Returns the number of
// rewritten posts.
func (b *Blog) RewriteAll(ctx context.Context, batchSize int, fn RewriteFunc) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	if fn == nil {
		fn = DefaultRewrite
	}

	cursor := b.loadRewriteCursor(ctx)
	rewritten := 0

	for {
		posts, next, err := b.store.Scan(ctx, cursor, batchSize)
		if err != nil {
			return rewritten, fmt.Errorf("error scanning posts for rewrite: %w", err)
		}

		for _, post := range posts {
			if !fn(post) {
				continue
			}
			if err := b.store.Rewrite(ctx, post); err != nil {
				return rewritten, fmt.Errorf("error rewriting post %s/%d: %w", post.State, post.ID, err)
			}
			rewritten++
		}

		if next == "" {
			break
		}

		cursor = next
		if err := b.cache.Set(ctx, rewriteCursorKey, []byte(cursor)); err != nil {
			b.logger.Warn("failed to checkpoint rewrite cursor",
				slog.String("cursor", cursor), slog.String("error", err.Error()))
		}
	}

	if err := b.cache.Delete(ctx, rewriteCursorKey); err != nil {
		b.logger.Warn("failed to clear rewrite checkpoint", slog.String("error", err.Error()))
	}
	if rewritten > 0 {
		if err := b.cache.Clear(ctx); err != nil {
			b.logger.Warn("failed to clear cache after rewrite", slog.String("error", err.Error()))
		}
	}

	b.logger.Info("schema rewrite complete", slog.Int("rewritten", rewritten))
	return rewritten, nil
}

func (b *Blog) loadRewriteCursor(ctx context.Context) string {
	data, err := b.cache.Get(ctx, rewriteCursorKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			b.logger.Warn("failed to load rewrite checkpoint", slog.String("error", err.Error()))
		}
		return ""
	}
	return string(data)
}
