package trailblog

import (
	"context"
	"errors"
	"log/slog"
)

// The three read shapes below share the same read-through contract: serve
// the cached value unless forced, otherwise query the store, overwrite the
// cache entry, and return the fresh result. An empty listing is a valid
// cached value, distinct from an absent entry. Cache trouble of any kind is
// logged and degrades to a direct store read; it never fails the request.

// TopPosts returns the most recent posts across all states, newest first,
// capped at TopPostCount.
func (b *Blog) TopPosts(ctx context.Context, force bool) ([]*Post, error) {
	key := CacheKeyTop()

	if !force {
		if posts, ok := b.cachedList(ctx, key); ok {
			return posts, nil
		}
	}

	posts, err := b.store.ListRecent(ctx, TopPostCount, false)
	if err != nil {
		return nil, err
	}

	b.putList(ctx, key, posts)
	return posts, nil
}

// PostsForState returns the state's posts, newest first.
func (b *Blog) PostsForState(ctx context.Context, state string, force bool) ([]*Post, error) {
	key := CacheKeyState(state)

	if !force {
		if posts, ok := b.cachedList(ctx, key); ok {
			return posts, nil
		}
	}

	posts, err := b.store.ListByState(ctx, state, false)
	if err != nil {
		return nil, err
	}

	b.putList(ctx, key, posts)
	return posts, nil
}

// PostByID returns a single post by state and id. Soft-deleted posts are
// served too; the permalink and the edit views rely on that.
func (b *Blog) PostByID(ctx context.Context, state string, id int64, force bool) (*Post, error) {
	key := CacheKeyPost(state, id)

	if !force {
		if data, err := b.cache.Get(ctx, key); err == nil {
			post, err := DeserializePost(data)
			if err == nil {
				return post, nil
			}
			b.logger.Warn("discarding undecodable cache entry",
				slog.String("key", key), slog.String("error", err.Error()))
		} else if !errors.Is(err, ErrCacheMiss) {
			b.logger.Warn("cache read failed, falling back to store",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	post, err := b.store.GetByID(ctx, state, id)
	if err != nil {
		return nil, err
	}

	if data, err := post.Serialize(); err == nil {
		if err := b.cache.Set(ctx, key, data); err != nil {
			b.logger.Warn("cache write failed",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return post, nil
}

// refreshState recomputes the listing keys a write under the state could
// have changed: the state listing and the front page. Editing a post under
// one state never touches another state's entry.
func (b *Blog) refreshState(ctx context.Context, state string) {
	if _, err := b.PostsForState(ctx, state, true); err != nil {
		b.logger.Warn("failed to refresh state listing after write",
			slog.String("state", state), slog.String("error", err.Error()))
	}
	if _, err := b.TopPosts(ctx, true); err != nil {
		b.logger.Warn("failed to refresh top posts after write",
			slog.String("error", err.Error()))
	}
}

// refreshPost recomputes the single-post key plus the listing keys.
func (b *Blog) refreshPost(ctx context.Context, state string, id int64) {
	if _, err := b.PostByID(ctx, state, id, true); err != nil {
		b.logger.Warn("failed to refresh post after write",
			slog.String("state", state), slog.Int64("id", id),
			slog.String("error", err.Error()))
	}
	b.refreshState(ctx, state)
}

func (b *Blog) cachedList(ctx context.Context, key string) ([]*Post, bool) {
	data, err := b.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			b.logger.Warn("cache read failed, falling back to store",
				slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}

	posts, err := DeserializePosts(data)
	if err != nil {
		b.logger.Warn("discarding undecodable cache entry",
			slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	return posts, true
}

func (b *Blog) putList(ctx context.Context, key string, posts []*Post) {
	data, err := SerializePosts(posts)
	if err != nil {
		b.logger.Warn("failed to serialize listing for cache",
			slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := b.cache.Set(ctx, key, data); err != nil {
		b.logger.Warn("cache write failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}
