package trailblog

import (
	"errors"
	"log/slog"
	"os"
)

// TopPostCount is how many posts the front page shows.
const TopPostCount = 10

// Blog is the main entry point for the trailblog core. It wires the post
// store, the read-through cache, and the optional search index together, and
// owns the cache invalidation discipline for every write path.
type Blog struct {
	store  PostStore
	cache  CacheStore
	search *SearchIndex
	logger *slog.Logger
}

// Options is a struct for configuring a new Blog instance.
type Options struct {
	Store  PostStore    // Store is the durable post backend. Required.
	Cache  CacheStore   // Cache is the key-value layer in front of the store. Default is an in-memory cache.
	Search *SearchIndex // Search is the optional full-text index kept in step with writes.
	Logger *slog.Logger // Logger is the logger used by the blog. Default is a debug logger to stderr.
}

// NewBlog creates a new Blog instance with the provided options.
func NewBlog(opts Options) (*Blog, error) {
	if opts.Store == nil {
		return nil, errors.New("Store is required")
	}

	if opts.Cache == nil {
		opts.Cache = NewMemoryCacheStore()
	}

	if opts.Logger == nil {
		opts.Logger = defaultLogger()
	}

	return &Blog{
		store:  opts.Store,
		cache:  opts.Cache,
		search: opts.Search,
		logger: opts.Logger,
	}, nil
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelDebug,
		}))
}

// Close closes the blog's store, cache, and search index.
func (b *Blog) Close() error {
	var errs []error
	if err := b.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.cache.Close(); err != nil {
		errs = append(errs, err)
	}
	if b.search != nil {
		if err := b.search.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
