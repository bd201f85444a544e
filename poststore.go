package trailblog

import "context"

// PostStore is the durable backend for posts. Implementations must keep ids
// unique across all states and must serialize conflicting writes to the same
// record.
type PostStore interface {
	// Init initializes the post store, such as creating the necessary buckets or tables.
	Init() error
	// Create validates subject and content, assigns a new unique id and the
	// created timestamp, persists the post, and returns it fully populated.
	Create(ctx context.Context, state, subject, content string) (*Post, error)
	// GetByID retrieves a post by state and id. Soft-deleted posts are
	// returned too; permalinks and edit views need them.
	GetByID(ctx context.Context, state string, id int64) (*Post, error)
	// ListByState returns all posts under the state, created descending.
	// Soft-deleted posts are excluded unless includeDeleted is set.
	ListByState(ctx context.Context, state string, includeDeleted bool) ([]*Post, error)
	// ListRecent returns the most recent posts across all states, created
	// descending, capped at limit. Soft-deleted posts are excluded unless
	// includeDeleted is set.
	ListRecent(ctx context.Context, limit int, includeDeleted bool) ([]*Post, error)
	// Update applies a partial update. State, id, and created are immutable.
	Update(ctx context.Context, state string, id int64, fields PostFields) (*Post, error)
	// SoftDelete flags the post as deleted without removing the record.
	SoftDelete(ctx context.Context, state string, id int64) error
	// Scan walks all posts, deleted included, in a stable (state, id) order.
	// It returns up to limit posts after the cursor plus the cursor for the
	// next batch; an empty next cursor means the scan is done.
	Scan(ctx context.Context, cursor string, limit int) ([]*Post, string, error)
	// Rewrite persists a post back under its existing state and id. It is
	// used by the schema rewrite job and must not assign a new id.
	Rewrite(ctx context.Context, post *Post) error
	// Close closes the post store.
	Close() error
}
