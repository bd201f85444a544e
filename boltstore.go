package trailblog

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const (
	boltFile    = "trailblog.db"
	bucketPosts = "posts"
)

// BoltStore implements PostStore on top of a bbolt database. Posts live in
// nested buckets, one per state, keyed by the big-endian id. Ids come from
// the parent bucket's sequence so they are unique across states.
type BoltStore struct {
	dataDir string
	db      *bbolt.DB
	now     func() time.Time
}

// NewBoltStore creates a BoltStore rooted at dataDir. Call Init before use.
func NewBoltStore(dataDir string) *BoltStore {
	return &BoltStore{
		dataDir: dataDir,
		now:     time.Now,
	}
}

// Init opens the database file and creates the post buckets.
func (bs *BoltStore) Init() error {
	db, err := bbolt.Open(filepath.Join(bs.dataDir, boltFile), 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists([]byte(bucketPosts))
		if err != nil {
			return fmt.Errorf("failed to create posts bucket: %w", err)
		}

		for _, state := range DefaultStates() {
			if _, err := root.CreateBucketIfNotExists([]byte(state)); err != nil {
				return fmt.Errorf("failed to create state bucket %s: %w", state, err)
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return err
	}

	bs.db = db
	return nil
}

// Close closes the underlying database.
func (bs *BoltStore) Close() error {
	if bs.db == nil {
		return nil
	}
	return bs.db.Close()
}

// Create assigns a new unique id and persists the post.
func (bs *BoltStore) Create(ctx context.Context, state, subject, content string) (*Post, error) {
	if err := ValidatePostInput(subject, content); err != nil {
		return nil, err
	}

	post := NewPost(state, subject, content)
	post.Created = bs.now()

	err := bs.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(bucketPosts))
		if root == nil {
			return fmt.Errorf("posts bucket not found")
		}

		// The sequence lives on the parent bucket, so ids are unique
		// across all states.
		id, err := root.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to advance id sequence: %w", err)
		}
		post.ID = int64(id)

		b := root.Bucket([]byte(state))
		if b == nil {
			return fmt.Errorf("state bucket %s not found", state)
		}

		data, err := post.Serialize()
		if err != nil {
			return fmt.Errorf("failed to serialize post: %w", err)
		}

		return b.Put(itob(post.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	return post, nil
}

// GetByID retrieves a post within the state partition, deleted or not.
func (bs *BoltStore) GetByID(ctx context.Context, state string, id int64) (*Post, error) {
	var post *Post
	err := bs.db.View(func(tx *bbolt.Tx) error {
		b, err := bs.stateBucket(tx, state)
		if err != nil {
			return err
		}

		data := b.Get(itob(id))
		if data == nil {
			return ErrPostNotFound
		}

		post, err = DeserializePost(data)
		if err != nil {
			return fmt.Errorf("error deserializing post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListByState returns the state's posts, created descending.
func (bs *BoltStore) ListByState(ctx context.Context, state string, includeDeleted bool) ([]*Post, error) {
	var posts []*Post
	err := bs.db.View(func(tx *bbolt.Tx) error {
		b, err := bs.stateBucket(tx, state)
		if err != nil {
			return err
		}

		return b.ForEach(func(_, data []byte) error {
			post, err := DeserializePost(data)
			if err != nil {
				return fmt.Errorf("error deserializing post: %w", err)
			}
			if post.Deleted && !includeDeleted {
				return nil
			}
			posts = append(posts, post)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error listing posts for %s: %w", state, err)
	}

	sortByCreatedDesc(posts)
	return posts, nil
}

// ListRecent returns the most recent posts across all states.
func (bs *BoltStore) ListRecent(ctx context.Context, limit int, includeDeleted bool) ([]*Post, error) {
	var posts []*Post
	err := bs.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(bucketPosts))
		if root == nil {
			return fmt.Errorf("posts bucket not found")
		}

		return root.ForEachBucket(func(name []byte) error {
			return root.Bucket(name).ForEach(func(_, data []byte) error {
				post, err := DeserializePost(data)
				if err != nil {
					return fmt.Errorf("error deserializing post: %w", err)
				}
				if post.Deleted && !includeDeleted {
					return nil
				}
				posts = append(posts, post)
				return nil
			})
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error listing recent posts: %w", err)
	}

	sortByCreatedDesc(posts)
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// Update applies a partial update inside a single write transaction, so two
// concurrent edits to the same record cannot interleave field by field.
func (bs *BoltStore) Update(ctx context.Context, state string, id int64, fields PostFields) (*Post, error) {
	var post *Post
	err := bs.db.Update(func(tx *bbolt.Tx) error {
		b, err := bs.stateBucket(tx, state)
		if err != nil {
			return err
		}

		data := b.Get(itob(id))
		if data == nil {
			return ErrPostNotFound
		}

		post, err = DeserializePost(data)
		if err != nil {
			return fmt.Errorf("error deserializing post: %w", err)
		}

		fields.Apply(post)

		updated, err := post.Serialize()
		if err != nil {
			return fmt.Errorf("failed to serialize post: %w", err)
		}
		return b.Put(itob(id), updated)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// SoftDelete flips the deleted flag; the record stays in place.
func (bs *BoltStore) SoftDelete(ctx context.Context, state string, id int64) error {
	return bs.db.Update(func(tx *bbolt.Tx) error {
		b, err := bs.stateBucket(tx, state)
		if err != nil {
			return err
		}

		data := b.Get(itob(id))
		if data == nil {
			return ErrPostNotFound
		}

		post, err := DeserializePost(data)
		if err != nil {
			return fmt.Errorf("error deserializing post: %w", err)
		}

		post.Deleted = true
		updated, err := post.Serialize()
		if err != nil {
			return fmt.Errorf("failed to serialize post: %w", err)
		}
		return b.Put(itob(id), updated)
	})
}

// Scan walks all posts in (state, id) order, deleted included. The cursor is
// the "state/id" of the last post already seen.
func (bs *BoltStore) Scan(ctx context.Context, cursor string, limit int) ([]*Post, string, error) {
	afterState, afterID, err := parseScanCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	var posts []*Post
	next := ""
	err = bs.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(bucketPosts))
		if root == nil {
			return fmt.Errorf("posts bucket not found")
		}

		states := make([]string, 0)
		if err := root.ForEachBucket(func(name []byte) error {
			states = append(states, string(name))
			return nil
		}); err != nil {
			return err
		}
		sort.Strings(states)

		for _, state := range states {
			if state < afterState {
				continue
			}

			c := root.Bucket([]byte(state)).Cursor()
			for k, data := c.First(); k != nil; k, data = c.Next() {
				id := btoi(k)
				if state == afterState && id <= afterID {
					continue
				}

				if len(posts) == limit {
					// More to do; the caller resumes from the last
					// returned post.
					next = scanCursor(posts[len(posts)-1])
					return nil
				}

				post, err := DeserializePost(data)
				if err != nil {
					return fmt.Errorf("error deserializing post: %w", err)
				}
				posts = append(posts, post)
			}
		}

		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("error scanning posts: %w", err)
	}

	if next == "" && len(posts) == limit {
		next = scanCursor(posts[len(posts)-1])
	}
	return posts, next, nil
}

// Rewrite persists a post back under its existing key.
func (bs *BoltStore) Rewrite(ctx context.Context, post *Post) error {
	return bs.db.Update(func(tx *bbolt.Tx) error {
		b, err := bs.stateBucket(tx, post.State)
		if err != nil {
			return err
		}

		if b.Get(itob(post.ID)) == nil {
			return ErrPostNotFound
		}

		data, err := post.Serialize()
		if err != nil {
			return fmt.Errorf("failed to serialize post: %w", err)
		}
		return b.Put(itob(post.ID), data)
	})
}

func (bs *BoltStore) stateBucket(tx *bbolt.Tx, state string) (*bbolt.Bucket, error) {
	root := tx.Bucket([]byte(bucketPosts))
	if root == nil {
		return nil, fmt.Errorf("posts bucket not found")
	}

	b := root.Bucket([]byte(state))
	if b == nil {
		return nil, ErrUnknownState
	}
	return b, nil
}

// sortByCreatedDesc orders posts newest first. Ties break on ascending id so
// both store backends return the same order for identical timestamps.
func sortByCreatedDesc(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Created.Equal(posts[j].Created) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].Created.After(posts[j].Created)
	})
}

func scanCursor(post *Post) string {
	return fmt.Sprintf("%s/%d", post.State, post.ID)
}

func parseScanCursor(cursor string) (state string, id int64, err error) {
	if cursor == "" {
		return "", 0, nil
	}

	state, idPart, ok := strings.Cut(cursor, "/")
	if !ok {
		return "", 0, fmt.Errorf("malformed scan cursor: %q", cursor)
	}

	id, err = strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed scan cursor: %q", cursor)
	}
	return state, id, nil
}

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
