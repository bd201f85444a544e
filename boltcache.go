package trailblog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	boltCacheFile   = "trailcache.db"
	bucketCache     = "cache"
	boltCacheOpenTO = 1 * time.Second
)

// BoltCacheStore implements CacheStore on a bbolt file, so cached listings
// survive a process restart. Entries have no expiry; writes replace them.
type BoltCacheStore struct {
	dataDir string
	db      *bbolt.DB
}

// NewBoltCacheStore creates a BoltCacheStore rooted at dataDir.
func NewBoltCacheStore(dataDir string) (*BoltCacheStore, error) {
	db, err := bbolt.Open(filepath.Join(dataDir, boltCacheFile), 0600,
		&bbolt.Options{Timeout: boltCacheOpenTO})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCache))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &BoltCacheStore{dataDir: dataDir, db: db}, nil
}

// Get returns the value for a key, or ErrCacheMiss if absent.
func (c *BoltCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketCache)).Get([]byte(key))
		if data == nil {
			return ErrCacheMiss
		}
		value = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a value for a key. Last write wins.
func (c *BoltCacheStore) Set(ctx context.Context, key string, value []byte) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketCache)).Put([]byte(key), value)
	})
}

// Delete removes a key.
func (c *BoltCacheStore) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketCache)).Delete([]byte(key))
	})
}

// Clear removes all entries.
func (c *BoltCacheStore) Clear(ctx context.Context) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketCache)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketCache))
		return err
	})
}

// Close closes the cache database.
func (c *BoltCacheStore) Close() error {
	return c.db.Close()
}
