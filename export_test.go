package trailblog

import "time"

// WithNow overrides the store clock so tests can pin created timestamps.
func (bs *BoltStore) WithNow(now func() time.Time) { bs.now = now }

// WithNow overrides the store clock so tests can pin created timestamps.
func (s *SQLiteStore) WithNow(now func() time.Time) { s.now = now }
