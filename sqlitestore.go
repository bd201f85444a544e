package trailblog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements PostStore on top of a SQLite database. It is the
// alternative to BoltStore for deployments that prefer SQL tooling.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a SQLiteStore at the given database path. Call Init
// before use.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Init creates the posts table and indexes if they do not exist.
func (s *SQLiteStore) Init() error {
	query := `
		CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			state TEXT NOT NULL,
			slug TEXT NOT NULL,
			subject TEXT NOT NULL,
			content TEXT NOT NULL,
			subject_translation TEXT NOT NULL DEFAULT '',
			content_translation TEXT NOT NULL DEFAULT '',
			created DATETIME NOT NULL,
			deleted BOOL NOT NULL DEFAULT FALSE
		);

		-- Listing queries are always partitioned by state and ordered by recency
		CREATE INDEX IF NOT EXISTS posts_state_created_idx ON posts(state, created);
		CREATE INDEX IF NOT EXISTS posts_created_idx ON posts(created);
		CREATE INDEX IF NOT EXISTS posts_deleted_idx ON posts(deleted);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create assigns a new unique id and persists the post.
func (s *SQLiteStore) Create(ctx context.Context, state, subject, content string) (*Post, error) {
	if err := ValidatePostInput(subject, content); err != nil {
		return nil, err
	}

	post := NewPost(state, subject, content)
	post.Created = s.now()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (state, slug, subject, content, created, deleted)
		VALUES (?, ?, ?, ?, ?, FALSE)`,
		post.State, post.Slug, post.Subject, post.Content, post.Created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading new post id: %w", err)
	}

	post.ID = id
	return post, nil
}

// GetByID retrieves a post within the state partition, deleted or not.
func (s *SQLiteStore) GetByID(ctx context.Context, state string, id int64) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, state, slug, subject, content, subject_translation, content_translation, created, deleted
		FROM posts WHERE state = ? AND id = ?`, state, id)

	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting post %s/%d: %w", state, id, err)
	}
	return post, nil
}

// ListByState returns the state's posts, created descending.
func (s *SQLiteStore) ListByState(ctx context.Context, state string, includeDeleted bool) ([]*Post, error) {
	query := `
		SELECT id, state, slug, subject, content, subject_translation, content_translation, created, deleted
		FROM posts WHERE state = ?`
	if !includeDeleted {
		query += ` AND deleted = FALSE`
	}
	query += ` ORDER BY created DESC, id ASC`

	return s.queryPosts(ctx, query, state)
}

// ListRecent returns the most recent posts across all states.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int, includeDeleted bool) ([]*Post, error) {
	query := `
		SELECT id, state, slug, subject, content, subject_translation, content_translation, created, deleted
		FROM posts`
	if !includeDeleted {
		query += ` WHERE deleted = FALSE`
	}
	query += ` ORDER BY created DESC, id ASC LIMIT ?`

	return s.queryPosts(ctx, query, limit)
}

// Update applies a partial update in a single statement, so concurrent edits
// to the same record never interleave field by field.
func (s *SQLiteStore) Update(ctx context.Context, state string, id int64, fields PostFields) (*Post, error) {
	set := make([]string, 0, 5)
	args := make([]any, 0, 7)

	if fields.Subject != nil {
		set = append(set, "subject = ?", "slug = ?")
		args = append(args, *fields.Subject, slug.Make(*fields.Subject))
	}
	if fields.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *fields.Content)
	}
	if fields.SubjectTranslation != nil {
		set = append(set, "subject_translation = ?")
		args = append(args, *fields.SubjectTranslation)
	}
	if fields.ContentTranslation != nil {
		set = append(set, "content_translation = ?")
		args = append(args, *fields.ContentTranslation)
	}

	if len(set) > 0 {
		args = append(args, state, id)
		result, err := s.db.ExecContext(ctx,
			`UPDATE posts SET `+strings.Join(set, ", ")+` WHERE state = ? AND id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("error updating post %s/%d: %w", state, id, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, ErrPostNotFound
		}
	}

	return s.GetByID(ctx, state, id)
}

// SoftDelete flips the deleted flag; the record stays in place.
func (s *SQLiteStore) SoftDelete(ctx context.Context, state string, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE posts SET deleted = TRUE WHERE state = ? AND id = ?`, state, id)
	if err != nil {
		return fmt.Errorf("error deleting post %s/%d: %w", state, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Scan walks all posts in (state, id) order, deleted included.
func (s *SQLiteStore) Scan(ctx context.Context, cursor string, limit int) ([]*Post, string, error) {
	afterState, afterID, err := parseScanCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	posts, err := s.queryPosts(ctx, `
		SELECT id, state, slug, subject, content, subject_translation, content_translation, created, deleted
		FROM posts
		WHERE state > ? OR (state = ? AND id > ?)
		ORDER BY state ASC, id ASC LIMIT ?`,
		afterState, afterState, afterID, limit)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(posts) == limit {
		next = scanCursor(posts[len(posts)-1])
	}
	return posts, next, nil
}

// Rewrite persists a post back under its existing state and id.
func (s *SQLiteStore) Rewrite(ctx context.Context, post *Post) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE posts
		SET slug = ?, subject = ?, content = ?, subject_translation = ?, content_translation = ?, deleted = ?
		WHERE state = ? AND id = ?`,
		post.Slug, post.Subject, post.Content, post.SubjectTranslation, post.ContentTranslation,
		post.Deleted, post.State, post.ID)
	if err != nil {
		return fmt.Errorf("error rewriting post %s/%d: %w", post.State, post.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *SQLiteStore) queryPosts(ctx context.Context, query string, args ...any) ([]*Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post row: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var post Post
	var created string
	var deleted int64

	err := row.Scan(&post.ID, &post.State, &post.Slug, &post.Subject, &post.Content,
		&post.SubjectTranslation, &post.ContentTranslation, &created, &deleted)
	if err != nil {
		return nil, err
	}

	post.Created, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("malformed created timestamp %q: %w", created, err)
	}
	post.Deleted = deleted != 0

	return &post, nil
}
