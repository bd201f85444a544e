package trailblog

import (
	"context"
	"fmt"
	"log/slog"
)

// CreatePost creates a new post under the state and returns it with its
// assigned id, which callers need right away to build the permalink
// redirect. After the store commit it force-refreshes the state listing and
// the front page, then indexes the post for search.
func (b *Blog) CreatePost(ctx context.Context, state, subject, content string) (*Post, error) {
	if !State(state).Valid() {
		return nil, ErrUnknownState
	}

	post, err := b.store.Create(ctx, state, subject, content)
	if err != nil {
		return nil, err
	}

	b.refreshState(ctx, state)
	b.indexPost(post)
	return post, nil
}

// EditPost updates the subject and content of an existing post. State, id,
// and the created timestamp never change.
func (b *Blog) EditPost(ctx context.Context, state string, id int64, subject, content string) (*Post, error) {
	if err := ValidatePostInput(subject, content); err != nil {
		return nil, err
	}

	post, err := b.store.Update(ctx, state, id, PostFields{
		Subject: &subject,
		Content: &content,
	})
	if err != nil {
		return nil, err
	}

	b.refreshPost(ctx, state, id)
	b.indexPost(post)
	return post, nil
}

// TranslatePost fills in the translated subject and content of an existing
// post. Translations are always optional; either field may be empty.
func (b *Blog) TranslatePost(ctx context.Context, state string, id int64, subject, content string) (*Post, error) {
	post, err := b.store.Update(ctx, state, id, PostFields{
		SubjectTranslation: &subject,
		ContentTranslation: &content,
	})
	if err != nil {
		return nil, err
	}

	b.refreshPost(ctx, state, id)
	b.indexPost(post)
	return post, nil
}

// DeletePost soft-deletes a post. The record stays fetchable by id but
// drops out of every listing, so all three keys are recomputed.
func (b *Blog) DeletePost(ctx context.Context, state string, id int64) error {
	if err := b.store.SoftDelete(ctx, state, id); err != nil {
		return err
	}

	b.refreshPost(ctx, state, id)
	b.deindexPost(state, id)
	return nil
}

// AllPosts returns every post, deleted included, for the admin management
// view. It reads the store directly; the management view wants the truth,
// not the cache.
func (b *Blog) AllPosts(ctx context.Context) ([]*Post, error) {
	var all []*Post
	cursor := ""
	for {
		posts, next, err := b.store.Scan(ctx, cursor, 200)
		if err != nil {
			return nil, fmt.Errorf("error listing all posts: %w", err)
		}
		all = append(all, posts...)
		if next == "" {
			break
		}
		cursor = next
	}

	sortByCreatedDesc(all)
	return all, nil
}

func (b *Blog) indexPost(post *Post) {
	if b.search == nil {
		return
	}
	if err := b.search.Index(post); err != nil {
		b.logger.Error("failed to index post",
			slog.String("state", post.State), slog.Int64("id", post.ID),
			slog.String("error", err.Error()))
	}
}

func (b *Blog) deindexPost(state string, id int64) {
	if b.search == nil {
		return
	}
	if err := b.search.Delete(state, id); err != nil {
		b.logger.Error("failed to deindex post",
			slog.String("state", state), slog.Int64("id", id),
			slog.String("error", err.Error()))
	}
}
