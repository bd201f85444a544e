package trailblog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergopher/trailblog"
)

func newSearchBlog(t *testing.T) *trailblog.Blog {
	t.Helper()

	store := trailblog.NewBoltStore(t.TempDir())
	require.NoError(t, store.Init())
	store.WithNow(testClock())

	search, err := trailblog.OpenSearchIndex(t.TempDir())
	require.NoError(t, err)

	blog, err := trailblog.NewBlog(trailblog.Options{
		Store:  store,
		Search: search,
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = blog.Close() })

	return blog
}

func TestBlog_SearchPosts(t *testing.T) {
	ctx := context.Background()
	blog := newSearchBlog(t)

	katahdin, err := blog.CreatePost(ctx, "ME", "Katahdin summit", "Finished the whole trail today.")
	require.NoError(t, err)
	_, err = blog.CreatePost(ctx, "GA", "Springer start", "First day heading north.")
	require.NoError(t, err)

	posts, err := blog.SearchPosts(ctx, "katahdin", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, katahdin.ID, posts[0].ID)
	assert.Equal(t, "ME", posts[0].State)
}

func TestBlog_SearchFindsEditedContent(t *testing.T) {
	ctx := context.Background()
	blog := newSearchBlog(t)

	post, err := blog.CreatePost(ctx, "VA", "Triple crown", "Dragons Tooth today.")
	require.NoError(t, err)

	_, err = blog.EditPost(ctx, "VA", post.ID, "Triple crown", "McAfee Knob at sunrise.")
	require.NoError(t, err)

	posts, err := blog.SearchPosts(ctx, "mcafee", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)

	// The replaced body no longer matches.
	posts, err = blog.SearchPosts(ctx, "dragons", 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestBlog_SearchExcludesDeleted(t *testing.T) {
	ctx := context.Background()
	blog := newSearchBlog(t)

	post, err := blog.CreatePost(ctx, "NJ", "Sunfish Pond", "Glacial lake on the ridge.")
	require.NoError(t, err)
	require.NoError(t, blog.DeletePost(ctx, "NJ", post.ID))

	posts, err := blog.SearchPosts(ctx, "sunfish", 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestBlog_SearchMatchesTranslation(t *testing.T) {
	ctx := context.Background()
	blog := newSearchBlog(t)

	post, err := blog.CreatePost(ctx, "CT", "River crossing", "Waded the Housatonic.")
	require.NoError(t, err)
	_, err = blog.TranslatePost(ctx, "CT", post.ID, "Flussquerung", "Durch den Housatonic gewatet.")
	require.NoError(t, err)

	posts, err := blog.SearchPosts(ctx, "flussquerung", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
}

func TestBlog_ReindexAll(t *testing.T) {
	ctx := context.Background()

	store := trailblog.NewBoltStore(t.TempDir())
	require.NoError(t, store.Init())
	store.WithNow(testClock())

	// Seed the store without any index attached.
	seed, err := trailblog.NewBlog(trailblog.Options{Store: store, Logger: quietLogger()})
	require.NoError(t, err)
	_, err = seed.CreatePost(ctx, "WV", "Harpers Ferry", "Psychological halfway point.")
	require.NoError(t, err)
	deleted, err := seed.CreatePost(ctx, "WV", "Wrong turn", "Backtracked two miles.")
	require.NoError(t, err)
	require.NoError(t, seed.DeletePost(ctx, "WV", deleted.ID))

	search, err := trailblog.OpenSearchIndex(t.TempDir())
	require.NoError(t, err)

	blog, err := trailblog.NewBlog(trailblog.Options{
		Store:  store,
		Search: search,
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = blog.Close() })

	count, err := blog.ReindexAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	posts, err := blog.SearchPosts(ctx, "harpers", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	posts, err = blog.SearchPosts(ctx, "backtracked", 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestBlog_SearchNotConfigured(t *testing.T) {
	ctx := context.Background()
	blog, _, _ := newTestBlog(t)

	_, err := blog.SearchPosts(ctx, "anything", 10)
	assert.Error(t, err)
}
