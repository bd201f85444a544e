package trailblog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergopher/trailblog"
)

func TestNewPost(t *testing.T) {
	post := trailblog.NewPost("VT", "Camel's Hump Detour", "Side trip off the trail.")

	assert.Equal(t, "VT", post.State)
	assert.Equal(t, "camels-hump-detour", post.Slug)
	assert.Equal(t, "Camel's Hump Detour", post.Subject)
	assert.Zero(t, post.ID)
	assert.False(t, post.Deleted)
}

func TestValidatePostInput(t *testing.T) {
	assert.NoError(t, trailblog.ValidatePostInput("subject", "content"))
	assert.ErrorIs(t, trailblog.ValidatePostInput("", "content"), trailblog.ErrInvalidPostInput)
	assert.ErrorIs(t, trailblog.ValidatePostInput("subject", ""), trailblog.ErrInvalidPostInput)
	assert.ErrorIs(t, trailblog.ValidatePostInput("   ", "\n\t"), trailblog.ErrInvalidPostInput)
}

func TestPostFields_Apply(t *testing.T) {
	post := trailblog.NewPost("NH", "Old subject", "old content")

	subject := "New Subject"
	trailblog.PostFields{Subject: &subject}.Apply(post)

	assert.Equal(t, "New Subject", post.Subject)
	assert.Equal(t, "new-subject", post.Slug)
	assert.Equal(t, "old content", post.Content)

	translation := "Nouveau sujet"
	trailblog.PostFields{SubjectTranslation: &translation}.Apply(post)

	// Translation updates never touch the slug or the original subject.
	assert.Equal(t, "New Subject", post.Subject)
	assert.Equal(t, "new-subject", post.Slug)
	assert.Equal(t, "Nouveau sujet", post.SubjectTranslation)
}

func TestPostFields_Empty(t *testing.T) {
	assert.True(t, trailblog.PostFields{}.Empty())

	s := "x"
	assert.False(t, trailblog.PostFields{Content: &s}.Empty())
}

func TestPost_ContentHTML(t *testing.T) {
	post := &trailblog.Post{Content: "Line one\nLine two\r\nLine three"}
	assert.Equal(t, "Line one<br>Line two<br>Line three", string(post.ContentHTML()))

	// Markup in the body is escaped, not rendered.
	post = &trailblog.Post{Content: "<script>alert(1)</script>"}
	assert.NotContains(t, string(post.ContentHTML()), "<script>")

	post = &trailblog.Post{ContentTranslation: "a\nb"}
	assert.Equal(t, "a<br>b", string(post.ContentTranslationHTML()))
}

func TestPost_CreatedDate(t *testing.T) {
	post := &trailblog.Post{Created: time.Date(2016, time.March, 14, 8, 0, 0, 0, time.UTC)}
	assert.Equal(t, "Mar 14, 2016", post.CreatedDate())

	assert.Empty(t, (&trailblog.Post{}).CreatedDate())
}

func TestSerializePosts_NilBecomesEmptyList(t *testing.T) {
	data, err := trailblog.SerializePosts(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	posts, err := trailblog.DeserializePosts(data)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPost_SerializeRoundTrip(t *testing.T) {
	post := trailblog.NewPost("MA", "Mount Greylock", "Highest point in Massachusetts.")
	post.ID = 7
	post.Created = time.Date(2016, time.June, 1, 12, 30, 0, 0, time.UTC)
	post.Deleted = true

	data, err := post.Serialize()
	require.NoError(t, err)

	got, err := trailblog.DeserializePost(data)
	require.NoError(t, err)
	assert.Equal(t, post, got)
}
