package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visiobyte/inkwell/internal/model"
	"github.com/visiobyte/inkwell/internal/repository"
)

func createPost(t *testing.T, env *testEnv, authorID, title string) *model.Post {
	t.Helper()

	post, err := env.post.Create(authorID, title, "Some *markdown* content.", "")
	require.NoError(t, err)
	return post
}

func TestToggleLikeParity(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerVerified(t, "author", "author@example.com", "secret-pass-1")
	reader := env.registerVerified(t, "reader", "reader@example.com", "secret-pass-2")
	post := createPost(t, env, author.ID, "Hello")

	liked, err := env.engagement.ToggleLike(post.ID, reader.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, env.countRows(t, "likes", "post_id = $1", post.ID))

	liked, err = env.engagement.ToggleLike(post.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, env.countRows(t, "likes", "post_id = $1", post.ID))

	// Odd number of toggles lands on exactly one row
	for i := 0; i < 3; i++ {
		_, err = env.engagement.ToggleLike(post.ID, reader.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, env.countRows(t, "likes", "post_id = $1", post.ID))
}

func TestLikeUnknownPost(t *testing.T) {
	env := newTestEnv(t)
	reader := env.registerVerified(t, "reader", "reader@example.com", "secret-pass-2")

	_, err := env.engagement.ToggleLike("no-such-post", reader.ID)
	assert.ErrorIs(t, err, repository.ErrPostNotFound)
}

func TestConcurrentLikesNeverDuplicate(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerVerified(t, "author", "author@example.com", "secret-pass-1")
	reader := env.registerVerified(t, "reader", "reader@example.com", "secret-pass-2")
	post := createPost(t, env, author.ID, "Hello")

	const workers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.engagement.ToggleLike(post.ID, reader.ID)
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	// Whatever the interleaving, the unique pair constraint holds
	assert.LessOrEqual(t, env.countRows(t, "likes", "post_id = $1 AND user_id = $2", post.ID, reader.ID), 1)
}

func TestLikesFromDifferentUsersAccumulate(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerVerified(t, "author", "author@example.com", "secret-pass-1")
	post := createPost(t, env, author.ID, "Hello")

	for i, email := range []string{"r1@example.com", "r2@example.com", "r3@example.com"} {
		reader := env.registerVerified(t, email[:2], email, "secret-pass-3")
		liked, err := env.engagement.ToggleLike(post.ID, reader.ID)
		require.NoError(t, err)
		assert.True(t, liked, "reader %d", i)
	}

	loaded, err := env.post.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Likes)
}

func TestAddComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerVerified(t, "author", "author@example.com", "secret-pass-1")
	reader := env.registerVerified(t, "reader", "reader@example.com", "secret-pass-2")
	post := createPost(t, env, author.ID, "Hello")

	comment, err := env.engagement.AddComment(post.ID, reader.ID, "  nice post  ")
	require.NoError(t, err)
	assert.Equal(t, "nice post", comment.Content)

	comments, err := env.engagement.Comments(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, reader.ID, comments[0].UserID)
}

func TestEmptyCommentRejected(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerVerified(t, "author", "author@example.com", "secret-pass-1")
	post := createPost(t, env, author.ID, "Hello")

	_, err := env.engagement.AddComment(post.ID, author.ID, "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyComment)
	assert.Equal(t, 0, env.countRows(t, "comments", "post_id = $1", post.ID))
}

func TestCommentsOrderedOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerVerified(t, "author", "author@example.com", "secret-pass-1")
	post := createPost(t, env, author.ID, "Hello")

	for _, text := range []string{"first", "second", "third"} {
		_, err := env.engagement.AddComment(post.ID, author.ID, text)
		require.NoError(t, err)
	}

	comments, err := env.engagement.Comments(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "third", comments[2].Content)
}

func TestProfileSummaryAggregates(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerVerified(t, "author", "author@example.com", "secret-pass-1")
	reader := env.registerVerified(t, "reader", "reader@example.com", "secret-pass-2")
	other := env.registerVerified(t, "other", "other@example.com", "secret-pass-3")

	first := createPost(t, env, author.ID, "First post")
	second := createPost(t, env, author.ID, "Second post")

	_, err := env.engagement.ToggleLike(first.ID, reader.ID)
	require.NoError(t, err)
	_, err = env.engagement.ToggleLike(first.ID, other.ID)
	require.NoError(t, err)
	_, err = env.engagement.ToggleLike(second.ID, reader.ID)
	require.NoError(t, err)

	_, err = env.engagement.AddComment(second.ID, reader.ID, "great")
	require.NoError(t, err)

	summary, err := env.engagement.Summary(author.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Posts, 2)
	assert.Equal(t, 3, summary.TotalLikes)
	assert.Equal(t, 1, summary.TotalComments)
}

func TestProfileSummaryReflectsDeletedPost(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerVerified(t, "author", "author@example.com", "secret-pass-1")
	reader := env.registerVerified(t, "reader", "reader@example.com", "secret-pass-2")

	kept := createPost(t, env, author.ID, "Kept")
	doomed := createPost(t, env, author.ID, "Doomed")

	_, err := env.engagement.ToggleLike(kept.ID, reader.ID)
	require.NoError(t, err)
	_, err = env.engagement.ToggleLike(doomed.ID, reader.ID)
	require.NoError(t, err)

	require.NoError(t, env.post.Delete(doomed.ID, author.ID, false))

	summary, err := env.engagement.Summary(author.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Posts, 1)
	assert.Equal(t, 1, summary.TotalLikes, "likes on deleted posts must not linger in totals")
}
