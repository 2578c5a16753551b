package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

func TestNextVoteState(t *testing.T) {
	tests := []struct {
		prior     int
		dir       models.Direction
		wantNext  int
		wantDelta int
	}{
		{0, models.Upvote, 1, 1},
		{0, models.Downvote, -1, -1},
		{1, models.Upvote, 0, -1},
		{-1, models.Downvote, 0, 1},
		{1, models.Downvote, -1, -2},
		{-1, models.Upvote, 1, 2},
	}
	for _, tt := range tests {
		next, delta := NextVoteState(tt.prior, tt.dir)
		assert.Equal(t, tt.wantNext, next, "prior %d dir %s", tt.prior, tt.dir)
		assert.Equal(t, tt.wantDelta, delta, "prior %d dir %s", tt.prior, tt.dir)
	}
}

func (f *fixture) postVotes(t *testing.T, id int) int {
	t.Helper()
	var p models.Post
	require.NoError(t, f.db.Select("votes").Take(&p, id).Error)
	return p.Votes
}

func (f *fixture) commentVotes(t *testing.T, id int) int {
	t.Helper()
	var c models.Comment
	require.NoError(t, f.db.Select("votes").Take(&c, id).Error)
	return c.Votes
}

// ledgerSum is the sum of vote rows for a target.
func (f *fixture) ledgerSum(t *testing.T, kind models.TargetKind, id int) int {
	t.Helper()
	var sum int
	require.NoError(t, f.db.Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("target_kind = ? AND target_id = ?", kind, id).
		Scan(&sum).Error)
	return sum
}

func TestVote_Sequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	post := f.post(t, alice.ID, "topic")

	steps := []struct {
		dir       models.Direction
		wantState int
		wantVotes int
	}{
		{models.Upvote, 1, 1},
		{models.Downvote, -1, -1},
		{models.Downvote, 0, 0},
		{models.Downvote, -1, -1},
		{models.Upvote, 1, 1},
		{models.Upvote, 0, 0},
	}
	for i, s := range steps {
		state, err := f.ledger.Vote(ctx, models.TargetPost, post.ID, alice.ID, s.dir)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, s.wantState, state, "step %d state", i)
		assert.Equal(t, s.wantVotes, f.postVotes(t, post.ID), "step %d aggregate", i)
		assert.Equal(t, s.wantVotes, f.ledgerSum(t, models.TargetPost, post.ID), "step %d ledger", i)
	}
	assert.Zero(t, f.count(t, &models.Vote{}), "retracted votes leave no rows")
}

func TestVote_MultipleVoters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")
	post := f.post(t, alice.ID, "topic")
	c := f.comment(t, alice.ID, post.ID, "reply")

	for _, v := range []struct {
		user *models.User
		dir  models.Direction
	}{{alice, models.Upvote}, {bob, models.Upvote}, {carol, models.Downvote}} {
		_, err := f.ledger.Vote(ctx, models.TargetPost, post.ID, v.user.ID, v.dir)
		require.NoError(t, err)
		_, err = f.ledger.Vote(ctx, models.TargetComment, c.ID, v.user.ID, v.dir)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, f.postVotes(t, post.ID))
	assert.Equal(t, 1, f.commentVotes(t, c.ID))
	assert.Equal(t, 1, f.ledgerSum(t, models.TargetComment, c.ID))

	// Post and comment ledgers are independent even when ids collide.
	assert.Equal(t, 1, f.ledgerSum(t, models.TargetPost, post.ID))
}

func TestVote_MissingTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.ledger.Vote(ctx, models.TargetPost, 77, alice.ID, models.Upvote)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "Post 77 not found", err.Error())

	_, err = f.ledger.Vote(ctx, models.TargetComment, 77, alice.ID, models.Downvote)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "Comment 77 not found", err.Error())

	assert.Zero(t, f.count(t, &models.Vote{}))
}

func TestVote_BadInput(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	post := f.post(t, alice.ID, "topic")

	_, err := f.ledger.Vote(context.Background(), models.TargetPost, post.ID, alice.ID, models.Direction(0))
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = f.ledger.Vote(context.Background(), models.TargetKind("user"), post.ID, alice.ID, models.Upvote)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Zero(t, f.postVotes(t, post.ID))
}

func TestVote_ConcurrentVoters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.register(t, "author")
	post := f.post(t, author.ID, "popular")

	const voters = 12
	users := make([]*models.User, voters)
	for i := range users {
		users[i] = f.register(t, "voter"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for _, u := range users {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, err := f.ledger.Vote(ctx, models.TargetPost, post.ID, userID, models.Upvote)
			errs <- err
		}(u.ID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, voters, f.postVotes(t, post.ID))
	assert.Equal(t, voters, f.ledgerSum(t, models.TargetPost, post.ID))
}
