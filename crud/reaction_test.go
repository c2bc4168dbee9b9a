package crud

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

func TestReactionCreateMovesCounters(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	bob := createTestUser(t, s, "bob", false)
	post := createTestPost(t, s, alice.ID, "nice weather")

	require.NoError(t, s.Reaction.Create(context.Background(), &domain.Reaction{
		UserID: bob.ID,
		PostID: post.ID,
		Type:   domain.ReactionLike,
	}))

	// The post's counter and the post author's counter move, the
	// reacting user's does not.
	assert.Equal(t, 1, fetchPost(t, s, bob.ID, post.ID).LikesCount)
	assert.Equal(t, 1, fetchUser(t, s, alice.ID).LikesCount)
	assert.Equal(t, 0, fetchUser(t, s, bob.ID).LikesCount)
}

func TestReactionTypesCountSeparately(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	bob := createTestUser(t, s, "bob", false)
	post := createTestPost(t, s, alice.ID, "hot take")

	require.NoError(t, s.Reaction.Create(context.Background(), &domain.Reaction{
		UserID: bob.ID, PostID: post.ID, Type: domain.ReactionLike,
	}))
	require.NoError(t, s.Reaction.Create(context.Background(), &domain.Reaction{
		UserID: bob.ID, PostID: post.ID, Type: domain.ReactionRetweet,
	}))

	got := fetchPost(t, s, bob.ID, post.ID)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 1, got.RetweetsCount)
}

func TestReactionDuplicateConflict(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	bob := createTestUser(t, s, "bob", false)
	post := createTestPost(t, s, alice.ID, "one like only")

	require.NoError(t, s.Reaction.Create(context.Background(), &domain.Reaction{
		UserID: bob.ID, PostID: post.ID, Type: domain.ReactionLike,
	}))
	err := s.Reaction.Create(context.Background(), &domain.Reaction{
		UserID: bob.ID, PostID: post.ID, Type: domain.ReactionLike,
	})
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	// The rejected duplicate must leave every counter untouched.
	assert.Equal(t, 1, fetchPost(t, s, bob.ID, post.ID).LikesCount)
	assert.Equal(t, 1, fetchUser(t, s, alice.ID).LikesCount)
}

func TestReactionDeleteDecrementsCounters(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	bob := createTestUser(t, s, "bob", false)
	post := createTestPost(t, s, alice.ID, "fleeting fame")

	require.NoError(t, s.Reaction.Create(context.Background(), &domain.Reaction{
		UserID: bob.ID, PostID: post.ID, Type: domain.ReactionLike,
	}))
	require.NoError(t, s.Reaction.DeleteForPost(context.Background(), bob.ID, post.ID, domain.ReactionLike))

	assert.Equal(t, 0, fetchPost(t, s, bob.ID, post.ID).LikesCount)
	assert.Equal(t, 0, fetchUser(t, s, alice.ID).LikesCount)

	// Removing a reaction that is already gone fails and must not push
	// any counter below zero.
	err := s.Reaction.DeleteForPost(context.Background(), bob.ID, post.ID, domain.ReactionLike)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	assert.Equal(t, 0, fetchPost(t, s, bob.ID, post.ID).LikesCount)
	assert.Equal(t, 0, fetchUser(t, s, alice.ID).LikesCount)
}

func TestReactionInvalidType(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	post := createTestPost(t, s, alice.ID, "typo bait")

	err := s.Reaction.Create(context.Background(), &domain.Reaction{
		UserID: alice.ID, PostID: post.ID, Type: "UPVOTE",
	})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	err = s.Reaction.DeleteForPost(context.Background(), alice.ID, post.ID, "UPVOTE")
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestReactionOnMissingPost(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)

	err := s.Reaction.Create(context.Background(), &domain.Reaction{
		UserID: alice.ID, PostID: 9999, Type: domain.ReactionLike,
	})
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestReactionOnHiddenPost(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", true)
	bob := createTestUser(t, s, "bob", false)
	post := createTestPost(t, s, alice.ID, "members only")

	err := s.Reaction.Create(context.Background(), &domain.Reaction{
		UserID: bob.ID, PostID: post.ID, Type: domain.ReactionLike,
	})
	require.Error(t, err)
	assert.Equal(t, errs.EFORBIDDEN, errs.ErrorCode(err))
}

func TestReactionConcurrentCounters(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	post := createTestPost(t, s, alice.ID, "gone viral")

	const n = 5
	reactors := make([]*domain.User, n)
	for i := 0; i < n; i++ {
		reactors[i] = createTestUser(t, s, fmt.Sprintf("fan%d", i), false)
	}

	var wg sync.WaitGroup
	errc := make(chan error, n)
	for _, reactor := range reactors {
		reactor := reactor
		wg.Add(1)
		go func() {
			defer wg.Done()
			errc <- s.Reaction.Create(context.Background(), &domain.Reaction{
				UserID: reactor.ID, PostID: post.ID, Type: domain.ReactionLike,
			})
		}()
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		require.NoError(t, err)
	}

	assert.Equal(t, n, fetchPost(t, s, alice.ID, post.ID).LikesCount)
	assert.Equal(t, n, fetchUser(t, s, alice.ID).LikesCount)

	for _, reactor := range reactors {
		require.NoError(t, s.Reaction.DeleteForPost(context.Background(), reactor.ID, post.ID, domain.ReactionLike))
	}
	assert.Equal(t, 0, fetchPost(t, s, alice.ID, post.ID).LikesCount)
	assert.Equal(t, 0, fetchUser(t, s, alice.ID).LikesCount)
}

// Two deletes of the same reaction can both pass the validator's
// existence check before either commits. The loser must come back as
// not-found and leave the counters alone instead of decrementing twice.
func TestReactionDeleteDecrementsOnlyOnce(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	bob := createTestUser(t, s, "bob", false)
	post := createTestPost(t, s, alice.ID, "double tap")

	reaction := &domain.Reaction{UserID: bob.ID, PostID: post.ID, Type: domain.ReactionLike}
	require.NoError(t, s.Reaction.Create(context.Background(), reaction))

	// Both callers fetched the row while it was still active.
	rg := s.Reaction.reactionGorm
	first, err := rg.ByID(context.Background(), reaction.ID)
	require.NoError(t, err)
	second := *first

	require.NoError(t, rg.delete(context.Background(), first))
	err = rg.delete(context.Background(), &second)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	assert.Equal(t, 0, fetchPost(t, s, bob.ID, post.ID).LikesCount)
	assert.Equal(t, 0, fetchUser(t, s, alice.ID).LikesCount)
}

// The id-addressed methods serve callers that already hold the id of
// their own reaction, so Delete(id) carries no ownership check of its
// own. The handlers only expose the user-scoped DeleteForPost form.
func TestReactionByIDAndDelete(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	bob := createTestUser(t, s, "bob", false)
	post := createTestPost(t, s, alice.ID, "addressable")

	reaction := &domain.Reaction{UserID: bob.ID, PostID: post.ID, Type: domain.ReactionLike}
	require.NoError(t, s.Reaction.Create(context.Background(), reaction))
	require.NotZero(t, reaction.ID)

	got, err := s.Reaction.ByID(context.Background(), reaction.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.UserID)
	assert.Equal(t, post.ID, got.PostID)
	assert.Equal(t, domain.ReactionLike, got.Type)

	require.NoError(t, s.Reaction.Delete(context.Background(), reaction.ID))
	assert.Equal(t, 0, fetchPost(t, s, bob.ID, post.ID).LikesCount)
	assert.Equal(t, 0, fetchUser(t, s, alice.ID).LikesCount)

	err = s.Reaction.Delete(context.Background(), reaction.ID)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	_, err = s.Reaction.ByID(context.Background(), 9999)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestReactionRedoCycle(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	bob := createTestUser(t, s, "bob", false)
	post := createTestPost(t, s, alice.ID, "like, unlike, like")

	// A full remove-and-redo cycle lands the counters exactly where a
	// single reaction would.
	for i := 0; i < 2; i++ {
		require.NoError(t, s.Reaction.Create(context.Background(), &domain.Reaction{
			UserID: bob.ID, PostID: post.ID, Type: domain.ReactionLike,
		}))
		if i == 0 {
			require.NoError(t, s.Reaction.DeleteForPost(context.Background(), bob.ID, post.ID, domain.ReactionLike))
		}
	}
	assert.Equal(t, 1, fetchPost(t, s, bob.ID, post.ID).LikesCount)
	assert.Equal(t, 1, fetchUser(t, s, alice.ID).LikesCount)
}
