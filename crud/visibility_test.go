package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtfSocial/domain"
)

func TestCanViewContentSelf(t *testing.T) {
	s := testServices(t)
	user := createTestUser(t, s, "alice", true)

	ok, err := s.Visibility.CanViewContent(context.Background(), user.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, ok, "a user always sees their own content")
}

func TestCanViewContentPublicSubject(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	bob := createTestUser(t, s, "bob", true)

	// Alice is public, so even the very private Bob sees her content
	// without following her.
	ok, err := s.Visibility.CanViewContent(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanViewContentPrivateRequiresFollow(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", true)
	bob := createTestUser(t, s, "bob", false)

	ok, err := s.Visibility.CanViewContent(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok, "private content hidden from strangers")

	createTestFollow(t, s, bob.ID, alice.ID)
	ok, err = s.Visibility.CanViewContent(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok, "an active follow opens private content")

	// The check is one-directional; Alice following back is not needed
	// and her not following Bob changes nothing for Bob's view.
	ok, err = s.Visibility.CanViewContent(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok, "bob is public to everyone, including alice")

	require.NoError(t, s.Follow.Delete(context.Background(), &domain.Follow{
		FollowerID: bob.ID,
		FollowedID: alice.ID,
	}))
	ok, err = s.Visibility.CanViewContent(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok, "unfollowing closes private content again")
}

func TestCanViewContentMissingUsers(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)

	ok, err := s.Visibility.CanViewContent(context.Background(), alice.ID, 9999)
	require.NoError(t, err)
	assert.False(t, ok, "a missing subject is not visible, not an error")

	ok, err = s.Visibility.CanViewContent(context.Background(), 9999, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok, "a missing viewer sees nothing")
}

func TestCanChatNeverWithSelf(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)

	ok, err := s.Visibility.CanChat(context.Background(), alice.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanChatBothPublic(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", false)
	bob := createTestUser(t, s, "bob", false)

	ok, err := s.Visibility.CanChat(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok, "two public accounts can always chat")
}

func TestCanChatPrivateRequiresMutualFollow(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", true)
	bob := createTestUser(t, s, "bob", false)

	ok, err := s.Visibility.CanChat(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok, "one private account and no follows blocks chat")

	// One direction is not enough even though Bob can already see
	// Alice's content at this point.
	createTestFollow(t, s, bob.ID, alice.ID)
	ok, err = s.Visibility.CanChat(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	createTestFollow(t, s, alice.ID, bob.ID)
	ok, err = s.Visibility.CanChat(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok, "a mutual follow opens chat")
}

func TestCanChatIsSymmetric(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", true)
	bob := createTestUser(t, s, "bob", false)
	carol := createTestUser(t, s, "carol", false)

	createTestFollow(t, s, bob.ID, alice.ID)
	createTestFollow(t, s, alice.ID, bob.ID)

	pairs := [][2]int{
		{alice.ID, bob.ID},
		{alice.ID, carol.ID},
		{bob.ID, carol.ID},
	}
	for _, pair := range pairs {
		ab, err := s.Visibility.CanChat(context.Background(), pair[0], pair[1])
		require.NoError(t, err)
		ba, err := s.Visibility.CanChat(context.Background(), pair[1], pair[0])
		require.NoError(t, err)
		assert.Equal(t, ab, ba, "chat eligibility must not depend on argument order")
	}
}

// A private user's content opens to followers one-directionally while
// chat stays closed until the follow-back exists.
func TestContentAndChatPredicatesDiverge(t *testing.T) {
	s := testServices(t)
	alice := createTestUser(t, s, "alice", true)
	bob := createTestUser(t, s, "bob", false)

	createTestFollow(t, s, bob.ID, alice.ID)

	content, err := s.Visibility.CanViewContent(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	chat, err := s.Visibility.CanChat(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)

	assert.True(t, content)
	assert.False(t, chat)
}
