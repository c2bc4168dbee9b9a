package crud

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"wtfSocial/domain"
)

// testServices spins up the full service container against an in-memory
// sqlite database. The pool is capped at one connection so the database
// doesn't vanish between pooled connections.
func testServices(t *testing.T) *Services {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Follow{},
		&domain.Post{},
		&domain.Reaction{},
		&domain.Message{},
	))

	services, err := NewServices(db,
		WithFollow(),
		WithVisibility(),
		WithUser("test-pepper"),
		WithPost(),
		WithReaction(),
		WithMessage(),
	)
	require.NoError(t, err)
	return services
}

func createTestUser(t *testing.T, s *Services, username string, private bool) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	require.NoError(t, s.User.Create(context.Background(), user))
	if private {
		require.NoError(t, s.User.UpdatePrivacy(context.Background(), user.ID, true))
	}
	return user
}

func createTestFollow(t *testing.T, s *Services, followerID, followedID int) {
	t.Helper()
	require.NoError(t, s.Follow.Create(context.Background(), &domain.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
	}))
}

func createTestPost(t *testing.T, s *Services, userID int, content string) *domain.Post {
	t.Helper()
	post := &domain.Post{UserID: userID, Content: content}
	require.NoError(t, s.Post.CreatePost(context.Background(), post))
	return post
}

// seedPosts inserts n posts for the user with strictly descending explicit
// timestamps, one minute apart, newest first. Explicit timestamps keep
// the pagination tests deterministic.
func seedPosts(t *testing.T, s *Services, userID, n int) []domain.Post {
	t.Helper()
	base := time.Now().UTC().Truncate(time.Second)
	posts := make([]domain.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = domain.Post{
			UserID:    userID,
			Content:   fmt.Sprintf("post %d", i),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.db.Create(&posts[i]).Error)
	}
	return posts
}

func fetchUser(t *testing.T, s *Services, id int) *domain.User {
	t.Helper()
	user, err := s.User.ByID(context.Background(), id)
	require.NoError(t, err)
	return user
}

func fetchPost(t *testing.T, s *Services, viewerID, id int) *domain.Post {
	t.Helper()
	post, err := s.Post.ByID(context.Background(), viewerID, id)
	require.NoError(t, err)
	return post
}
