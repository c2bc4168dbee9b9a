package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// User represents an account. LikesCount, RetweetsCount and CommentsCount
// are denormalized aggregates kept in sync by the reaction and post
// services; they are never written outside of those mutation paths.
type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username" gorm:"uniqueIndex;notNull"`
	Email          string `json:"email" gorm:"uniqueIndex;notNull"`
	Name           string `json:"name"`
	PasswordHash   string `json:"-"`
	ProfilePicture string `json:"profile_picture,omitempty"`

	// IsPrivate gates all content and chat access, see VisibilityService.
	IsPrivate bool `json:"is_private"`

	LikesCount    int `json:"likes_count"`
	RetweetsCount int `json:"retweets_count"`
	CommentsCount int `json:"comments_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"`

	// Password is only ever set on incoming signup/login payloads.
	// It is hashed into PasswordHash and never stored.
	Password string `json:"password,omitempty" gorm:"-"`

	// Relationship flags relative to the authed user, set by the user
	// service on profile lookups. Not stored.
	FollowsYou bool `json:"follows_you,omitempty" gorm:"-"`
	Following  bool `json:"following,omitempty" gorm:"-"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	Authenticate(email, password string) (*User, error)
	ByID(ctx context.Context, id int) (*User, error)
	ByIDWithFollowInfo(ctx context.Context, viewerID, id int) (*User, error)
	SearchByUsername(ctx context.Context, viewerID int, term string, page CursorPage) ([]User, error)
	Create(ctx context.Context, user *User) error
	UpdatePrivacy(ctx context.Context, id int, isPrivate bool) error
	Delete(ctx context.Context, id int) error
}
