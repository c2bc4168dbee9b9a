package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Follow represents a directed edge between two users. The FollowerID is
// the ID of the user that follows, the FollowedID the ID of the user
// being followed. Unfollowing soft-deletes the edge: a row with DeletedAt
// set is logically absent, and a later re-follow creates a fresh row. At
// most one active edge exists per ordered pair, enforced by the service.
type Follow struct {
	ID         int   `json:"id"`
	FollowerID int   `json:"-" gorm:"notNull;index:idx_follows_pair"`
	Follower   *User `json:"follower,omitempty"`
	FollowedID int   `json:"-" gorm:"notNull;index:idx_follows_pair"`
	Followed   *User `json:"followed,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Create(ctx context.Context, follow *Follow) error
	Delete(ctx context.Context, follow *Follow) error
	// IsFollowing reports whether an active edge follower->followed exists.
	IsFollowing(ctx context.Context, followerID, followedID int) (bool, error)
}
