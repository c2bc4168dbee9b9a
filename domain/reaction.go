package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	// ReactionLike expresses that a user likes a post.
	ReactionLike = "LIKE"
	// ReactionRetweet expresses that a user retweets a post.
	ReactionRetweet = "RETWEET"
)

// ValidReactionType reports whether t names a known reaction type.
func ValidReactionType(t string) bool {
	return t == ReactionLike || t == ReactionRetweet
}

// Reaction represents a like or retweet of a post. A user holds at most
// one active reaction of a given type per post; duplicates are rejected
// by the service, never silently upserted.
type Reaction struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id" gorm:"notNull;index:idx_reactions_user_post"`
	PostID int    `json:"post_id" gorm:"notNull;index:idx_reactions_user_post"`
	Type   string `json:"type" gorm:"notNull"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"`
}

// ReactionService is a set of methods to manipulate and work with the
// Reaction model. Creating or deleting a reaction also moves the
// denormalized counters on the post and on the post's author, inside the
// same transaction as the reaction row itself.
type ReactionService interface {
	Create(ctx context.Context, reaction *Reaction) error
	ByID(ctx context.Context, id int) (*Reaction, error)
	Delete(ctx context.Context, id int) error
	DeleteForPost(ctx context.Context, userID, postID int, reactionType string) error
}
