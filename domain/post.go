package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Post represents a post or a comment. The two share one record shape and
// are distinguished only by ParentID: a nil ParentID makes a top-level
// post, a non-nil one makes a comment nested under its parent. Comments
// may nest under comments.
//
// The counter fields cache the number of active reactions / child
// comments so list and detail views never scan the reactions table. They
// move only inside the same transaction as the reaction or comment row
// they account for.
type Post struct {
	ID      int    `json:"id"`
	UserID  int    `json:"user_id" gorm:"notNull;index"`
	User    *User  `json:"author,omitempty"`
	Content string `json:"content"`

	// Images holds externally issued storage keys, at most four.
	Images []string `json:"images" gorm:"serializer:json"`

	ParentID *int `json:"parent_id,omitempty" gorm:"index"`

	LikesCount    int `json:"likes_count"`
	RetweetsCount int `json:"retweets_count"`
	CommentsCount int `json:"comments_count"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"`
}

// IsComment reports whether the post is nested under a parent.
func (p *Post) IsComment() bool {
	return p.ParentID != nil
}

// MaxContentLength is the maximum number of characters of a post's content.
const MaxContentLength = 240

// MaxImagesPerPost is the maximum number of image keys attached to a post.
const MaxImagesPerPost = 4

// PostService is a set of methods to manipulate and work with the Post
// model, covering both posts and comments.
type PostService interface {
	CreatePost(ctx context.Context, post *Post) error
	CreateComment(ctx context.Context, comment *Post) error
	ByID(ctx context.Context, viewerID, id int) (*Post, error)
	Feed(ctx context.Context, viewerID int, page CursorPage) ([]Post, error)
	ByAuthor(ctx context.Context, viewerID, authorID int) ([]Post, error)
	CommentsByPost(ctx context.Context, viewerID, postID int, page CursorPage) ([]Post, error)
	Delete(ctx context.Context, userID, id int) error
}
