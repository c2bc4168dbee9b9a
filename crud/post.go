package crud

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// PostService manages Posts and Comments (the same record shape,
// discriminated by ParentID). It implements the domain.PostService
// interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
	vs domain.VisibilityService
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB, vs domain.VisibilityService) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
				vs: vs,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// CreatePost runs validations needed for creating new top-level Post records.
func (pv *postValidator) CreatePost(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.userIdValid,
		pv.isRootPost,
		pv.contentMinLength,
		pv.contentMaxLength,
		pv.imagesMaxCount)
	if err != nil {
		return err
	}
	return pv.postGorm.CreatePost(ctx, post)
}

// CreateComment runs validations needed for creating new Comment records.
// The parent must exist and be visible to the commenting user; a hidden
// parent reads as missing.
func (pv *postValidator) CreateComment(ctx context.Context, comment *domain.Post) error {
	err := runPostValFns(comment,
		pv.userIdValid,
		pv.hasParent,
		pv.contentMinLength,
		pv.contentMaxLength,
		pv.imagesMaxCount)
	if err != nil {
		return err
	}
	if _, err := pv.postGorm.ByID(ctx, comment.UserID, *comment.ParentID); err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return errs.Errorf(errs.ENOTFOUND, "The parent post does not exist.")
		}
		return err
	}
	return pv.postGorm.CreateComment(ctx, comment)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn func(post *domain.Post) error

// userIdValid ensures that the userId is not empty.
func (pv *postValidator) userIdValid(post *domain.Post) error {
	if post.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "A valid user ID is required.")
	}
	return nil
}

// isRootPost makes sure a top-level post doesn't reference a parent.
func (pv *postValidator) isRootPost(post *domain.Post) error {
	if post.ParentID != nil {
		return errs.Errorf(errs.EINVALID, "A post cannot have a parent, create a comment instead.")
	}
	return nil
}

// hasParent makes sure a comment references a parent.
func (pv *postValidator) hasParent(post *domain.Post) error {
	if post.ParentID == nil || *post.ParentID <= 0 {
		return errs.Errorf(errs.EINVALID, "A comment requires a parent post.")
	}
	return nil
}

// contentMinLength makes sure that the content is not empty.
func (pv *postValidator) contentMinLength(post *domain.Post) error {
	if strings.TrimSpace(post.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Content must not be empty.")
	}
	return nil
}

// contentMaxLength makes sure that the content does not exceed the maximum content length.
func (pv *postValidator) contentMaxLength(post *domain.Post) error {
	if utf8.RuneCountInString(post.Content) > domain.MaxContentLength {
		return errs.Errorf(errs.EINVALID, "Content max length is %d characters.", domain.MaxContentLength)
	}
	return nil
}

// imagesMaxCount makes sure that no more than four image keys are attached.
func (pv *postValidator) imagesMaxCount(post *domain.Post) error {
	if len(post.Images) > domain.MaxImagesPerPost {
		return errs.Errorf(errs.EINVALID, "Too many images, not more than %d allowed.", domain.MaxImagesPerPost)
	}
	return nil
}

// visibleTo restricts q to posts whose author the viewer may see: public
// authors, authors the viewer actively follows, or the viewer themselves.
// The check lives in the WHERE clause so that filtering happens before
// the LIMIT, never after.
func (pg *postGorm) visibleTo(q *gorm.DB, viewerID int) *gorm.DB {
	followed := pg.db.Model(&domain.Follow{}).
		Select("followed_id").
		Where("follower_id = ?", viewerID)
	return q.
		Joins("JOIN users ON users.id = posts.user_id AND users.deleted_at IS NULL").
		Where("users.is_private = ? OR posts.user_id IN (?) OR posts.user_id = ?",
			false, followed, viewerID)
}

// ByID retrieves a single Post by ID, along with its author. A post the
// viewer may not see reads as missing, it does not read as forbidden.
func (pg *postGorm) ByID(ctx context.Context, viewerID, id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).
		Preload("User").
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, err
	}

	ok, err := pg.vs.CanViewContent(ctx, viewerID, post.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
	}
	return &post, nil
}

// Feed returns a cursor page of top-level posts visible to the viewer,
// in canonical order.
func (pg *postGorm) Feed(ctx context.Context, viewerID int, page domain.CursorPage) ([]domain.Post, error) {
	q := pg.db.WithContext(ctx).
		Model(&domain.Post{}).
		Preload("User").
		Where("posts.parent_id IS NULL")
	q = pg.visibleTo(q, viewerID)
	return findPage[domain.Post](q, "posts", page)
}

// ByAuthor returns all top-level posts of one author, newest first. A
// viewer without content access to the author gets a not-found, matching
// the behavior of single-resource endpoints.
func (pg *postGorm) ByAuthor(ctx context.Context, viewerID, authorID int) ([]domain.Post, error) {
	err := pg.db.WithContext(ctx).First(&domain.User{}, "id = ?", authorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}

	ok, err := pg.vs.CanViewContent(ctx, viewerID, authorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}

	var posts []domain.Post
	err = pg.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? AND parent_id IS NULL", authorID).
		Order("created_at DESC").Order("id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CommentsByPost returns a cursor page of the comments under a post, in
// canonical order, filtered to authors the viewer may see. An
// inaccessible parent degrades to an empty page rather than an error.
func (pg *postGorm) CommentsByPost(ctx context.Context, viewerID, postID int, page domain.CursorPage) ([]domain.Post, error) {
	if _, err := pg.ByID(ctx, viewerID, postID); err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return []domain.Post{}, nil
		}
		return nil, err
	}

	q := pg.db.WithContext(ctx).
		Model(&domain.Post{}).
		Preload("User").
		Where("posts.parent_id = ?", postID)
	q = pg.visibleTo(q, viewerID)
	return findPage[domain.Post](q, "posts", page)
}

// CreatePost stores the data from the Post object in a new database record.
func (pg *postGorm) CreatePost(ctx context.Context, post *domain.Post) error {
	if err := pg.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	return pg.db.WithContext(ctx).Preload("User").First(post, "id = ?", post.ID).Error
}

// CreateComment stores a new comment and moves the comment counters of
// the parent post and of the commenting user, all in one transaction.
func (pg *postGorm) CreateComment(ctx context.Context, comment *domain.Post) error {
	err := pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return applyCounters(tx, "COMMENT", *comment.ParentID, comment.UserID, +1)
	})
	if err != nil {
		return err
	}
	return pg.db.WithContext(ctx).Preload("User").First(comment, "id = ?", comment.ID).Error
}

// Delete soft-deletes a post. Only the author may delete it; anyone else
// gets a forbidden, not a not-found, since the existence of an own-feed
// post is no secret at that point. Deleting a comment decrements the
// parent's and the author's comment counters in the same transaction.
func (pg *postGorm) Delete(ctx context.Context, userID, id int) error {
	var post domain.Post
	err := pg.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return err
	}
	if post.UserID != userID {
		return errs.Errorf(errs.EFORBIDDEN, "You are not allowed to delete this post.")
	}
	return pg.delete(ctx, &post)
}

// delete soft-deletes an already-fetched post and, for a comment, moves
// the parent's and the author's comment counters back down in the same
// transaction. The decrement only runs when this call actually tombstoned
// the row; a caller racing another delete of the same post must not
// decrement a second time.
func (pg *postGorm) delete(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(post)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		if post.IsComment() {
			return applyCounters(tx, "COMMENT", *post.ParentID, post.UserID, -1)
		}
		return nil
	})
}
