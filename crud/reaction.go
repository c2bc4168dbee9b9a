package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// ReactionService manages Reactions (likes and retweets).
// It implements the domain.ReactionService interface.
type ReactionService struct {
	reactionValidator
}

// reactionValidator runs validations on incoming Reaction data.
// On success, it passes the data on to reactionGorm.
// Otherwise, it returns the error of the validation that has failed.
type reactionValidator struct {
	reactionGorm
}

// reactionGorm runs CRUD operations on the database using incoming
// Reaction data. It assumes that data has been validated. On success, it
// returns nil. Otherwise, it returns the error of the operation that has
// failed.
type reactionGorm struct {
	db *gorm.DB
	vs domain.VisibilityService
}

// NewReactionService returns an instance of ReactionService.
func NewReactionService(db *gorm.DB, vs domain.VisibilityService) *ReactionService {
	return &ReactionService{
		reactionValidator{
			reactionGorm{
				db: db,
				vs: vs,
			},
		},
	}
}

// Ensure the ReactionService struct properly implements the domain.ReactionService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ReactionService = &ReactionService{}

// Create runs validations needed for creating new Reaction database records.
// A duplicate active reaction is a conflict and leaves all counters untouched.
func (rv *reactionValidator) Create(ctx context.Context, reaction *domain.Reaction) error {
	err := runReactionValFns(ctx, reaction,
		rv.userIdValid,
		rv.typeValid,
		rv.postAccessible,
		rv.notAlreadyReacted)
	if err != nil {
		return err
	}
	return rv.reactionGorm.Create(ctx, reaction)
}

// Delete runs validations needed for deleting existing Reaction database records.
func (rv *reactionValidator) Delete(ctx context.Context, id int) error {
	reaction, err := rv.reactionGorm.ByID(ctx, id)
	if err != nil {
		return err
	}
	return rv.reactionGorm.delete(ctx, reaction)
}

// DeleteForPost deletes the caller's active reaction of the given type on
// the given post.
func (rv *reactionValidator) DeleteForPost(ctx context.Context, userID, postID int, reactionType string) error {
	if !domain.ValidReactionType(reactionType) {
		return errs.Errorf(errs.EINVALID, "Invalid reaction type, use LIKE or RETWEET.")
	}
	reaction, err := rv.reactionGorm.byUserPostType(ctx, userID, postID, reactionType)
	if err != nil {
		return err
	}
	return rv.reactionGorm.delete(ctx, reaction)
}

// runReactionValFns runs any number of functions of type reactionValFn on the passed in Reaction object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runReactionValFns(ctx context.Context, reaction *domain.Reaction, fns ...reactionValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, reaction); err != nil {
			return err
		}
	}
	return nil
}

// A reactionValFn is any function that takes in a pointer to a domain.Reaction object and returns an error.
type reactionValFn func(ctx context.Context, reaction *domain.Reaction) error

// userIdValid ensures that the userId is not empty.
func (rv *reactionValidator) userIdValid(_ context.Context, reaction *domain.Reaction) error {
	if reaction.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "A valid user ID is required.")
	}
	return nil
}

// typeValid makes sure the reaction type is one of the known kinds.
func (rv *reactionValidator) typeValid(_ context.Context, reaction *domain.Reaction) error {
	if !domain.ValidReactionType(reaction.Type) {
		return errs.Errorf(errs.EINVALID, "Invalid reaction type, use LIKE or RETWEET.")
	}
	return nil
}

// postAccessible makes sure the reacted-to post exists and its author's
// content is visible to the reacting user.
func (rv *reactionValidator) postAccessible(ctx context.Context, reaction *domain.Reaction) error {
	var post domain.Post
	err := rv.db.WithContext(ctx).First(&post, "id = ?", reaction.PostID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return err
	}

	ok, err := rv.vs.CanViewContent(ctx, reaction.UserID, post.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Errorf(errs.EFORBIDDEN, "You are not allowed to react to this post.")
	}
	return nil
}

// notAlreadyReacted makes sure no active reaction of the same type by the
// same user on the same post exists. A duplicate must fail loudly, never
// silently upsert.
func (rv *reactionValidator) notAlreadyReacted(ctx context.Context, reaction *domain.Reaction) error {
	_, err := rv.reactionGorm.byUserPostType(ctx, reaction.UserID, reaction.PostID, reaction.Type)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil
		}
		return err
	}
	return errs.Errorf(errs.ECONFLICT, "You already reacted to this post.")
}

// ByID retrieves a single Reaction by ID.
func (rg *reactionGorm) ByID(ctx context.Context, id int) (*domain.Reaction, error) {
	var reaction domain.Reaction
	err := rg.db.WithContext(ctx).First(&reaction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The reaction does not exist.")
		}
		return nil, err
	}
	return &reaction, nil
}

func (rg *reactionGorm) byUserPostType(ctx context.Context, userID, postID int, reactionType string) (*domain.Reaction, error) {
	var reaction domain.Reaction
	err := rg.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ? AND type = ?", userID, postID, reactionType).
		First(&reaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The reaction does not exist.")
		}
		return nil, err
	}
	return &reaction, nil
}

// Create stores the reaction and increments the per-type counters of the
// post and of the post's author, all in one transaction with atomic
// increments. Either everything commits or nothing does; a crash cannot
// leave a counter half-applied.
func (rg *reactionGorm) Create(ctx context.Context, reaction *domain.Reaction) error {
	return rg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reaction).Error; err != nil {
			return err
		}
		var post domain.Post
		if err := tx.Select("id", "user_id").First(&post, "id = ?", reaction.PostID).Error; err != nil {
			return err
		}
		return applyCounters(tx, reaction.Type, reaction.PostID, post.UserID, +1)
	})
}

// delete soft-deletes the reaction and decrements the same two counters
// its creation incremented, in one transaction. The decrement only runs
// when this call actually tombstoned the row: two callers may both pass
// the existence check, and the loser of that race must not decrement a
// second time.
func (rg *reactionGorm) delete(ctx context.Context, reaction *domain.Reaction) error {
	return rg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(reaction)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Errorf(errs.ENOTFOUND, "The reaction does not exist.")
		}
		var post domain.Post
		if err := tx.Select("id", "user_id").First(&post, "id = ?", reaction.PostID).Error; err != nil {
			return err
		}
		return applyCounters(tx, reaction.Type, reaction.PostID, post.UserID, -1)
	})
}
