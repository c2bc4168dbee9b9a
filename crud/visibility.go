package crud

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"wtfSocial/domain"
)

// VisibilityService implements the domain.VisibilityService interface:
// the access policy derived from account privacy flags and the follow
// graph. It holds no state beyond its collaborators and both predicates
// are pure with respect to the store.
type VisibilityService struct {
	db *gorm.DB
	fs domain.FollowService
}

// NewVisibilityService returns an instance of VisibilityService.
func NewVisibilityService(db *gorm.DB, fs domain.FollowService) *VisibilityService {
	return &VisibilityService{db: db, fs: fs}
}

// Ensure the VisibilityService struct properly implements the domain.VisibilityService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.VisibilityService = &VisibilityService{}

// CanViewContent decides whether the viewer may see the subject's content.
// Self-access is always allowed. A missing viewer or subject yields false,
// not an error. A public subject is visible to everyone; a private one
// only to viewers that follow them. The check is one-directional, the
// subject does not need to follow back.
func (vs *VisibilityService) CanViewContent(ctx context.Context, viewerID, subjectID int) (bool, error) {
	if viewerID == subjectID {
		return true, nil
	}

	viewer, subject, err := vs.getUserPair(ctx, viewerID, subjectID)
	if err != nil {
		return false, err
	}
	if viewer == nil || subject == nil {
		return false, nil
	}

	if !subject.IsPrivate {
		return true, nil
	}
	return vs.fs.IsFollowing(ctx, viewerID, subjectID)
}

// CanChat decides whether two users may message each other. Unlike
// content visibility the predicate is symmetric: a user can never chat
// with themselves, two public accounts can always chat, and as soon as
// either account is private both follow directions must exist. The two
// follow lookups run concurrently and their results are ANDed.
func (vs *VisibilityService) CanChat(ctx context.Context, userA, userB int) (bool, error) {
	if userA == userB {
		return false, nil
	}

	a, b, err := vs.getUserPair(ctx, userA, userB)
	if err != nil {
		return false, err
	}
	if a == nil || b == nil {
		return false, nil
	}

	if !a.IsPrivate && !b.IsPrivate {
		return true, nil
	}

	var aFollowsB, bFollowsA bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		aFollowsB, err = vs.fs.IsFollowing(gctx, userA, userB)
		return err
	})
	g.Go(func() error {
		var err error
		bFollowsA, err = vs.fs.IsFollowing(gctx, userB, userA)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, err
	}
	return aFollowsB && bFollowsA, nil
}

// getUserPair fetches the privacy flags of both users concurrently.
// A missing user comes back as nil instead of an error.
func (vs *VisibilityService) getUserPair(ctx context.Context, idA, idB int) (*domain.User, *domain.User, error) {
	var a, b *domain.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = vs.getUser(gctx, idA)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = vs.getUser(gctx, idB)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (vs *VisibilityService) getUser(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := vs.db.WithContext(ctx).
		Select("id", "is_private").
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
