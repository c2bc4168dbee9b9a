package domain

import "context"

// VisibilityService decides, for an ordered pair of users, whether
// content or messaging access is permitted. The two predicates are
// deliberately distinct and must not be unified:
//
// CanViewContent is one-directional. A user always sees their own
// content. A public subject is visible to anyone. A private subject is
// visible only to viewers that follow them; the subject need not follow
// back.
//
// CanChat is symmetric. A user can never chat with themselves. If both
// parties are public they can chat; as soon as either is private, a
// mutual follow is required.
//
// Absence of access is a normal false return, never an error. Callers
// translate false into not-found, forbidden, or silent filtering
// depending on context.
type VisibilityService interface {
	CanViewContent(ctx context.Context, viewerID, subjectID int) (bool, error)
	CanChat(ctx context.Context, userA, userB int) (bool, error)
}
