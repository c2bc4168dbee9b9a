package crud

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// MessageService manages direct Messages between users. Every operation
// is gated by the chat predicate of the VisibilityService.
// It implements the domain.MessageService interface.
type MessageService struct {
	messageValidator
}

// messageValidator runs validations on incoming Message data.
// On success, it passes the data on to messageGorm.
// Otherwise, it returns the error of the validation that has failed.
type messageValidator struct {
	messageGorm
}

// messageGorm runs CRUD operations on the database using incoming Message
// data. It assumes that data has been validated. On success, it returns
// nil. Otherwise, it returns the error of the operation that has failed.
type messageGorm struct {
	db *gorm.DB
	vs domain.VisibilityService
}

// NewMessageService returns an instance of MessageService.
func NewMessageService(db *gorm.DB, vs domain.VisibilityService) *MessageService {
	return &MessageService{
		messageValidator{
			messageGorm{
				db: db,
				vs: vs,
			},
		},
	}
}

// Ensure the MessageService struct properly implements the domain.MessageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.MessageService = &MessageService{}

// Send validates and stores a new message. Senders that may not chat with
// the receiver get a forbidden; that includes messaging yourself and
// messaging anyone who doesn't mutually follow you while either account
// is private.
func (mv *messageValidator) Send(ctx context.Context, message *domain.Message) error {
	ok, err := mv.vs.CanChat(ctx, message.SenderID, message.ReceiverID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Errorf(errs.EFORBIDDEN, "You are not allowed to message this user.")
	}

	message.Content = strings.TrimSpace(message.Content)
	if message.Content == "" {
		return errs.Errorf(errs.EINVALID, "Message content must not be empty.")
	}
	if utf8.RuneCountInString(message.Content) > domain.MaxMessageLength {
		return errs.Errorf(errs.EINVALID, "Message content max length is %d characters.", domain.MaxMessageLength)
	}

	return mv.messageGorm.Create(ctx, message)
}

// Conversation returns a cursor page of the messages exchanged with one
// partner, in canonical order.
func (mv *messageValidator) Conversation(ctx context.Context, userID, partnerID int, page domain.CursorPage) ([]domain.Message, error) {
	ok, err := mv.vs.CanChat(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Errorf(errs.EFORBIDDEN, "You are not allowed to view this conversation.")
	}
	return mv.messageGorm.between(ctx, userID, partnerID, page)
}

// MarkRead flips all unread messages from the partner to read, in bulk.
func (mv *messageValidator) MarkRead(ctx context.Context, userID, partnerID int) error {
	ok, err := mv.vs.CanChat(ctx, userID, partnerID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Errorf(errs.EFORBIDDEN, "You are not allowed to view this conversation.")
	}
	return mv.messageGorm.markRead(ctx, userID, partnerID)
}

// Conversations lists the user's conversations, most recently active
// first. Partners the user may no longer chat with (privacy flipped,
// unfollowed) are silently filtered out rather than erroring.
func (mv *messageValidator) Conversations(ctx context.Context, userID int) ([]domain.Conversation, error) {
	partnerIDs, err := mv.messageGorm.partnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	conversations := make([]domain.Conversation, 0, len(partnerIDs))
	for _, partnerID := range partnerIDs {
		ok, err := mv.vs.CanChat(ctx, userID, partnerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		conv, err := mv.messageGorm.conversationWith(ctx, userID, partnerID)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessage, conversations[j].LastMessage
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return conversations, nil
}

// Create stores the data from the Message object in a new database record.
func (mg *messageGorm) Create(ctx context.Context, message *domain.Message) error {
	return mg.db.WithContext(ctx).Create(message).Error
}

// between returns a cursor page of the messages exchanged between two users.
func (mg *messageGorm) between(ctx context.Context, userID, partnerID int, page domain.CursorPage) ([]domain.Message, error) {
	q := mg.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID)
	return findPage[domain.Message](q, "messages", page)
}

// partnerIDs returns the distinct users the given user has exchanged
// messages with.
func (mg *messageGorm) partnerIDs(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	err := mg.db.WithContext(ctx).Raw(`
		SELECT DISTINCT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS partner_id
		FROM messages
		WHERE sender_id = ? OR receiver_id = ?`,
		userID, userID, userID).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// conversationWith builds the summary of the conversation with one
// partner: profile bits, last message and unread count.
func (mg *messageGorm) conversationWith(ctx context.Context, userID, partnerID int) (*domain.Conversation, error) {
	var partner domain.User
	err := mg.db.WithContext(ctx).
		Select("id", "username", "name").
		First(&partner, "id = ?", partnerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}

	conv := &domain.Conversation{
		PartnerID:       partner.ID,
		PartnerUsername: partner.Username,
		PartnerName:     partner.Name,
	}

	var last domain.Message
	err = mg.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID).
		Order("created_at DESC").Order("id ASC").
		First(&last).Error
	if err == nil {
		conv.LastMessage = &last
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var unread int64
	err = mg.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, userID, false).
		Count(&unread).Error
	if err != nil {
		return nil, err
	}
	conv.UnreadCount = int(unread)
	return conv, nil
}

// markRead marks all unread messages sent by the partner to the user as read.
func (mg *messageGorm) markRead(ctx context.Context, userID, partnerID int) error {
	return mg.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, userID, false).
		UpdateColumn("is_read", true).Error
}

// UnreadCount returns the total number of unread messages addressed to the user.
func (mg *messageGorm) UnreadCount(ctx context.Context, userID int) (int, error) {
	var count int64
	err := mg.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
