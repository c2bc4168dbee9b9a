package crud

import (
	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// counterColumn maps a reaction or comment kind to the denormalized
// counter column it drives on both posts and users.
func counterColumn(kind string) (string, error) {
	switch kind {
	case domain.ReactionLike:
		return "likes_count", nil
	case domain.ReactionRetweet:
		return "retweets_count", nil
	case "COMMENT":
		return "comments_count", nil
	}
	return "", errs.Errorf(errs.EINVALID, "Unknown counter kind %q.", kind)
}

// applyCounters moves the denormalized counters for one reaction or
// comment event by delta: the content's counter on the post and the
// owning user's aggregate counter. It must run inside the same
// transaction as the row mutation that triggers it, and it uses the
// store's atomic increment so concurrent events never lose updates.
func applyCounters(tx *gorm.DB, kind string, postID, userID, delta int) error {
	column, err := counterColumn(kind)
	if err != nil {
		return err
	}
	if postID > 0 {
		err := tx.Model(&domain.Post{}).
			Where("id = ?", postID).
			UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
		if err != nil {
			return err
		}
	}
	if userID > 0 {
		err := tx.Model(&domain.User{}).
			Where("id = ?", userID).
			UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
		if err != nil {
			return err
		}
	}
	return nil
}
