package crud

import (
	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// findPage runs the query q, windowed by the given cursor page, and
// returns at most page.PageSize() records in canonical order (creation
// timestamp descending, id ascending). The table name qualifies the
// ordering columns so that queries with joins stay unambiguous.
//
// A Before cursor selects records strictly older than the cursor. An
// After cursor selects the records immediately newer than the cursor;
// they are fetched nearest-first and re-presented in canonical order.
// When both cursors are set, After wins. Whether another page exists is
// determined by over-fetching one extra record and trimming, never by a
// separate count query.
//
// Any visibility conditions must already be part of q: filtering composes
// in the WHERE clause, logically before the LIMIT, so a page never comes
// back artificially short.
func findPage[T any](q *gorm.DB, table string, page domain.CursorPage) ([]T, error) {
	size := page.PageSize()
	reversed := false

	switch {
	case page.After != "":
		cur, err := domain.DecodeCursor(page.After)
		if err != nil {
			return nil, errs.Errorf(errs.EINVALID, "Malformed pagination cursor.")
		}
		if cur.ID > 0 {
			q = q.Where(table+".created_at > ? OR ("+table+".created_at = ? AND "+table+".id < ?)",
				cur.CreatedAt, cur.CreatedAt, cur.ID)
		} else {
			q = q.Where(table+".created_at > ?", cur.CreatedAt)
		}
		// Nearest newer records first, flipped back below.
		q = q.Order(table + ".created_at ASC").Order(table + ".id DESC")
		reversed = true
	case page.Before != "":
		cur, err := domain.DecodeCursor(page.Before)
		if err != nil {
			return nil, errs.Errorf(errs.EINVALID, "Malformed pagination cursor.")
		}
		if cur.ID > 0 {
			q = q.Where(table+".created_at < ? OR ("+table+".created_at = ? AND "+table+".id > ?)",
				cur.CreatedAt, cur.CreatedAt, cur.ID)
		} else {
			q = q.Where(table+".created_at < ?", cur.CreatedAt)
		}
		q = q.Order(table + ".created_at DESC").Order(table + ".id ASC")
	default:
		q = q.Order(table + ".created_at DESC").Order(table + ".id ASC")
	}

	var items []T
	if err := q.Limit(size + 1).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) > size {
		items = items[:size]
	}
	if reversed {
		reverse(items)
	}
	return items, nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
