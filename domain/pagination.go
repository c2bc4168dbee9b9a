package domain

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPageSize is the page size used when a caller supplies no limit,
// or a limit of zero or less.
const DefaultPageSize = 20

// CursorPage carries the parameters of one cursor-paginated list request.
// A well-formed caller sets at most one of Before and After. If both are
// set, After wins. Before and After are opaque tokens produced by
// Cursor.Encode.
//
// The canonical order of every paginated collection is creation timestamp
// descending, id ascending as the tie-break for equal timestamps.
type CursorPage struct {
	Limit  int
	Before string
	After  string
}

// PageSize returns the effective page size: the requested limit, or
// DefaultPageSize when the limit is unset or not positive.
func (p CursorPage) PageSize() int {
	if p.Limit <= 0 {
		return DefaultPageSize
	}
	return p.Limit
}

// Cursor is a position in a canonically ordered sequence. The timestamp
// is the primary component; the id only breaks ties between records
// created in the same instant. An id of zero means the cursor carries no
// id component and comparisons are timestamp-only.
type Cursor struct {
	CreatedAt time.Time
	ID        int
}

// Encode renders the cursor as an opaque url-safe token.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d|%d", c.CreatedAt.UnixMicro(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Encode. As a deprecated
// fallback it also accepts a bare RFC 3339 timestamp, which yields a
// cursor without an id component.
func DecodeCursor(token string) (Cursor, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(token); err == nil {
		parts := strings.SplitN(string(raw), "|", 2)
		if len(parts) == 2 {
			micros, err1 := strconv.ParseInt(parts[0], 10, 64)
			id, err2 := strconv.Atoi(parts[1])
			if err1 == nil && err2 == nil {
				return Cursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: id}, nil
			}
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, token); err == nil {
		return Cursor{CreatedAt: ts}, nil
	}
	return Cursor{}, fmt.Errorf("malformed cursor %q", token)
}
