package services

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// listCursor pins a position in a created_at-ordered listing. The submission
// id breaks ties between rows created in the same microsecond. The backing
// store cannot paginate by offset efficiently, so all submission listings
// page by cursor.
type listCursor struct {
	CreatedAt time.Time
	LastID    uint
}

func encodeCursor(createdAt time.Time, lastID uint) string {
	raw := fmt.Sprintf("%d|%d", createdAt.UnixMicro(), lastID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (*listCursor, error) {
	if strings.TrimSpace(cursor) == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, NewValidationError("Invalid cursor")
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return nil, NewValidationError("Invalid cursor")
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, NewValidationError("Invalid cursor")
	}
	lastID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, NewValidationError("Invalid cursor")
	}

	return &listCursor{
		CreatedAt: time.UnixMicro(micros),
		LastID:    uint(lastID),
	}, nil
}

// normalizeLimit clamps a requested page size to 1..100, defaulting to 20.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
