package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID returns a unique record id: a high-resolution timestamp plus a short
// random suffix for collision safety. Ids sort roughly by creation time,
// which keeps cross-collection debugging sane.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}

// NowISO returns the current instant as an ISO-8601 (RFC3339) UTC string,
// the format used for createdAt/archivedAt/executedAt stamps.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Today returns the current date as a zero-padded YYYY-MM-DD string.
func Today() string {
	return time.Now().Format(DateLayout)
}
