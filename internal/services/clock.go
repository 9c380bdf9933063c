package services

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout renders ISO-8601 UTC timestamps with millisecond precision
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Clock lets tests pin the time used for result timestamps
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FormatTimestamp renders t in UTC using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NewResultID returns a time-ordered UUIDv7, so ids sort by creation time
// and stay unique when several results share a millisecond.
func NewResultID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
