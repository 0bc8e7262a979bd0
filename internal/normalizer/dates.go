package normalizer

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate parses a publication timestamp and keeps only its calendar date,
// as observed in the timestamp's own zone. Unparsable input yields zero time.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
