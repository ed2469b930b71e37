package timeutil

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseLooseDate reduces a timestamp in whatever layout the remote system
// chose to a calendar date at midnight UTC. Strings it cannot make sense of
// yield nil.
func ParseLooseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}

	d := Date(t)

	return &d
}

func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date the way upload dates are conventionally
// exchanged (YYYYMMDD). A nil date renders as the empty string.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format("20060102")
}
