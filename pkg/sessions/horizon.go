package sessions

import (
	"regexp"
	"strconv"
	"time"

	"github.com/recaptools/recap/errors"
)

var horizonRegex = regexp.MustCompile(`(?i)^\s*(\d+)\s*([hdw])\s*$`)

// Horizon is the time window applied when filtering candidate sessions.
type Horizon struct {
	AllTime bool
	Span    time.Duration
	Label   string
}

// DefaultHorizon is one week back from now.
var DefaultHorizon = Horizon{Span: 7 * 24 * time.Hour, Label: "1w"}

// AllTime disables the date filter.
func AllTime() Horizon {
	return Horizon{AllTime: true, Label: "all-time"}
}

// ParseHorizon parses duration specs like 12h, 1d, 2w.
func ParseHorizon(spec string) (Horizon, error) {
	match := horizonRegex.FindStringSubmatch(spec)
	if match == nil {
		return Horizon{}, errors.New(errors.ErrCodeInvalidInput,
			"invalid horizon value; use formats like 12h, 1d, 2w").
			WithDetail("value", spec)
	}
	amount, err := strconv.Atoi(match[1])
	if err != nil {
		return Horizon{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid horizon amount")
	}

	var unit time.Duration
	switch match[2] {
	case "h", "H":
		unit = time.Hour
	case "d", "D":
		unit = 24 * time.Hour
	case "w", "W":
		unit = 7 * 24 * time.Hour
	}
	return Horizon{Span: time.Duration(amount) * unit, Label: spec}, nil
}

// Cutoff returns the earliest admissible instant, or the zero time when the
// horizon is unrestricted.
func (h Horizon) Cutoff(now time.Time) time.Time {
	if h.AllTime {
		return time.Time{}
	}
	return now.Add(-h.Span)
}

// Contains reports whether t falls inside the horizon ending at now.
func (h Horizon) Contains(t time.Time, now time.Time) bool {
	if h.AllTime {
		return true
	}
	return !t.Before(h.Cutoff(now))
}
