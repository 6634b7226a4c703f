package fastlap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidTimeFormat is returned for any lap time string that does not
// match <minutes>:<seconds>.<1-3 digit fraction>.
var ErrInvalidTimeFormat = errors.New("fastlap: invalid time format, use M:SS.mmm (e.g. 1:23.456)")

// ParseLapTime converts a lap time string of the form M:SS.mmm into exact
// milliseconds. Seconds of 60 or more are expanded literally rather than
// normalised, so "1:60.000" parses to 120000. The fraction is right-padded
// with zeros to three digits, then truncated to three.
func ParseLapTime(raw string) (int, error) {
	parts := strings.Split(raw, ":")

	if len(parts) != 2 {
		return 0, errors.Wrap(ErrInvalidTimeFormat, raw)
	}

	minutes, err := strconv.Atoi(parts[0])

	if err != nil || minutes < 0 {
		return 0, errors.Wrap(ErrInvalidTimeFormat, raw)
	}

	secondsParts := strings.Split(parts[1], ".")

	if len(secondsParts) != 2 {
		return 0, errors.Wrap(ErrInvalidTimeFormat, raw)
	}

	seconds, err := strconv.Atoi(secondsParts[0])

	if err != nil || seconds < 0 {
		return 0, errors.Wrap(ErrInvalidTimeFormat, raw)
	}

	fraction := secondsParts[1]

	if fraction == "" {
		return 0, errors.Wrap(ErrInvalidTimeFormat, raw)
	}

	// pad to three digits, truncating anything beyond millisecond precision
	for len(fraction) < 3 {
		fraction += "0"
	}

	fraction = fraction[:3]

	millis, err := strconv.Atoi(fraction)

	if err != nil || millis < 0 {
		return 0, errors.Wrap(ErrInvalidTimeFormat, raw)
	}

	return minutes*60000 + seconds*1000 + millis, nil
}

// FormatLapTime renders milliseconds in the canonical M:SS.mmm form. Stored
// display strings are always re-rendered through this function so that they
// can never diverge from the millisecond value.
func FormatLapTime(ms int) string {
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms%60000)/1000, ms%1000)
}

// FormatGap renders the difference between an entry and the leader. Equal
// times (the leader itself, or an exact tie with it) render as "-". Callers
// are expected to pass a leader time no greater than the entry time; the
// subtraction is performed as-is.
func FormatGap(leaderMS, entryMS int) string {
	if leaderMS == entryMS {
		return "-"
	}

	gap := entryMS - leaderMS

	switch {
	case gap < 1000:
		return fmt.Sprintf("+0.%03d", gap)
	case gap < 60000:
		return fmt.Sprintf("+%d.%03d", gap/1000, gap%1000)
	default:
		return fmt.Sprintf("+%d:%02d.%03d", gap/60000, (gap%60000)/1000, gap%1000)
	}
}
