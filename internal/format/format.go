// Package format renders a poll outcome into a channel display name.
package format

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hamed0406/statusbot/internal/domain"
)

const (
	PlaceholderOnline = "$ONLINE"
	PlaceholderMax    = "$MAX"
)

// Templates holds the two configured display formats. Online may contain
// $ONLINE and $MAX; Offline is used verbatim.
type Templates struct {
	Online  string
	Offline string
}

// Format is total: it never fails, whatever the outcome or templates hold.
func Format(o domain.Outcome, t Templates) string {
	if !o.Reachable {
		return truncate(t.Offline)
	}
	r := strings.NewReplacer(
		PlaceholderOnline, strconv.FormatUint(uint64(o.Players.Online), 10),
		PlaceholderMax, strconv.FormatUint(uint64(o.Players.Max), 10),
	)
	return truncate(r.Replace(t.Online))
}

// truncate cuts s to the longest name the platform accepts, on a rune boundary.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= domain.MaxDisplayNameLen {
		return s
	}
	n := 0
	for i := range s {
		if n == domain.MaxDisplayNameLen {
			return s[:i]
		}
		n++
	}
	return s
}
