package reconcile

import (
	"regexp"
	"strconv"
	"strings"

	"floorcheck/api/internal/shift"
)

// Explicit operator hints always outrank timestamp-derived guesses:
// operators submit late or early relative to the slot they are actually
// reporting for, so a hint is intent and a timestamp is only evidence.

var leadingHourPattern = regexp.MustCompile(`^(\d{1,2})`)

// parseHour loosely extracts a leading 1-2 digit hour from hint text,
// accepting "7", "07:00", "7:00-7:30" and "6-7" (start hour only).
func parseHour(s string) (int, bool) {
	match := leadingHourPattern.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return 0, false
	}
	hour, err := strconv.Atoi(match[1])
	if err != nil || hour > 23 {
		return 0, false
	}
	return hour, true
}

// entryHint returns the hour from the entry's explicit slot hints. The alias
// order is fixed: hourSlot, then timeSlot, then hour; the first hint that
// parses wins.
func entryHint(e Entry) (int, bool) {
	for _, hint := range []string{e.HourSlot.String(), e.TimeSlot.String(), e.Hour.String()} {
		if hour, ok := parseHour(hint); ok {
			return hour, true
		}
	}
	return 0, false
}

// recordHour resolves the hour a record is considered to belong to, using
// the ordered fallback chain:
//
//  1. the first parseable entry-level slot hint across the record's fragments
//  2. the record's own slot hint
//  3. the submission timestamp's hour, accepted only when it falls inside
//     the shift window
//  4. the timestamp's hour snapped to the nearest shift hour
//
// The result is always snapped into the shift window before locking. Returns
// false when nothing resolves (no hints, no timestamp, or no shift hours to
// snap into); such records stay out of the grid rather than failing the run.
func recordHour(rec Record, hours []int) (int, bool) {
	if hour, ok := firstEntryHint(rec); ok {
		return snap(hour, hours)
	}
	if hour, ok := parseHour(rec.HourHint); ok {
		return snap(hour, hours)
	}
	if rec.SubmittedAt.IsZero() {
		return 0, false
	}
	hour := rec.SubmittedAt.Hour()
	if contains(hours, hour) {
		return hour, true
	}
	return shift.NearestHour(hour, hours)
}

// firstEntryHint scans the record's fragments for the first entry carrying a
// parseable slot hint. Malformed fragments are skipped, consistent with the
// merge step.
func firstEntryHint(rec Record) (int, bool) {
	for _, fragment := range rec.SnapshotFragments {
		for _, entry := range decodeFragment(fragment) {
			if hour, ok := entryHint(entry); ok {
				return hour, true
			}
		}
	}
	return 0, false
}

func snap(hour int, hours []int) (int, bool) {
	if contains(hours, hour) {
		return hour, true
	}
	return shift.NearestHour(hour, hours)
}

func contains(hours []int, hour int) bool {
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}
