package reconcile

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	halfHourPattern = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})\s*$`)
	clockPattern    = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::\d{2})?`)
)

// Merge flattens every snapshot fragment of every record into one
// deduplicated per-activity timeline.
//
// Records are processed in ascending submission order (stable, so ties keep
// their arrival order) and cells are last-write-wins: a later submission for
// the same activity and hour overwrites the earlier reading. Each entry's
// hour comes from its own slot hint when present, else from the pinned hour
// the ledger assigned to the owning record; entries with neither are left
// out of the grid.
//
// The second return value collects every distinct HH:mm found in the
// entries' reading timestamps, grouped under the resolved slot hour and
// sorted, for the report's "actual submission time" row.
func Merge(records []Record, pinned map[string]int) ([]Row, map[int][]string) {
	ordered := make([]Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
	})

	var rows []Row
	rowIndex := map[string]int{}
	timeSets := map[int]map[string]struct{}{}

	for _, rec := range ordered {
		pinnedHour, hasPinned := pinned[rec.Key()]

		for _, fragment := range rec.SnapshotFragments {
			for _, entry := range decodeFragment(fragment) {
				key := entry.ActivityID + "\x00" + entry.ActivityName
				idx, seen := rowIndex[key]
				if !seen {
					rowIndex[key] = len(rows)
					idx = len(rows)
					rows = append(rows, Row{
						ActivityID:     entry.ActivityID,
						ActivityName:   entry.ActivityName,
						GoodCriteria:   entry.GoodCriteria,
						RejectCriteria: entry.RejectCriteria,
						Hourly:         map[int]Cell{},
						HalfHourly:     map[string]Cell{},
					})
				}

				hour, ok := entryHint(entry)
				if !ok {
					if !hasPinned {
						continue
					}
					hour = pinnedHour
				}

				reading := strings.TrimSpace(entry.Reading.String())
				if reading != "" {
					rows[idx].Hourly[hour] = Cell{Reading: reading}
					if entry.halfHourly() {
						if label, ok := halfHourLabel(entry); ok {
							rows[idx].HalfHourly[label] = Cell{Reading: reading}
						}
					}
				}

				for _, stamp := range clockTimes(entry.ReadingTime) {
					if timeSets[hour] == nil {
						timeSets[hour] = map[string]struct{}{}
					}
					timeSets[hour][stamp] = struct{}{}
				}
			}
		}
	}

	actualTimes := make(map[int][]string, len(timeSets))
	for hour, set := range timeSets {
		times := make([]string, 0, len(set))
		for stamp := range set {
			times = append(times, stamp)
		}
		sort.Strings(times)
		actualTimes[hour] = times
	}

	return rows, actualTimes
}

// decodeFragment deserializes one embedded snapshot array. Malformed
// fragments are skipped entirely; a bad partial save must never take down
// the record's other fragments.
func decodeFragment(fragment string) []Entry {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil
	}
	return entries
}

// halfHourLabel picks the canonical half-hour label for an entry, trying the
// time-slot hint first and falling back to the reading timestamp.
func halfHourLabel(e Entry) (string, bool) {
	for _, candidate := range []string{e.TimeSlot.String(), e.HourSlot.String(), e.ReadingTime} {
		if label, ok := normalizeHalfHourLabel(candidate); ok {
			return label, true
		}
	}
	return "", false
}

// normalizeHalfHourLabel re-renders flexible input like "6:00-6:30" or
// "06:00 - 06:30" as "06:00 - 06:30". Returns false on unparseable input;
// the caller skips the half-hour write rather than failing.
func normalizeHalfHourLabel(text string) (string, bool) {
	match := halfHourPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	h1, _ := strconv.Atoi(match[1])
	m1, _ := strconv.Atoi(match[2])
	h2, _ := strconv.Atoi(match[3])
	m2, _ := strconv.Atoi(match[4])
	if h1 > 23 || h2 > 23 || m1 > 59 || m2 > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d - %02d:%02d", h1, m1, h2, m2), true
}

// clockTimes extracts every HH:mm occurrence from a free-form timestamp,
// which may be a full datetime or a bare clock time.
func clockTimes(text string) []string {
	var times []string
	for _, match := range clockPattern.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(match[1])
		minute, _ := strconv.Atoi(match[2])
		if hour > 23 || minute > 59 {
			continue
		}
		times = append(times, fmt.Sprintf("%02d:%02d", hour, minute))
	}
	return times
}
