// Package shift computes the clock-hour windows of the three plant shifts.
package shift

// The three fixed 8-hour operating windows. Shift 3 wraps past midnight.
const (
	Shift1 = "Shift 1" // 06:00 - 14:00
	Shift2 = "Shift 2" // 14:00 - 22:00
	Shift3 = "Shift 3" // 22:00 - 06:00
)

// Hours returns the in-shift clock hours for a shift name, in shift order.
// Unknown shift names return nil; callers must treat that as "no data".
func Hours(name string) []int {
	switch name {
	case Shift1:
		return []int{6, 7, 8, 9, 10, 11, 12, 13}
	case Shift2:
		return []int{14, 15, 16, 17, 18, 19, 20, 21}
	case Shift3:
		return []int{22, 23, 0, 1, 2, 3, 4, 5}
	default:
		return nil
	}
}

// LabelHours returns Hours plus the closing boundary hour. The report renders
// nine column labels per shift; the extra label carries the start of the next
// shift so the "actual time" row has somewhere to park end-of-shift chips.
func LabelHours(name string) []int {
	hours := Hours(name)
	if hours == nil {
		return nil
	}
	last := hours[len(hours)-1]
	return append(hours, (last+1)%24)
}

// CircularDistance is the distance between two clock hours on the 24-hour dial.
func CircularDistance(a, b int) int {
	forward := ((a - b) % 24 + 24) % 24
	backward := ((b - a) % 24 + 24) % 24
	if forward < backward {
		return forward
	}
	return backward
}

// NearestHour snaps h to the closest member of hours. If h is already a
// member it is returned as-is; ties go to the earlier element in hours order.
// Returns false when hours is empty.
//
// Distance is measured along the shift's unwrapped hour axis rather than the
// raw 24-hour dial, so a post-shift timestamp (23:10 against the day shift)
// snaps to the shift's closing hour instead of circling back to its start.
func NearestHour(h int, hours []int) (int, bool) {
	if len(hours) == 0 {
		return 0, false
	}
	// Unwrap the shift sequence past midnight: 22,23,0..5 becomes 22..29.
	start := hours[0]
	best := hours[0]
	bestDist := -1
	for _, candidate := range hours {
		unwrapped := candidate
		if unwrapped < start {
			unwrapped += 24
		}
		d := abs(h - unwrapped)
		if late := abs(h + 24 - unwrapped); late < d {
			d = late
		}
		if bestDist < 0 || d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
