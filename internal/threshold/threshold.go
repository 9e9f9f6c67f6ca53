// Package threshold classifies inspection readings against the good-range /
// reject-condition pair attached to each activity.
package threshold

import (
	"regexp"
	"strconv"
	"strings"
)

// Verdict is the three-way classification of a reading, plus indeterminate
// for readings that carry no usable value.
type Verdict string

const (
	Good           Verdict = "good"
	NeedsAttention Verdict = "needs_attention"
	Reject         Verdict = "reject"
	Indeterminate  Verdict = "indeterminate"
)

var (
	// Leading numeric token; trailing units ("%", "mm", "bar") are ignored.
	numberPattern = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?`)
	// One side of a compound reject criterion, e.g. ">= 30".
	conditionPattern = regexp.MustCompile(`^(<=|>=|<|>)\s*([-+]?\d+(?:\.\d+)?)$`)
	// Inclusive good range, e.g. "10 - 20".
	rangePattern = regexp.MustCompile(`^([-+]?\d+(?:\.\d+)?)\s*-\s*([-+]?\d+(?:\.\d+)?)$`)
)

var literalVerdicts = map[string]Verdict{
	"G":      Good,
	"N":      NeedsAttention,
	"R":      Reject,
	"OK":     Good,
	"GOOD":   Good,
	"PASS":   Good,
	"BAD":    Reject,
	"FAIL":   Reject,
	"NOT OK": Reject,
	"NG":     Reject,
}

// Classify evaluates a raw reading against its criteria strings.
//
// Rules in order: empty/placeholder readings are indeterminate; literal
// letter and word readings map directly; everything else is parsed as a
// number and checked against the reject conditions first (reject wins when
// both would match), then the good range, and lands on needs-attention when
// neither matches. Malformed criteria are treated as absent, never as
// errors.
func Classify(reading, goodCriteria, rejectCriteria string) Verdict {
	trimmed := strings.TrimSpace(reading)
	if trimmed == "" || trimmed == "-" {
		return Indeterminate
	}

	if verdict, ok := literalVerdicts[strings.ToUpper(trimmed)]; ok {
		return verdict
	}

	value, ok := parseNumber(trimmed)
	if !ok {
		return Indeterminate
	}

	if matchesReject(value, rejectCriteria) {
		return Reject
	}
	if min, max, ok := parseRange(goodCriteria); ok && value >= min && value <= max {
		return Good
	}
	return NeedsAttention
}

// parseNumber extracts the leading numeric token from a reading like
// "12", " 45% " or "12.5 mm".
func parseNumber(s string) (float64, bool) {
	token := numberPattern.FindString(strings.TrimSpace(s))
	if token == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// matchesReject reports whether any side of a slash-separated compound
// condition ("< 5 / > 30") holds for the value. Malformed sides are skipped.
func matchesReject(value float64, criteria string) bool {
	for _, part := range strings.Split(criteria, "/") {
		match := conditionPattern.FindStringSubmatch(strings.TrimSpace(part))
		if match == nil {
			continue
		}
		threshold, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			continue
		}
		switch match[1] {
		case "<":
			if value < threshold {
				return true
			}
		case ">":
			if value > threshold {
				return true
			}
		case "<=":
			if value <= threshold {
				return true
			}
		case ">=":
			if value >= threshold {
				return true
			}
		}
	}
	return false
}

// parseRange parses an inclusive "min - max" band. Reversed bounds are
// normalized rather than rejected.
func parseRange(criteria string) (float64, float64, bool) {
	match := rangePattern.FindStringSubmatch(strings.TrimSpace(criteria))
	if match == nil {
		return 0, 0, false
	}
	min, errMin := strconv.ParseFloat(match[1], 64)
	max, errMax := strconv.ParseFloat(match[2], 64)
	if errMin != nil || errMax != nil {
		return 0, 0, false
	}
	if min > max {
		min, max = max, min
	}
	return min, max, true
}
