// Package reconcile reduces independently-submitted inspection snapshots for
// one shift into a canonical per-activity timeline, pinning each record's
// time slot through a write-once ledger so a reviewed report never reshuffles.
package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"floorcheck/api/internal/threshold"
)

// Scope identifies one reporting context. All records sharing a scope fold
// into the same shift grid and share one ledger entry.
type Scope struct {
	ProcessOrder string
	Plant        string
	Line         string
	Machine      string
	Shift        string
	Date         string // YYYY-MM-DD; night shifts belong to their start date
}

// Key renders the scope as the ledger key.
func (s Scope) Key() string {
	return strings.Join([]string{s.ProcessOrder, s.Plant, s.Line, s.Machine, s.Shift, s.Date}, "|")
}

// Record is one raw operator submission. Immutable once received: later
// records supersede earlier ones through the merge step only.
type Record struct {
	ID           string
	SubmittedBy  string
	SubmittedAt  time.Time
	Shift        string
	Plant        string
	Line         string
	Machine      string
	ProcessOrder string
	// HourHint is the record-level slot hint, e.g. "7", "07:00" or "6-7".
	HourHint string
	// SnapshotFragments holds the serialized entry arrays the record carries.
	// Successive partial saves of one submission each contribute a fragment.
	SnapshotFragments []string
}

// Key is the record's stable identity: the explicit ID when present, else a
// composite of submitter and submission timestamp.
func (r Record) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("%s@%d", r.SubmittedBy, r.SubmittedAt.Unix())
}

// Entry is one activity reading inside a snapshot fragment. Submitting
// clients are loose about types, so readings and slot hints accept either
// JSON strings or numbers.
type Entry struct {
	ActivityID     string     `json:"activityId"`
	ActivityName   string     `json:"activityName"`
	GoodCriteria   string     `json:"goodCriteria"`
	RejectCriteria string     `json:"rejectCriteria"`
	Reading        FlexString `json:"reading"`
	ReadingTime    string     `json:"readingTime"`
	Cadence        string     `json:"cadence"`
	HourSlot       FlexString `json:"hourSlot"`
	TimeSlot       FlexString `json:"timeSlot"`
	Hour           FlexString `json:"hour"`
	SubmittedBy    string     `json:"submittedBy"`
}

// halfHourly reports whether the entry belongs to the half-hourly cadence.
func (e Entry) halfHourly() bool {
	cadence := strings.ToLower(strings.TrimSpace(e.Cadence))
	return cadence == "half-hourly" || cadence == "halfhourly" || cadence == "30min"
}

// FlexString decodes a JSON string, number or null into a plain string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	return fmt.Errorf("value %s is neither string nor number", data)
}

func (f FlexString) String() string {
	return string(f)
}

// Cell is one classified reading in the timeline grid.
type Cell struct {
	Reading string            `json:"reading"`
	Verdict threshold.Verdict `json:"verdict"`
}

// Row is the derived timeline of one activity: criteria carried from the
// first sighting plus the hourly and half-hourly reading maps. Rebuilt fresh
// on every reconciliation run, never persisted.
type Row struct {
	ActivityID     string          `json:"activityId"`
	ActivityName   string          `json:"activityName"`
	GoodCriteria   string          `json:"goodCriteria"`
	RejectCriteria string          `json:"rejectCriteria"`
	Hourly         map[int]Cell    `json:"hourly"`
	HalfHourly     map[string]Cell `json:"halfHourly"`
}

// TimeChip is one actual submission time rendered under an hour column.
type TimeChip struct {
	Time string `json:"time"` // HH:mm
	Late bool   `json:"late"`
}

// Grid is the report-ready output of a reconciliation pass.
type Grid struct {
	Shift       string             `json:"shift"`
	Hours       []int              `json:"hours"` // report column labels
	Rows        []Row              `json:"rows"`
	ActualTimes map[int][]TimeChip `json:"actualTimes"`
}
