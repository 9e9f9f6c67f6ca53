package store

import "time"

// Submission is one raw operator submission as stored. Rows are append-only:
// a submission is never edited after receipt; later submissions supersede
// earlier ones during reconciliation, not by mutating history.
type Submission struct {
	ID           string
	SubmittedBy  string
	SubmittedAt  time.Time
	Shift        string
	Plant        string
	Line         string
	Machine      string
	ProcessOrder string
	ReportDate   string // YYYY-MM-DD; night shifts are filed under their start date
	HourHint     string
	// Fragments holds the serialized inspection-entry arrays the client
	// sent, one element per partial save.
	Fragments []string
	CreatedAt time.Time
}

// SubmissionFilter selects the submissions of one reporting scope.
type SubmissionFilter struct {
	ProcessOrder string
	Plant        string
	Line         string
	Machine      string
	Shift        string
	ReportDate   string
}
