package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"floorcheck/api/internal/ledger"
	"floorcheck/api/internal/shift"
	"floorcheck/api/internal/threshold"
)

// DefaultLateThresholdHours is how far an actual-time chip may drift from
// its nominal slot hour before the report flags it late. The one-hour value
// is a fixed heuristic inherited from the paper process; it is kept as a
// named, overridable setting rather than re-derived.
const DefaultLateThresholdHours = 1

// RecordSource fetches the raw submission records for a scope. The backend
// store implements it in production; tests inject an in-memory fake.
type RecordSource interface {
	ListRecords(ctx context.Context, scope Scope) ([]Record, error)
}

// Service is the reconciliation façade and the only entry point external
// callers should use.
type Service struct {
	records       RecordSource
	locks         ledger.Store
	lateThreshold int
}

// Option configures a Service.
type Option func(*Service)

// WithLateThreshold overrides DefaultLateThresholdHours.
func WithLateThreshold(hours int) Option {
	return func(s *Service) {
		if hours > 0 {
			s.lateThreshold = hours
		}
	}
}

func New(records RecordSource, locks ledger.Store, opts ...Option) *Service {
	s := &Service{
		records:       records,
		locks:         locks,
		lateThreshold: DefaultLateThresholdHours,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile produces the report-ready grid for one scope: fetch raw records,
// pin each record's hour through the write-once ledger, merge every snapshot
// fragment into the activity timeline, then classify every cell.
//
// A pass always yields a (possibly partial) grid; bad fragments, unresolvable
// records and a broken ledger all degrade locally instead of failing the
// report.
func (s *Service) Reconcile(ctx context.Context, scope Scope) (Grid, error) {
	hours := shift.Hours(scope.Shift)
	grid := Grid{
		Shift:       scope.Shift,
		Hours:       shift.LabelHours(scope.Shift),
		Rows:        []Row{},
		ActualTimes: map[int][]TimeChip{},
	}
	if len(hours) == 0 {
		// Unknown shift name: no window, no data.
		return grid, nil
	}

	records, err := s.records.ListRecords(ctx, scope)
	if err != nil {
		return grid, fmt.Errorf("list records for scope %s: %w", scope.Key(), err)
	}

	pinned := EnsureLocked(ctx, s.locks, scope.Key(), records, hours)
	rows, actualTimes := Merge(records, pinned)

	for i := range rows {
		classifyRow(&rows[i])
	}
	grid.Rows = rows

	for hour, times := range actualTimes {
		chips := make([]TimeChip, 0, len(times))
		for _, stamp := range times {
			chips = append(chips, TimeChip{
				Time: stamp,
				Late: s.isLate(stamp, hour),
			})
		}
		grid.ActualTimes[hour] = chips
	}

	return grid, nil
}

// classifyRow runs the threshold evaluator over every cell of a row.
func classifyRow(row *Row) {
	for hour, cell := range row.Hourly {
		cell.Verdict = threshold.Classify(cell.Reading, row.GoodCriteria, row.RejectCriteria)
		row.Hourly[hour] = cell
	}
	for label, cell := range row.HalfHourly {
		cell.Verdict = threshold.Classify(cell.Reading, row.GoodCriteria, row.RejectCriteria)
		row.HalfHourly[label] = cell
	}
}

// isLate reports whether a chip's own clock hour drifts from the nominal
// slot hour by at least the late threshold.
func (s *Service) isLate(stamp string, slotHour int) bool {
	sep := strings.IndexByte(stamp, ':')
	if sep <= 0 {
		return false
	}
	chipHour, err := strconv.Atoi(stamp[:sep])
	if err != nil {
		return false
	}
	return shift.CircularDistance(chipHour, slotHour) >= s.lateThreshold
}
