package reconcile

import (
	"context"
	"errors"
	"testing"

	"floorcheck/api/internal/ledger"
	"floorcheck/api/internal/shift"
	"floorcheck/api/internal/threshold"
)

type fakeSource struct {
	records []Record
	err     error
}

func (f *fakeSource) ListRecords(ctx context.Context, scope Scope) ([]Record, error) {
	return f.records, f.err
}

func testScope() Scope {
	return Scope{
		ProcessOrder: "po-4711",
		Plant:        "plant-a",
		Line:         "line-2",
		Machine:      "filler-7",
		Shift:        shift.Shift1,
		Date:         "2026-03-14",
	}
}

// Three day-shift records: one explicitly hinting hour 8, one relying on an
// in-shift submission timestamp, one submitted at 23:10 whose timestamp is
// outside the shift window and must snap to the nearest shift hour.
func scenarioRecords(t *testing.T) []Record {
	t.Helper()
	return []Record{
		{
			ID:          "rec-hinted",
			SubmittedBy: "operator-1",
			SubmittedAt: mustTime(t, "2026-03-14 09:05"),
			Shift:       shift.Shift1,
			SnapshotFragments: []string{
				`[{"activityId":"a1","activityName":"Fill temperature","goodCriteria":"10 - 20","rejectCriteria":"< 5 / > 30","reading":"12","hourSlot":"8","readingTime":"08:02"}]`,
			},
		},
		{
			ID:          "rec-timestamped",
			SubmittedBy: "operator-2",
			SubmittedAt: mustTime(t, "2026-03-14 08:45"),
			Shift:       shift.Shift1,
			SnapshotFragments: []string{
				`[{"activityId":"a2","activityName":"Belt speed","goodCriteria":"40 - 60","rejectCriteria":"> 80","reading":"52","readingTime":"08:45"}]`,
			},
		},
		{
			ID:          "rec-night-owl",
			SubmittedBy: "operator-1",
			SubmittedAt: mustTime(t, "2026-03-14 23:10"),
			Shift:       shift.Shift1,
			SnapshotFragments: []string{
				`[{"activityId":"a1","activityName":"Fill temperature","goodCriteria":"10 - 20","rejectCriteria":"< 5 / > 30","reading":"25","readingTime":"23:10"}]`,
			},
		},
	}
}

func TestReconcileEndToEnd(t *testing.T) {
	ctx := context.Background()
	locks := ledger.NewMemoryStore()
	svc := New(&fakeSource{records: scenarioRecords(t)}, locks)

	grid, err := svc.Reconcile(ctx, testScope())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if grid.Shift != shift.Shift1 {
		t.Errorf("grid shift = %q", grid.Shift)
	}
	if len(grid.Hours) != 9 || grid.Hours[len(grid.Hours)-1] != 14 {
		t.Errorf("grid hours = %v, want 9 labels ending at 14", grid.Hours)
	}
	if len(grid.Rows) != 2 {
		t.Fatalf("expected 2 activity rows, got %d", len(grid.Rows))
	}

	// Rows appear in first-sight order of the time-sorted record stream, so
	// the 08:45 submission's activity comes first.
	belt := grid.Rows[0]
	if belt.ActivityName != "Belt speed" {
		t.Fatalf("unexpected first row: %+v", belt)
	}
	temperature := grid.Rows[1]
	if temperature.ActivityName != "Fill temperature" {
		t.Fatalf("unexpected second row: %+v", temperature)
	}

	// The hinted record pins hour 8 with a good reading.
	cell := temperature.Hourly[8]
	if cell.Reading != "12" || cell.Verdict != threshold.Good {
		t.Errorf("hour 8 cell = %+v, want reading 12 / good", cell)
	}

	// The 23:10 record has no hints; its timestamp is outside the shift and
	// snaps to hour 13, the shift's closing hour. 25 sits above the good
	// band but below the reject threshold.
	cell = temperature.Hourly[13]
	if cell.Reading != "25" || cell.Verdict != threshold.NeedsAttention {
		t.Errorf("hour 13 cell = %+v, want reading 25 / needs_attention", cell)
	}

	// The in-shift timestamp record lands on its own hour.
	cell = belt.Hourly[8]
	if cell.Reading != "52" || cell.Verdict != threshold.Good {
		t.Errorf("belt hour 8 cell = %+v, want reading 52 / good", cell)
	}

	// Actual-time chips: 08:45 on its own slot is on time, 23:10 on the
	// hour-13 slot is late.
	chips := grid.ActualTimes[8]
	foundOnTime := false
	for _, chip := range chips {
		if chip.Time == "08:45" && !chip.Late {
			foundOnTime = true
		}
	}
	if !foundOnTime {
		t.Errorf("expected an on-time 08:45 chip at hour 8, got %v", chips)
	}

	chips = grid.ActualTimes[13]
	if len(chips) != 1 || chips[0].Time != "23:10" || !chips[0].Late {
		t.Errorf("expected a late 23:10 chip at hour 13, got %v", chips)
	}
}

func TestReconcileSlotAssignmentsSurviveHintChanges(t *testing.T) {
	ctx := context.Background()
	locks := ledger.NewMemoryStore()
	source := &fakeSource{records: scenarioRecords(t)}
	svc := New(source, locks)
	scope := testScope()

	if _, err := svc.Reconcile(ctx, scope); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	before, _ := locks.Get(ctx, scope.Key())

	// Shift the night owl's submission timestamp to a plausible in-shift
	// hour and reprocess. Its locked slot must not move.
	source.records[2].SubmittedAt = mustTime(t, "2026-03-14 06:30")
	if _, err := svc.Reconcile(ctx, scope); err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	after, _ := locks.Get(ctx, scope.Key())

	if len(before) != len(after) {
		t.Fatalf("ledger size changed: %v -> %v", before, after)
	}
	if after["rec-night-owl"] != 13 {
		t.Errorf("locked hour = %d after timestamp change, want 13", after["rec-night-owl"])
	}

	grid, err := svc.Reconcile(ctx, scope)
	if err != nil {
		t.Fatalf("third pass failed: %v", err)
	}
	var temperature *Row
	for i := range grid.Rows {
		if grid.Rows[i].ActivityName == "Fill temperature" {
			temperature = &grid.Rows[i]
		}
	}
	if temperature == nil {
		t.Fatal("temperature row missing")
	}
	if temperature.Hourly[13].Reading != "25" {
		t.Errorf("grid cell moved after hint change: %+v", temperature.Hourly)
	}
}

func TestReconcileUnknownShiftYieldsEmptyGrid(t *testing.T) {
	svc := New(&fakeSource{records: scenarioRecords(t)}, ledger.NewMemoryStore())
	scope := testScope()
	scope.Shift = "Shift 9"

	grid, err := svc.Reconcile(context.Background(), scope)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(grid.Rows) != 0 || len(grid.Hours) != 0 {
		t.Errorf("expected an empty grid for an unknown shift, got %+v", grid)
	}
}

func TestReconcileSourceErrorSurfaces(t *testing.T) {
	svc := New(&fakeSource{err: errors.New("backend down")}, ledger.NewMemoryStore())

	_, err := svc.Reconcile(context.Background(), testScope())
	if err == nil {
		t.Fatal("expected an error when the record source fails")
	}
}

func TestReconcileLateThresholdOverride(t *testing.T) {
	records := []Record{
		{
			ID:          "rec-1",
			SubmittedAt: mustTime(t, "2026-03-14 09:05"),
			SnapshotFragments: []string{
				`[{"activityId":"a1","activityName":"Fill temperature","reading":"12","hourSlot":"8","readingTime":"09:05"}]`,
			},
		},
	}
	svc := New(&fakeSource{records: records}, ledger.NewMemoryStore(), WithLateThreshold(2))

	grid, err := svc.Reconcile(context.Background(), testScope())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	chips := grid.ActualTimes[8]
	if len(chips) != 1 {
		t.Fatalf("expected 1 chip, got %v", chips)
	}
	// 09:05 is one hour off slot 8: late at the default threshold, on time
	// with the threshold raised to two hours.
	if chips[0].Late {
		t.Errorf("chip %v flagged late despite the raised threshold", chips[0])
	}
}
