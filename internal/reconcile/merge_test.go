package reconcile

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed
}

func TestMergeLastWriteWins(t *testing.T) {
	early := Record{
		ID:          "rec-early",
		SubmittedAt: mustTime(t, "2026-03-14 08:10"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","goodCriteria":"10 - 20","rejectCriteria":"< 5 / > 30","reading":"11","hourSlot":"8"}]`,
		},
	}
	late := Record{
		ID:          "rec-late",
		SubmittedAt: mustTime(t, "2026-03-14 09:05"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","goodCriteria":"10 - 20","rejectCriteria":"< 5 / > 30","reading":"12","hourSlot":"8"}]`,
		},
	}

	// Pass records out of submission order; the stable sort must fix it.
	rows, _ := Merge([]Record{late, early}, nil)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if got := rows[0].Hourly[8].Reading; got != "12" {
		t.Errorf("hour 8 reading = %q, want the later submission's \"12\"", got)
	}
}

func TestMergeMultipleFragmentsPerRecord(t *testing.T) {
	rec := Record{
		ID:          "rec-1",
		SubmittedAt: mustTime(t, "2026-03-14 07:00"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","reading":"11","hourSlot":"6"}]`,
			`[{"activityId":"a1","activityName":"Temperature","reading":"12","hourSlot":"7"},
			  {"activityId":"a2","activityName":"Pressure","reading":"4.2","hourSlot":"7"}]`,
		},
	}

	rows, _ := Merge([]Record{rec}, nil)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Hourly[6].Reading != "11" || rows[0].Hourly[7].Reading != "12" {
		t.Errorf("temperature row = %+v, want readings at hours 6 and 7", rows[0].Hourly)
	}
	if rows[1].ActivityName != "Pressure" || rows[1].Hourly[7].Reading != "4.2" {
		t.Errorf("pressure row = %+v", rows[1])
	}
}

func TestMergeSkipsMalformedFragmentsOnly(t *testing.T) {
	rec := Record{
		ID:          "rec-1",
		SubmittedAt: mustTime(t, "2026-03-14 07:00"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","reading":"11","hourSlot"`, // truncated save
			`not json at all`,
			`[{"activityId":"a1","activityName":"Temperature","reading":"12","hourSlot":"7"}]`,
		},
	}

	rows, _ := Merge([]Record{rec}, nil)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row from the surviving fragment, got %d", len(rows))
	}
	if rows[0].Hourly[7].Reading != "12" {
		t.Errorf("surviving fragment not merged: %+v", rows[0].Hourly)
	}
}

func TestMergeCriteriaCarriedFromFirstSight(t *testing.T) {
	first := Record{
		ID:          "rec-1",
		SubmittedAt: mustTime(t, "2026-03-14 07:00"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","goodCriteria":"10 - 20","rejectCriteria":"> 30","reading":"11","hourSlot":"7"}]`,
		},
	}
	second := Record{
		ID:          "rec-2",
		SubmittedAt: mustTime(t, "2026-03-14 08:00"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","goodCriteria":"0 - 99","reading":"12","hourSlot":"8"}]`,
		},
	}

	rows, _ := Merge([]Record{first, second}, nil)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].GoodCriteria != "10 - 20" || rows[0].RejectCriteria != "> 30" {
		t.Errorf("criteria = %q / %q, want the first sighting's values", rows[0].GoodCriteria, rows[0].RejectCriteria)
	}
}

func TestMergeEntryHintOutranksPinnedHour(t *testing.T) {
	rec := Record{
		ID:          "rec-1",
		SubmittedAt: mustTime(t, "2026-03-14 07:00"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","reading":"11","hourSlot":"9"},
			  {"activityId":"a2","activityName":"Pressure","reading":"4.0"}]`,
		},
	}

	rows, _ := Merge([]Record{rec}, map[string]int{"rec-1": 7})

	if rows[0].Hourly[9].Reading != "11" {
		t.Errorf("hinted entry landed at %+v, want hour 9", rows[0].Hourly)
	}
	if rows[1].Hourly[7].Reading != "4.0" {
		t.Errorf("unhinted entry landed at %+v, want the pinned hour 7", rows[1].Hourly)
	}
}

func TestMergeUnresolvableEntryExcluded(t *testing.T) {
	rec := Record{
		ID:          "rec-1",
		SubmittedAt: mustTime(t, "2026-03-14 07:00"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","reading":"11"}]`,
		},
	}

	// No entry hint and no pinned hour for the record.
	rows, _ := Merge([]Record{rec}, nil)

	if len(rows) != 1 {
		t.Fatalf("expected the row shell to exist, got %d rows", len(rows))
	}
	if len(rows[0].Hourly) != 0 {
		t.Errorf("unresolvable entry should carry no cells, got %+v", rows[0].Hourly)
	}
}

func TestMergeNumericJSONValues(t *testing.T) {
	rec := Record{
		ID:          "rec-1",
		SubmittedAt: mustTime(t, "2026-03-14 07:00"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","reading":12.5,"hourSlot":8}]`,
		},
	}

	rows, _ := Merge([]Record{rec}, nil)

	if rows[0].Hourly[8].Reading != "12.5" {
		t.Errorf("numeric reading = %+v, want \"12.5\" at hour 8", rows[0].Hourly)
	}
}

func TestMergeHalfHourlyReadings(t *testing.T) {
	rec := Record{
		ID:          "rec-1",
		SubmittedAt: mustTime(t, "2026-03-14 07:00"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Seal check","reading":"G","cadence":"half-hourly","timeSlot":"6:00-6:30"},
			  {"activityId":"a1","activityName":"Seal check","reading":"G","cadence":"half-hourly","timeSlot":"06:30 - 07:00"}]`,
		},
	}

	rows, _ := Merge([]Record{rec}, nil)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if _, ok := rows[0].HalfHourly["06:00 - 06:30"]; !ok {
		t.Errorf("missing canonical label 06:00 - 06:30: %+v", rows[0].HalfHourly)
	}
	if _, ok := rows[0].HalfHourly["06:30 - 07:00"]; !ok {
		t.Errorf("missing canonical label 06:30 - 07:00: %+v", rows[0].HalfHourly)
	}
}

func TestMergeActualTimes(t *testing.T) {
	rec := Record{
		ID:          "rec-1",
		SubmittedAt: mustTime(t, "2026-03-14 08:50"),
		SnapshotFragments: []string{
			`[{"activityId":"a1","activityName":"Temperature","reading":"11","hourSlot":"8","readingTime":"08:45"},
			  {"activityId":"a2","activityName":"Pressure","reading":"4.0","hourSlot":"8","readingTime":"2026-03-14 08:02:11"},
			  {"activityId":"a3","activityName":"Vibration","reading":"2.0","hourSlot":"8","readingTime":"08:45"}]`,
		},
	}

	_, actualTimes := Merge([]Record{rec}, nil)

	times := actualTimes[8]
	if len(times) != 2 {
		t.Fatalf("expected 2 distinct times for hour 8, got %v", times)
	}
	if times[0] != "08:02" || times[1] != "08:45" {
		t.Errorf("times = %v, want sorted [08:02 08:45]", times)
	}
}

func TestNormalizeHalfHourLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"6:00-6:30", "06:00 - 06:30", true},
		{"06:00 - 06:30", "06:00 - 06:30", true},
		{" 13:30 -14:00 ", "13:30 - 14:00", true},
		{"6:00", "", false},
		{"banana", "", false},
		{"", "", false},
		{"25:00-25:30", "", false},
	}

	for _, tt := range tests {
		got, ok := normalizeHalfHourLabel(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("normalizeHalfHourLabel(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
