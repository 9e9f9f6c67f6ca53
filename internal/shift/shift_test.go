package shift

import "testing"

func TestHours(t *testing.T) {
	tests := []struct {
		name  string
		shift string
		want  []int
	}{
		{"day shift", Shift1, []int{6, 7, 8, 9, 10, 11, 12, 13}},
		{"evening shift", Shift2, []int{14, 15, 16, 17, 18, 19, 20, 21}},
		{"night shift wraps midnight", Shift3, []int{22, 23, 0, 1, 2, 3, 4, 5}},
		{"unknown shift", "Shift 4", nil},
		{"empty name", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hours(tt.shift)
			if len(got) != len(tt.want) {
				t.Fatalf("Hours(%q) = %v, want %v", tt.shift, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Hours(%q) = %v, want %v", tt.shift, got, tt.want)
				}
			}
		})
	}
}

func TestNightShiftContainsWrappedHours(t *testing.T) {
	hours := Hours(Shift3)
	has := map[int]bool{}
	for _, h := range hours {
		has[h] = true
	}
	if !has[23] || !has[1] {
		t.Errorf("night shift must contain both 23 and 1, got %v", hours)
	}
}

func TestLabelHours(t *testing.T) {
	tests := []struct {
		shift    string
		wantLen  int
		wantLast int
	}{
		{Shift1, 9, 14},
		{Shift2, 9, 22},
		{Shift3, 9, 6},
	}

	for _, tt := range tests {
		got := LabelHours(tt.shift)
		if len(got) != tt.wantLen {
			t.Errorf("LabelHours(%q) has %d labels, want %d", tt.shift, len(got), tt.wantLen)
			continue
		}
		if got[len(got)-1] != tt.wantLast {
			t.Errorf("LabelHours(%q) last label = %d, want %d", tt.shift, got[len(got)-1], tt.wantLast)
		}
	}

	if LabelHours("nope") != nil {
		t.Error("expected nil label hours for unknown shift")
	}
}

func TestCircularDistance(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{23, 1, 2},
		{1, 23, 2},
		{0, 12, 12},
		{6, 6, 0},
		{5, 6, 1},
		{23, 13, 10},
		{23, 14, 9},
	}

	for _, tt := range tests {
		if got := CircularDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("CircularDistance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNearestHour(t *testing.T) {
	day := Hours(Shift1)

	tests := []struct {
		name  string
		h     int
		hours []int
		want  int
	}{
		{"just before shift start", 5, day, 6},
		{"member returned unchanged", 9, day, 9},
		{"late timestamp snaps to latest hour", 23, day, 13},
		{"wraps toward night shift", 21, Hours(Shift3), 22},
		{"tie broken by shift order", 2, []int{0, 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NearestHour(tt.h, tt.hours)
			if !ok {
				t.Fatalf("NearestHour(%d, %v) reported no candidates", tt.h, tt.hours)
			}
			if got != tt.want {
				t.Errorf("NearestHour(%d, %v) = %d, want %d", tt.h, tt.hours, got, tt.want)
			}
		})
	}

	if _, ok := NearestHour(7, nil); ok {
		t.Error("expected no result for empty hour list")
	}
}
