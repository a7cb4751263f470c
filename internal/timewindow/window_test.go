package timewindow

import (
	"slices"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestWeekWindow(t *testing.T) {
	w := New(DefaultOffset)

	tests := []struct {
		name       string
		now        time.Time
		offset     int
		start, end string
	}{
		{"midweek", time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), 0, "2026-10-12", "2026-10-18"},
		{"monday before boundary is still last sunday", time.Date(2026, 10, 12, 2, 0, 0, 0, time.UTC), 0, "2026-10-05", "2026-10-11"},
		{"monday at boundary", time.Date(2026, 10, 12, 4, 0, 0, 0, time.UTC), 0, "2026-10-12", "2026-10-18"},
		{"sunday late evening", time.Date(2026, 10, 19, 3, 59, 0, 0, time.UTC), 0, "2026-10-12", "2026-10-18"},
		{"next week", time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), 1, "2026-10-19", "2026-10-25"},
		{"previous week", time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), -1, "2026-10-05", "2026-10-11"},
		{"across year end", time.Date(2026, 12, 31, 12, 0, 0, 0, time.UTC), 0, "2026-12-28", "2027-01-03"},
		{"non-utc input is normalized", time.Date(2026, 10, 14, 1, 0, 0, 0, time.FixedZone("X", 9*3600)), 0, "2026-10-12", "2026-10-18"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := w.WeekWindow(tt.now, tt.offset)
			if start != mustDate(t, tt.start) {
				t.Errorf("start = %s, want %s", start, tt.start)
			}
			if end != mustDate(t, tt.end) {
				t.Errorf("end = %s, want %s", end, tt.end)
			}
		})
	}
}

func TestWeekWindowTiles(t *testing.T) {
	w := New(DefaultOffset)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for h := 0; h < 24*400; h += 7 {
		now := base.Add(time.Duration(h) * time.Hour)
		today := w.DayBucketKey(now)

		start0, end0 := w.WeekWindow(now, 0)
		if !Contains(start0, end0, today) {
			t.Fatalf("week of %s (%s..%s) does not contain today %s", now, start0, end0, today)
		}

		for k := -3; k <= 3; k++ {
			start, end := w.WeekWindow(now, k)
			if start.Weekday() != time.Monday {
				t.Fatalf("start %s is %s, want Monday", start, start.Weekday())
			}
			if end.Weekday() != time.Sunday || end != start.AddDays(6) {
				t.Fatalf("end %s does not close the week starting %s", end, start)
			}
			next, _ := w.WeekWindow(now, k+1)
			if next != end.AddDays(1) {
				t.Fatalf("week %d ends %s but week %d starts %s", k, end, k+1, next)
			}
		}
	}
}

func TestDayBucketKey(t *testing.T) {
	w := New(DefaultOffset)

	if got := w.DayBucketKey(time.Date(2026, 10, 15, 3, 59, 59, 0, time.UTC)); got != mustDate(t, "2026-10-14") {
		t.Errorf("03:59 UTC bucketed to %s, want 2026-10-14", got)
	}
	if got := w.DayBucketKey(time.Date(2026, 10, 15, 4, 0, 0, 0, time.UTC)); got != mustDate(t, "2026-10-15") {
		t.Errorf("04:00 UTC bucketed to %s, want 2026-10-15", got)
	}

	zero := New(0)
	if got := zero.Today(time.Date(2026, 10, 15, 0, 30, 0, 0, time.UTC)); got != mustDate(t, "2026-10-15") {
		t.Errorf("zero offset today = %s", got)
	}
}

type entry struct {
	day  Date
	slot int
	seq  uint64
}

func (e entry) ScheduledDay() Date   { return e.day }
func (e entry) Slot() (int, bool)    { return e.slot, e.slot > 0 }
func (e entry) InsertionSeq() uint64 { return e.seq }

func TestCompareSameDay(t *testing.T) {
	day := Date{2026, time.October, 14}
	items := []entry{
		{day, 0, 1},
		{day, 3, 2},
		{day, 0, 3},
		{day, 1, 4},
		{day, 3, 5},
		{day, 5, 6},
	}

	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b entry) int { return Compare(a, b) })

	want := []uint64{4, 2, 5, 6, 1, 3}
	for i, e := range sorted {
		if e.seq != want[i] {
			t.Fatalf("position %d: got seq %d, want %d (order %v)", i, e.seq, want[i], sorted)
		}
	}

	seenUnslotted := false
	for _, e := range sorted {
		if _, ok := e.Slot(); !ok {
			seenUnslotted = true
		} else if seenUnslotted {
			t.Fatal("slotted entry sorted after an unslotted one")
		}
	}
}

func TestCompareIsConsistent(t *testing.T) {
	day := Date{2026, time.October, 14}
	var items []entry
	seq := uint64(0)
	for slot := 0; slot <= 5; slot++ {
		for n := 0; n < 3; n++ {
			seq++
			items = append(items, entry{day, slot, seq})
		}
	}

	for _, a := range items {
		if Compare(a, a) != 0 {
			t.Fatalf("Compare(a, a) != 0 for %v", a)
		}
		for _, b := range items {
			if Compare(a, b) != -Compare(b, a) {
				t.Fatalf("Compare not antisymmetric for %v, %v", a, b)
			}
			for _, c := range items {
				if Compare(a, b) < 0 && Compare(b, c) < 0 && Compare(a, c) >= 0 {
					t.Fatalf("Compare not transitive for %v, %v, %v", a, b, c)
				}
			}
		}
	}
}

func TestCompareAcrossDays(t *testing.T) {
	mon := Date{2026, time.October, 12}
	tue := Date{2026, time.October, 13}
	items := []entry{
		{tue, 0, 1},
		{mon, 0, 2},
		{tue, 2, 3},
		{mon, 1, 4},
	}

	upcoming := slices.Clone(items)
	slices.SortFunc(upcoming, func(a, b entry) int { return CompareUpcoming(a, b) })
	if got := seqs(upcoming); !slices.Equal(got, []uint64{4, 2, 3, 1}) {
		t.Errorf("upcoming order = %v", got)
	}

	history := slices.Clone(items)
	slices.SortFunc(history, func(a, b entry) int { return CompareHistory(a, b) })
	if got := seqs(history); !slices.Equal(got, []uint64{3, 1, 4, 2}) {
		t.Errorf("history order = %v", got)
	}
}

func seqs(items []entry) []uint64 {
	out := make([]uint64, len(items))
	for i, e := range items {
		out[i] = e.seq
	}
	return out
}
