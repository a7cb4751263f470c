package timewindow

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateScan(t *testing.T) {
	want := Date{2026, time.March, 9}

	for _, src := range []any{"2026-03-09", []byte("2026-03-09"), time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)} {
		var d Date
		if err := d.Scan(src); err != nil {
			t.Fatalf("Scan(%T): %v", src, err)
		}
		if d != want {
			t.Errorf("Scan(%T) = %s, want %s", src, d, want)
		}
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning an int")
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	if err := json.Unmarshal([]byte(`{"date":"2026-02-28"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if next := payload.Date.AddDays(1); next.String() != "2026-03-01" {
		t.Errorf("AddDays(1) = %s", next)
	}

	if err := json.Unmarshal([]byte(`{"date":"28/02/2026"}`), &payload); err == nil {
		t.Error("expected error for malformed date")
	}
}
