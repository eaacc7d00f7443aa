package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseDayRoundTrip(t *testing.T) {
	days := []string{
		"01/01/2024",
		"15/03/2025",
		"09/09/2025",
		"31/12/2026",
		"29/02/2024",
	}

	for _, s := range days {
		t.Run(s, func(t *testing.T) {
			d, err := ParseDay(s)
			if err != nil {
				t.Fatalf("ParseDay(%q) failed: %v", s, err)
			}
			if got := FormatDay(d); got != s {
				t.Errorf("FormatDay(ParseDay(%q)) = %q, want %q", s, got, s)
			}
		})
	}
}

func TestParseDayAcceptsUnpaddedSegments(t *testing.T) {
	d, err := ParseDay("5/3/2025")
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	if got := FormatDay(d); got != "05/03/2025" {
		t.Errorf("FormatDay = %q, want %q", got, "05/03/2025")
	}
}

func TestParseDayNormalizesToUTCMidnight(t *testing.T) {
	d, err := ParseDay("15/03/2025")
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	want := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("ParseDay = %v, want %v", d, want)
	}
}

func TestParseDayRejectsMalformed(t *testing.T) {
	malformed := []string{
		"",
		"2025-03-15",
		"15/03",
		"15/03/25",
		"aa/bb/cccc",
		"32/01/2025",
		"15/13/2025",
		"15.03.2025",
	}

	for _, s := range malformed {
		t.Run(s, func(t *testing.T) {
			_, err := ParseDay(s)
			if err == nil {
				t.Fatalf("ParseDay(%q) succeeded, want error", s)
			}
			var merr *MalformedDateError
			if !errors.As(err, &merr) {
				t.Errorf("ParseDay(%q) error = %T, want *MalformedDateError", s, err)
			}
		})
	}
}

func TestDaysEnumeratesInclusiveRange(t *testing.T) {
	start := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)

	var got []string
	for d := range Days(start, end) {
		got = append(got, FormatDay(d))
	}

	want := []string{"01/11/2025", "02/11/2025", "03/11/2025"}
	if len(got) != len(want) {
		t.Fatalf("got %d days, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDaysSingleDay(t *testing.T) {
	day := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	count := 0
	for range Days(day, day) {
		count++
	}
	if count != 1 {
		t.Errorf("expected 1 day, got %d", count)
	}
}

func TestDaysReversedRangeYieldsStart(t *testing.T) {
	start := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	var got []time.Time
	for d := range Days(start, end) {
		got = append(got, d)
	}
	if len(got) != 1 {
		t.Fatalf("expected single element, got %d", len(got))
	}
	if !got[0].Equal(start) {
		t.Errorf("expected start %v, got %v", start, got[0])
	}
}

func TestDaysIsRestartable(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	seq := Days(start, end)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	if first != 5 || second != 5 {
		t.Errorf("expected 5 days on both passes, got %d then %d", first, second)
	}
}

func TestDaysStopsOnBreak(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)

	count := 0
	for range Days(start, end) {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("expected to stop after 3 days, got %d", count)
	}
}
