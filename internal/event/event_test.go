package event

import (
	"fmt"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandSingleDay(t *testing.T) {
	ev := ExternalEvent{
		Name:      "Spring Show",
		SourceURL: "https://example.org/events/spring-show",
		StartDate: day(2025, time.March, 15),
		EndDate:   day(2025, time.March, 15),
	}

	instances := ev.Expand()
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	if instances[0].Name != "Spring Show" {
		t.Errorf("single-day name = %q, want unchanged %q", instances[0].Name, "Spring Show")
	}
	if got := instances[0].DateText(); got != "15/03/2025" {
		t.Errorf("date text = %q, want %q", got, "15/03/2025")
	}
}

func TestExpandThreeDayEvent(t *testing.T) {
	ev := ExternalEvent{
		Name:      "State Dressage Finals",
		SourceURL: "https://example.org/events/finals",
		StartDate: day(2025, time.November, 1),
		EndDate:   day(2025, time.November, 3),
	}

	instances := ev.Expand()
	if len(instances) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(instances))
	}

	wantDates := []string{"01/11/2025", "02/11/2025", "03/11/2025"}
	for i, inst := range instances {
		wantName := fmt.Sprintf("State Dressage Finals (Day %d/3)", i+1)
		if inst.Name != wantName {
			t.Errorf("instance %d name = %q, want %q", i, inst.Name, wantName)
		}
		if got := inst.DateText(); got != wantDates[i] {
			t.Errorf("instance %d date = %q, want %q", i, got, wantDates[i])
		}
	}
}

func TestExpandInstanceCount(t *testing.T) {
	for _, span := range []int{0, 1, 2, 6, 13} {
		t.Run(fmt.Sprintf("span_%d", span), func(t *testing.T) {
			ev := ExternalEvent{
				Name:      "Event",
				SourceURL: "https://example.org/e",
				StartDate: day(2025, time.May, 1),
				EndDate:   day(2025, time.May, 1+span),
			}
			if got := len(ev.Expand()); got != span+1 {
				t.Errorf("span of %d days expanded to %d instances, want %d", span, got, span+1)
			}
		})
	}
}

func TestExpandCarriesDetailFields(t *testing.T) {
	ev := ExternalEvent{
		Name:        "Winter Championship",
		SourceURL:   "https://example.org/events/winter",
		StartDate:   day(2026, time.July, 4),
		EndDate:     day(2026, time.July, 5),
		Discipline:  "Show Jumping",
		Location:    "Regional Showgrounds",
		Tier:        TierChampionship,
		Description: "Two days of jumping.",
	}

	for _, inst := range ev.Expand() {
		if inst.Discipline != ev.Discipline || inst.Location != ev.Location ||
			inst.Tier != ev.Tier || inst.Description != ev.Description {
			t.Errorf("instance %q lost detail fields: %+v", inst.Name, inst)
		}
		if inst.SourceURL != ev.SourceURL {
			t.Errorf("instance %q source URL = %q", inst.Name, inst.SourceURL)
		}
	}
}

func TestExpandKeysAreUnique(t *testing.T) {
	ev := ExternalEvent{
		Name:      "Long Event",
		SourceURL: "https://example.org/events/long",
		StartDate: day(2025, time.January, 1),
		EndDate:   day(2025, time.January, 10),
	}

	seen := make(map[string]bool)
	for _, inst := range ev.Expand() {
		key := inst.Key()
		if seen[key] {
			t.Errorf("duplicate key %q", key)
		}
		seen[key] = true
	}
}

func TestInferTier(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"National Jumping Finals", TierNational},
		{"State Dressage Cup", TierState},
		{"Winter Championship", TierChampionship},
		{"Spring Show", TierShow},
		{"Club Rally", ""},
		{"STATE SHOW", TierState},
		// "national" outranks "state" even when it appears later in the name.
		{"Interstate National Series", TierNational},
		// "state" outranks "show" for the same reason.
		{"State Showjumping Day", TierState},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferTier(tt.name); got != tt.want {
				t.Errorf("InferTier(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
