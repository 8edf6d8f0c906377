package core

import (
	"testing"
	"time"
)

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		offset    int
		wantStart string
		wantEnd   string
	}{
		{
			name:      "january UTC",
			year:      2024,
			month:     0,
			wantStart: "2024-01-01T00:00:00.000Z",
			wantEnd:   "2024-01-31T23:59:59.999Z",
		},
		{
			name:      "february leap year UTC",
			year:      2024,
			month:     1,
			wantStart: "2024-02-01T00:00:00.000Z",
			wantEnd:   "2024-02-29T23:59:59.999Z",
		},
		{
			name:      "positive offset shifts boundaries by two hours",
			year:      2024,
			month:     5,
			offset:    120,
			wantStart: "2024-06-01T02:00:00.000Z",
			wantEnd:   "2024-07-01T01:59:59.999Z",
		},
		{
			name:      "negative offset",
			year:      2024,
			month:     5,
			offset:    -330,
			wantStart: "2024-05-31T18:30:00.000Z",
			wantEnd:   "2024-06-30T18:29:59.999Z",
		},
		{
			name:      "month 12 rolls into next year",
			year:      2023,
			month:     12,
			wantStart: "2024-01-01T00:00:00.000Z",
			wantEnd:   "2024-01-31T23:59:59.999Z",
		},
		{
			name:      "month -1 rolls into previous year",
			year:      2024,
			month:     -1,
			wantStart: "2023-12-01T00:00:00.000Z",
			wantEnd:   "2023-12-31T23:59:59.999Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthRange(tt.year, tt.month, tt.offset)
			if got.StartISO != tt.wantStart {
				t.Errorf("StartISO = %s, want %s", got.StartISO, tt.wantStart)
			}
			if got.EndISO != tt.wantEnd {
				t.Errorf("EndISO = %s, want %s", got.EndISO, tt.wantEnd)
			}
		})
	}
}

func TestMonthRangeAdjacency(t *testing.T) {
	// The end of every month is exactly 1ms before the start of the next,
	// for any fixed offset.
	for _, offset := range []int{0, 60, -480, 345} {
		for month := -1; month <= 12; month++ {
			cur := MonthRange(2024, month, offset)
			next := MonthRange(2024, month+1, offset)
			if got := next.Start.Sub(cur.End); got != time.Millisecond {
				t.Fatalf("offset %d month %d: gap = %v, want 1ms", offset, month, got)
			}
		}
	}
}

func TestRangeContains(t *testing.T) {
	r := MonthRange(2024, 0, 0)
	if !r.Contains(r.Start) || !r.Contains(r.End) {
		t.Error("range bounds must be inclusive")
	}
	if r.Contains(r.Start.Add(-time.Millisecond)) {
		t.Error("instant before start must be excluded")
	}
	if r.Contains(r.End.Add(time.Millisecond)) {
		t.Error("instant after end must be excluded")
	}
}
