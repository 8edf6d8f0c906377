package core

import "time"

// ISOMillis serializes instants the way storage queries expect their range
// bounds: UTC with millisecond precision. Lexicographic order on strings in
// this layout matches chronological order, so they work as SQL range bounds.
const ISOMillis = "2006-01-02T15:04:05.000Z"

// Range is a closed month interval in UTC: Start is the first instant of the
// month, End the last representable millisecond before the next month begins.
type Range struct {
	Start    time.Time `json:"startDate"`
	End      time.Time `json:"endDate"`
	StartISO string    `json:"startDateISO"`
	EndISO   string    `json:"endDateISO"`
}

// MonthRange resolves (year, month, timezone offset) into the UTC instant
// range bounding that local month. Month is 0-based; out-of-range values
// roll over natively (month 12 of year Y is month 0 of year Y+1). The offset
// is the number of minutes added to a UTC instant to obtain local time, so a
// positive offset shifts both boundaries earlier in UTC terms. An offset of
// 0 means UTC.
func MonthRange(year, month, tzOffsetMinutes int) Range {
	start := monthStartUTC(year, month, tzOffsetMinutes)
	end := monthStartUTC(year, month+1, tzOffsetMinutes).Add(-time.Millisecond)
	return Range{
		Start:    start,
		End:      end,
		StartISO: start.UTC().Format(ISOMillis),
		EndISO:   end.UTC().Format(ISOMillis),
	}
}

func monthStartUTC(year, month, tzOffsetMinutes int) time.Time {
	// time.Date normalizes out-of-range months, matching the rollover
	// semantics callers rely on. time.Month is 1-based, our month is not.
	local := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	return local.Add(time.Duration(tzOffsetMinutes) * time.Minute)
}

// Contains reports whether the instant falls inside the range. Both bounds
// are inclusive.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}
