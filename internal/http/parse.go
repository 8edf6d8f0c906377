package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MonthParams holds the month scope of a query. Month is 0-based like the
// JSON API; tz_offset is minutes added to UTC month boundaries.
type MonthParams struct {
	Year            int
	Month           int
	TZOffsetMinutes int
}

// ParseMonthParams extracts year, month and tz_offset from query
// parameters, defaulting to the current UTC month. Malformed values fall
// back to the defaults rather than failing the request.
func ParseMonthParams(query url.Values) MonthParams {
	now := time.Now().UTC()
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()) - 1,
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}
	if v := strings.TrimSpace(query.Get("tz_offset")); v != "" {
		if offset, err := strconv.Atoi(v); err == nil {
			params.TZOffsetMinutes = offset
		}
	}

	return params
}

// hasMonthParams reports whether the caller scoped the query explicitly,
// used where omitting them means all-time.
func hasMonthParams(query url.Values) bool {
	return strings.TrimSpace(query.Get("year")) != "" || strings.TrimSpace(query.Get("month")) != ""
}
