package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical renders the timestamp as spec.md §3's cross-entry total order
// string: "YYYY-MM-DDThh:mmZ" or "YYYY-MM-DDThh:mm±HH:MM".
func (t Timestamp) Canonical() string {
	base := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d", t.Date.Year, t.Date.Month, t.Date.Day, t.Time.Hour, t.Time.Minute)
	if t.Timezone.IsUTC {
		return base + "Z"
	}
	return base + offsetString(t.Timezone.OffsetMinutes)
}

func offsetString(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// NormalizedOffsetMinutes returns the timezone's signed offset from UTC in
// minutes, treating "Z" as 0.
func (t Timestamp) NormalizedOffsetMinutes() int {
	if t.Timezone.IsUTC {
		return 0
	}
	return t.Timezone.OffsetMinutes
}

// Compare orders two timestamps by their canonical string form (spec.md
// §8's total-order law): returns -1, 0, or 1.
func (t Timestamp) Compare(o Timestamp) int {
	a, b := t.Canonical(), o.Canonical()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ParseTimestamp decomposes a canonical-form timestamp literal
// "YYYY-MM-DDThh:mm(Z|±HH:MM)" into a Timestamp; ok reports whether
// parsing succeeded. The AST extractor calls it on header text the CST
// layer already matched against the full timestamp regex, and the
// synthesis rules call it on user-written checkpoint text, where
// malformed input is an ordinary user error.
func ParseTimestamp(text string) (Timestamp, bool) {
	if len(text) < 17 || text[4] != '-' || text[7] != '-' || text[10] != 'T' || text[13] != ':' {
		return Timestamp{}, false
	}
	year, err1 := strconv.Atoi(text[0:4])
	month, err2 := strconv.Atoi(text[5:7])
	day, err3 := strconv.Atoi(text[8:10])
	hour, err4 := strconv.Atoi(text[11:13])
	minute, err5 := strconv.Atoi(text[14:16])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return Timestamp{}, false
	}
	rest := text[16:]
	tz, ok := parseTimezone(rest)
	if !ok {
		return Timestamp{}, false
	}
	return Timestamp{
		Date:     DateParts{Year: year, Month: month, Day: day},
		Time:     TimeParts{Hour: hour, Minute: minute},
		Timezone: tz,
	}, true
}

func parseTimezone(s string) (Timezone, bool) {
	if s == "Z" {
		return Timezone{IsUTC: true}, true
	}
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return Timezone{}, false
	}
	hours, err1 := strconv.Atoi(s[1:3])
	minutes, err2 := strconv.Atoi(s[4:6])
	if err1 != nil || err2 != nil {
		return Timezone{}, false
	}
	total := hours*60 + minutes
	if s[0] == '-' {
		total = -total
	}
	return Timezone{IsUTC: false, OffsetMinutes: total}, true
}

// ParseDateRange decomposes "YYYY-MM-DD..YYYY-MM-DD" into a DateRange.
func ParseDateRange(text string) (DateRange, bool) {
	parts := strings.SplitN(text, "..", 2)
	if len(parts) != 2 {
		return DateRange{}, false
	}
	start, ok1 := parseDate(parts[0])
	end, ok2 := parseDate(parts[1])
	if !ok1 || !ok2 {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

func parseDate(s string) (DateParts, bool) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return DateParts{}, false
	}
	y, e1 := strconv.Atoi(s[0:4])
	m, e2 := strconv.Atoi(s[5:7])
	d, e3 := strconv.Atoi(s[8:10])
	if e1 != nil || e2 != nil || e3 != nil {
		return DateParts{}, false
	}
	return DateParts{Year: y, Month: m, Day: d}, true
}
