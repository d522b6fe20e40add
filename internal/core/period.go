package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Period is a half-open interval [Start, End). The zero value is
// Unbounded and applies no time filter.
type Period struct {
	Start time.Time
	End   time.Time
}

// Unbounded is the period returned when no time reference is found.
var Unbounded = Period{}

// Bounded reports whether p restricts anything.
func (p Period) Bounded() bool {
	return !p.Start.IsZero() || !p.End.IsZero()
}

// Contains reports whether t falls in [Start, End).
func (p Period) Contains(t time.Time) bool {
	if !p.Bounded() {
		return true
	}
	return !t.Before(p.Start) && t.Before(p.End)
}

func (p Period) String() string {
	if !p.Bounded() {
		return "all time"
	}
	last := p.End.AddDate(0, 0, -1)
	if last.Equal(p.Start) {
		return p.Start.Format("2 Jan 2006")
	}
	return p.Start.Format("2 Jan 2006") + " - " + last.Format("2 Jan 2006")
}

var months = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
	"jan":       time.January,
	"feb":       time.February,
	"mar":       time.March,
	"apr":       time.April,
	"jun":       time.June,
	"jul":       time.July,
	"aug":       time.August,
	"sep":       time.September,
	"oct":       time.October,
	"nov":       time.November,
	"dec":       time.December,
}

// LookupMonth resolves an English month name, case-insensitively.
func LookupMonth(name string) (time.Month, bool) {
	m, ok := months[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

var (
	todayPattern     = regexp.MustCompile(`\btoday\b`)
	yesterdayPattern = regexp.MustCompile(`\byesterday\b`)
	thisWeekPattern  = regexp.MustCompile(`\bthis week\b`)
	datePattern      = regexp.MustCompile(`\bdate (\d{1,2}) ([a-z]+)(?: (\d{4}))?`)
	rangePattern     = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2}) ([a-z]+)(?: (\d{4}))?`)
	monthPattern     = regexp.MustCompile(`\bmonth ([a-z]+)(?: (\d{4}))?`)
)

// ResolvePeriod turns the time reference in text into a Period relative to
// now. Patterns are tried in a fixed order and the first one that matches
// with a valid date wins:
//
//	today, yesterday, this week,
//	"date 25 june [2024]", "1-5 july [2024]", "month april [2024]"
//
// Weeks start on Sunday. All dates are built in now's location. The result
// depends only on text and now.
func ResolvePeriod(text string, now time.Time) Period {
	text = strings.ToLower(text)
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if todayPattern.MatchString(text) {
		return Period{Start: today, End: today.AddDate(0, 0, 1)}
	}
	if yesterdayPattern.MatchString(text) {
		return Period{Start: today.AddDate(0, 0, -1), End: today}
	}
	if thisWeekPattern.MatchString(text) {
		start := today.AddDate(0, 0, -int(now.Weekday()))
		return Period{Start: start, End: start.AddDate(0, 0, 7)}
	}

	if m := datePattern.FindStringSubmatch(text); m != nil {
		if month, ok := LookupMonth(m[2]); ok {
			year := yearOr(m[3], now.Year())
			day, _ := strconv.Atoi(m[1])
			if validDay(year, month, day) {
				start := time.Date(year, month, day, 0, 0, 0, 0, loc)
				return Period{Start: start, End: start.AddDate(0, 0, 1)}
			}
		}
	}

	if m := rangePattern.FindStringSubmatch(text); m != nil {
		if month, ok := LookupMonth(m[3]); ok {
			year := yearOr(m[4], now.Year())
			from, _ := strconv.Atoi(m[1])
			to, _ := strconv.Atoi(m[2])
			if validDay(year, month, from) && validDay(year, month, to) && from <= to {
				return Period{
					Start: time.Date(year, month, from, 0, 0, 0, 0, loc),
					End:   time.Date(year, month, to, 0, 0, 0, 0, loc).AddDate(0, 0, 1),
				}
			}
		}
	}

	if m := monthPattern.FindStringSubmatch(text); m != nil {
		if month, ok := LookupMonth(m[1]); ok {
			year := yearOr(m[2], now.Year())
			start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
			// time.Date normalizes month 13 into January of the next year.
			return Period{Start: start, End: time.Date(year, month+1, 1, 0, 0, 0, 0, loc)}
		}
	}

	return Unbounded
}

func yearOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return y
}

func validDay(year int, month time.Month, day int) bool {
	if day < 1 {
		return false
	}
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return day <= lastDay
}
