// Package recurrence computes the dates a recurring transaction falls on.
//
// Daily rules step interval days from the date asked about. Weekly, monthly
// and yearly occurrences form a grid anchored at the start date. Monthly and
// yearly grid dates clamp to the month length first (the 31st becomes the
// 30th or the 28th) and are then moved off weekends when the rule asks for
// it, never to before the start date. Every function here is pure.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/model"
)

// ErrInvalidRule is wrapped by Validate.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Validate checks that rule can produce a schedule.
func Validate(rule model.RecurrenceRule) error {
	var problems []string
	if !rule.Frequency.Valid() {
		problems = append(problems, fmt.Sprintf("unknown frequency %q", rule.Frequency))
	}
	if rule.Interval < 1 {
		problems = append(problems, fmt.Sprintf("interval %d must be at least 1", rule.Interval))
	}
	if rule.DayOfMonth < 0 || rule.DayOfMonth > 31 {
		problems = append(problems, fmt.Sprintf("day of month %d outside 1..31", rule.DayOfMonth))
	}
	if rule.MonthOfYear < 0 || rule.MonthOfYear > time.December {
		problems = append(problems, fmt.Sprintf("month %d outside 1..12", rule.MonthOfYear))
	}
	if rule.DayOfWeek != nil && (*rule.DayOfWeek < time.Sunday || *rule.DayOfWeek > time.Saturday) {
		problems = append(problems, fmt.Sprintf("day of week %d outside 0..6", *rule.DayOfWeek))
	}
	if !rule.WeekendAdjustment.Valid() {
		problems = append(problems, fmt.Sprintf("unknown weekend adjustment %q", rule.WeekendAdjustment))
	}
	if rule.StartDate.IsZero() {
		problems = append(problems, "start date is required")
	} else if rule.EndDate != nil && calendar.Normalize(*rule.EndDate).Before(calendar.Normalize(rule.StartDate)) {
		problems = append(problems, "end date is before start date")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRule, strings.Join(problems, "; "))
	}
	return nil
}

// NextOccurrence returns the first occurrence after from, or on from when
// includeDate is set. For a daily rule that is from plus the interval, or from
// itself with includeDate; before the start date it is the start date. It
// reports false once the rule has run past its end date, and for rules that
// fail Validate.
func NextOccurrence(rule model.RecurrenceRule, from time.Time, includeDate bool) (time.Time, bool) {
	var next time.Time
	found := false
	each(rule, from, includeDate, func(t time.Time) bool {
		next, found = t, true
		return false
	})
	return next, found
}

// Occurrences lists every occurrence between from and to, both inclusive.
// Each one is the NextOccurrence of the one before.
func Occurrences(rule model.RecurrenceRule, from, to time.Time) []time.Time {
	to = calendar.Normalize(to)
	var out []time.Time
	each(rule, from, true, func(t time.Time) bool {
		if t.After(to) {
			return false
		}
		out = append(out, t)
		return true
	})
	return out
}

// Advance returns a copy of rule whose NextOccurrence is the first one after
// from, or nil when the rule is exhausted.
func Advance(rule model.RecurrenceRule, from time.Time) model.RecurrenceRule {
	out := rule.Clone()
	out.NextOccurrence = nil
	if next, ok := NextOccurrence(rule, from, false); ok {
		out.NextOccurrence = &next
	}
	return out
}

// each calls fn with successive occurrences at or after from (strictly after
// unless includeDate) until fn returns false or the rule ends.
func each(rule model.RecurrenceRule, from time.Time, includeDate bool, fn func(time.Time) bool) {
	if Validate(rule) != nil {
		return
	}
	g := newGrid(rule)
	from = calendar.Normalize(from)
	var end time.Time
	if rule.EndDate != nil {
		end = calendar.Normalize(*rule.EndDate)
	}
	if g.freq == model.FrequencyDaily {
		t := from
		switch {
		case t.Before(g.start):
			t = g.start
		case !includeDate:
			t = calendar.AddDays(t, g.interval)
		}
		for ; end.IsZero() || !t.After(end); t = calendar.AddDays(t, g.interval) {
			if !fn(t) {
				return
			}
		}
		return
	}
	for k := g.estimate(from); ; k++ {
		t := adjust(g.at(k), g.adjustment)
		if t.Before(g.start) {
			continue
		}
		if t.Before(from) || (!includeDate && t.Equal(from)) {
			continue
		}
		if !end.IsZero() && t.After(end) {
			return
		}
		if !fn(t) {
			return
		}
	}
}

type grid struct {
	freq       model.Frequency
	interval   int
	start      time.Time // rule start date
	anchor     time.Time // grid date k = 0
	day        int
	month      time.Month
	adjustment model.WeekendAdjustment
}

func newGrid(rule model.RecurrenceRule) grid {
	start := calendar.Normalize(rule.StartDate)
	g := grid{
		freq:       rule.Frequency,
		interval:   rule.Interval,
		start:      start,
		anchor:     start,
		day:        rule.DayOfMonth,
		month:      rule.MonthOfYear,
		adjustment: model.WeekendNone,
	}
	if g.day == 0 {
		g.day = start.Day()
	}
	if g.month == 0 {
		g.month = start.Month()
	}
	switch rule.Frequency {
	case model.FrequencyWeekly:
		if rule.DayOfWeek != nil {
			shift := (int(*rule.DayOfWeek) - int(start.Weekday()) + 7) % 7
			g.anchor = calendar.AddDays(start, shift)
		}
	case model.FrequencyMonthly, model.FrequencyYearly:
		if rule.WeekendAdjustment != "" {
			g.adjustment = rule.WeekendAdjustment
		}
	}
	return g
}

// at returns the unadjusted grid date k steps from the anchor.
func (g grid) at(k int) time.Time {
	n := k * g.interval
	switch g.freq {
	case model.FrequencyWeekly:
		return calendar.AddDays(g.anchor, 7*n)
	case model.FrequencyMonthly:
		return calendar.Clamp(g.anchor.Year(), g.anchor.Month()+time.Month(n), g.day)
	default:
		return calendar.Clamp(g.anchor.Year()+n, g.month, g.day)
	}
}

// estimate returns a grid index at or before the first occurrence on from,
// so each does not walk the grid from the start.
func (g grid) estimate(from time.Time) int {
	var units int
	switch g.freq {
	case model.FrequencyWeekly:
		units = calendar.DaysBetween(g.anchor, from) / 7
	case model.FrequencyMonthly:
		units = calendar.MonthsBetween(g.anchor, from)
	default:
		units = from.Year() - g.anchor.Year()
	}
	// adjusted dates move at most two days, one step back covers it
	return max(units/g.interval-1, 0)
}

func adjust(t time.Time, how model.WeekendAdjustment) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		switch how {
		case model.WeekendPrevious, model.WeekendNearest:
			return calendar.AddDays(t, -1)
		case model.WeekendNext:
			return calendar.AddDays(t, 2)
		}
	case time.Sunday:
		switch how {
		case model.WeekendPrevious:
			return calendar.AddDays(t, -2)
		case model.WeekendNext, model.WeekendNearest:
			return calendar.AddDays(t, 1)
		}
	}
	return t
}
