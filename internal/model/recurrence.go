package model

import "time"

// Frequency is the unit a recurrence rule steps by.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// WeekendAdjustment moves an occurrence that lands on Saturday or Sunday.
type WeekendAdjustment string

const (
	WeekendNone     WeekendAdjustment = "none"
	WeekendPrevious WeekendAdjustment = "previous" // Sat/Sun -> Friday
	WeekendNext     WeekendAdjustment = "next"     // Sat/Sun -> Monday
	WeekendNearest  WeekendAdjustment = "nearest"  // Sat -> Friday, Sun -> Monday
)

// Valid reports whether w is a known adjustment; "" counts as none.
func (w WeekendAdjustment) Valid() bool {
	switch w {
	case "", WeekendNone, WeekendPrevious, WeekendNext, WeekendNearest:
		return true
	}
	return false
}

// RecurrenceRule schedules a recurring transaction. It is owned by exactly
// one transaction.
type RecurrenceRule struct {
	Frequency         Frequency
	Interval          int           // every N units, >= 1
	DayOfMonth        int           // monthly/yearly, 1-31; 0 = day of StartDate
	DayOfWeek         *time.Weekday // weekly; nil = weekday of StartDate
	MonthOfYear       time.Month    // yearly; 0 = month of StartDate
	WeekendAdjustment WeekendAdjustment
	StartDate         time.Time
	EndDate           *time.Time
	NextOccurrence    *time.Time
}

// Clone returns a copy that shares no pointers with r.
func (r RecurrenceRule) Clone() RecurrenceRule {
	c := r
	if r.DayOfWeek != nil {
		wd := *r.DayOfWeek
		c.DayOfWeek = &wd
	}
	if r.EndDate != nil {
		end := *r.EndDate
		c.EndDate = &end
	}
	if r.NextOccurrence != nil {
		next := *r.NextOccurrence
		c.NextOccurrence = &next
	}
	return c
}
