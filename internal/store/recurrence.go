package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/model"
)

// RecurrenceHeader is the CSV header for recurrence.csv.
const RecurrenceHeader = "transaction_id,frequency,interval,day_of_month,day_of_week,month_of_year,weekend_adjustment,start_date,end_date,next_occurrence"

const (
	recurrenceFields = 10
	colRuleTxn       = 0
	colFreq          = 1
	colInterval      = 2
	colDayOfMonth    = 3
	colDayOfWeek     = 4
	colMonthOfYear   = 5
	colWeekend       = 6
	colStart         = 7
	colEnd           = 8
	colNext          = 9
)

// ReadRecurrences reads recurrence.csv into rules keyed by owning transaction.
func ReadRecurrences(r io.Reader) (map[string]model.RecurrenceRule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = recurrenceFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading recurrence CSV: %w", err)
	}

	rules := make(map[string]model.RecurrenceRule)
	if len(records) == 0 {
		return rules, nil
	}
	for i, rec := range records[1:] {
		txnID, rule, err := unmarshalRule(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if _, dup := rules[txnID]; dup {
			return nil, fmt.Errorf("row %d: transaction %s has more than one rule", i+2, txnID)
		}
		rules[txnID] = rule
	}
	return rules, nil
}

// WriteRecurrences writes the rule of every transaction that has one.
func WriteRecurrences(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(RecurrenceHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := 2
	for _, txn := range txns {
		if txn.Recurrence == nil {
			continue
		}
		if err := cw.Write(marshalRule(txn.ID, *txn.Recurrence)); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
		row++
	}
	cw.Flush()
	return cw.Error()
}

func marshalRule(txnID string, rule model.RecurrenceRule) []string {
	row := make([]string, recurrenceFields)
	row[colRuleTxn] = txnID
	row[colFreq] = string(rule.Frequency)
	row[colInterval] = strconv.Itoa(rule.Interval)
	if rule.DayOfMonth != 0 {
		row[colDayOfMonth] = strconv.Itoa(rule.DayOfMonth)
	}
	if rule.DayOfWeek != nil {
		row[colDayOfWeek] = strings.ToLower(rule.DayOfWeek.String())
	}
	if rule.MonthOfYear != 0 {
		row[colMonthOfYear] = strconv.Itoa(int(rule.MonthOfYear))
	}
	row[colWeekend] = string(rule.WeekendAdjustment)
	row[colStart] = calendar.Format(rule.StartDate)
	if rule.EndDate != nil {
		row[colEnd] = calendar.Format(*rule.EndDate)
	}
	if rule.NextOccurrence != nil {
		row[colNext] = calendar.Format(*rule.NextOccurrence)
	}
	return row
}

func unmarshalRule(record []string) (string, model.RecurrenceRule, error) {
	rule := model.RecurrenceRule{
		Frequency:         model.Frequency(record[colFreq]),
		WeekendAdjustment: model.WeekendAdjustment(record[colWeekend]),
	}

	var err error
	if rule.Interval, err = atoi(record[colInterval]); err != nil {
		return "", rule, fmt.Errorf("parsing interval: %w", err)
	}
	if rule.DayOfMonth, err = atoi(record[colDayOfMonth]); err != nil {
		return "", rule, fmt.Errorf("parsing day_of_month: %w", err)
	}
	month, err := atoi(record[colMonthOfYear])
	if err != nil {
		return "", rule, fmt.Errorf("parsing month_of_year: %w", err)
	}
	rule.MonthOfYear = time.Month(month)

	if s := record[colDayOfWeek]; s != "" {
		wd, err := parseWeekday(s)
		if err != nil {
			return "", rule, err
		}
		rule.DayOfWeek = &wd
	}

	if rule.StartDate, err = calendar.Parse(record[colStart]); err != nil {
		return "", rule, err
	}
	if rule.EndDate, err = optionalDate(record[colEnd]); err != nil {
		return "", rule, err
	}
	if rule.NextOccurrence, err = optionalDate(record[colNext]); err != nil {
		return "", rule, err
	}
	return record[colRuleTxn], rule, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), s) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := calendar.Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
