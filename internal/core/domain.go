package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	// LogEntry is one submitted unit of tractor work. Entries are never
	// mutated once created.
	LogEntry struct {
		Date     Date    `json:"date"`
		Customer string  `json:"customer"`
		Location string  `json:"location"`
		Tractor  string  `json:"tractor"`
		Acres    float64 `json:"acres"`
		Cost     int64   `json:"cost"`
		Employee string  `json:"employee"`
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock component of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Before reports whether d is a strictly earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is a strictly later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Older files may carry a timestamp instead of a plain day.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewLogEntry trims the text fields, derives the cost from acres and
// validates the result. It does not check the date against today; that rule
// belongs to the entry form.
func NewLogEntry(date Date, customer, location, tractor string, acres float64, employee string) (LogEntry, error) {
	e := LogEntry{
		Date:     date,
		Customer: strings.TrimSpace(customer),
		Location: strings.TrimSpace(location),
		Tractor:  strings.TrimSpace(tractor),
		Acres:    acres,
		Cost:     CostForAcres(acres),
		Employee: strings.TrimSpace(employee),
	}
	if err := e.Validate(); err != nil {
		return LogEntry{}, err
	}
	return e, nil
}

func (e LogEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	if strings.TrimSpace(e.Customer) == "" {
		return &ValidationError{Field: "customer", Err: ErrEmptyCustomer}
	}
	if strings.TrimSpace(e.Location) == "" {
		return &ValidationError{Field: "location", Err: ErrEmptyLocation}
	}
	if strings.TrimSpace(e.Tractor) == "" {
		return &ValidationError{Field: "tractor", Err: ErrEmptyTractor}
	}
	if !(e.Acres > 0) {
		return &ValidationError{Field: "acres", Err: ErrInvalidAcres}
	}
	if !CostMatchesAcres(e.Acres, e.Cost) {
		return &ValidationError{Field: "cost", Err: ErrCostMismatch}
	}
	if strings.TrimSpace(e.Employee) == "" {
		return &ValidationError{Field: "employee", Err: ErrEmptyEmployee}
	}
	return nil
}

// Day is the calendar-day grouping key used by the cost trend.
func (e LogEntry) Day() string {
	return e.Date.String()
}
