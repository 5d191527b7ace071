package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Date wraps time.Time for calendar-date columns so we can control both
// JSON un/marshaling and SQL driver encoding. Values are normalized to
// midnight UTC; all due-date arithmetic happens at whole-day resolution.
type Date time.Time

const dateLayout = "2006-01-02"

// NewDate builds a normalized Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates an arbitrary timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the server's current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// UnmarshalJSON accepts "2006-01-02" or a full RFC3339 timestamp
// (truncated to its date) so older clients keep working.
func (d *Date) UnmarshalJSON(b []byte) error {
	// strip quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*d = Date(time.Time{})
		return nil
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		*d = DateOf(t)
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("Date.UnmarshalJSON: cannot parse %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}

// MarshalJSON always emits "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(dateLayout))
}

// Value implements driver.Valuer so GORM/pgx can turn Date into a SQL
// DATE parameter.
func (d Date) Value() (driver.Value, error) {
	return time.Time(d), nil
}

// Scan implements sql.Scanner so GORM can read DATE columns back.
func (d *Date) Scan(src interface{}) error {
	if src == nil {
		*d = Date(time.Time{})
		return nil
	}

	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		t, err := time.Parse(dateLayout, string(v))
		if err != nil {
			return fmt.Errorf("Date.Scan: parse %q: %w", string(v), err)
		}
		*d = DateOf(t)
		return nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return fmt.Errorf("Date.Scan: parse %q: %w", v, err)
		}
		*d = DateOf(t)
		return nil
	default:
		return fmt.Errorf("Date.Scan: unsupported type %T", src)
	}
}

func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) IsZero() bool { return time.Time(d).IsZero() }

func (d Date) String() string { return time.Time(d).Format(dateLayout) }

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool { return time.Time(d).Before(time.Time(other)) }

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Time(d).AddDate(0, 0, n))
}

// DaysUntil returns other - d in whole days. Positive when other is in
// the future relative to d, negative when it has passed.
func (d Date) DaysUntil(other Date) int {
	return int(time.Time(other).Sub(time.Time(d)).Hours() / 24)
}
