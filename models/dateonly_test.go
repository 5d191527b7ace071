package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{"plain date", `"2026-03-01"`, NewDate(2026, time.March, 1), false},
		{"rfc3339 truncates to the date", `"2026-03-01T15:04:05Z"`, NewDate(2026, time.March, 1), false},
		{"empty string is zero", `""`, Date(time.Time{}), false},
		{"null is zero", `null`, Date(time.Time{}), false},
		{"garbage errors", `"yesterday"`, Date(time.Time{}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !time.Time(d).Equal(time.Time(tt.want)) {
				t.Errorf("got %v, want %v", d, tt.want)
			}
		})
	}
}

func TestDateMarshalJSON(t *testing.T) {
	d := NewDate(2026, time.March, 1)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2026-03-01"` {
		t.Errorf("got %s, want %q", b, "2026-03-01")
	}
}

func TestDaysUntil(t *testing.T) {
	base := NewDate(2026, time.March, 1)

	tests := []struct {
		name  string
		other Date
		want  int
	}{
		{"same day", base, 0},
		{"tomorrow", base.AddDays(1), 1},
		{"next month", NewDate(2026, time.April, 1), 31},
		{"yesterday", base.AddDays(-1), -1},
		{"across a year boundary", NewDate(2027, time.March, 1), 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.DaysUntil(tt.other); got != tt.want {
				t.Errorf("DaysUntil() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDateBefore(t *testing.T) {
	a := NewDate(2026, time.March, 1)
	b := NewDate(2026, time.March, 2)
	if !a.Before(b) {
		t.Error("expected a < b")
	}
	if b.Before(a) {
		t.Error("expected !(b < a)")
	}
	if a.Before(a) {
		t.Error("Before must be strict")
	}
}
