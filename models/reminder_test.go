package models

import (
	"reflect"
	"testing"
)

func TestThresholdsEntered(t *testing.T) {
	tests := []struct {
		name      string
		daysUntil int
		want      []int
	}{
		{"far out enters nothing", 45, nil},
		{"window edge enters the widest", 30, []int{30}},
		{"mid window", 10, []int{30, 14}},
		{"last week", 5, []int{30, 14, 7}},
		{"day before", 1, []int{30, 14, 7, 1}},
		{"due today", 0, []int{30, 14, 7, 1}},
		{"already overdue still inside every window", -3, []int{30, 14, 7, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThresholdsEntered(tt.daysUntil); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ThresholdsEntered(%d) = %v, want %v", tt.daysUntil, got, tt.want)
			}
		})
	}
}

func TestShouldSendReminder(t *testing.T) {
	tests := []struct {
		name      string
		daysUntil int
		threshold int
		sent      bool
		want      bool
	}{
		{"first day of the window sends", 7, 7, false, true},
		{"already sent never resends", 7, 7, true, false},
		{"later day inside the window stays quiet", 5, 7, false, false},
		{"before the window stays quiet", 10, 7, false, false},
		{"overdue does not retrigger the threshold", -1, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSendReminder(tt.daysUntil, tt.threshold, tt.sent); got != tt.want {
				t.Errorf("ShouldSendReminder(%d, %d, %v) = %v, want %v",
					tt.daysUntil, tt.threshold, tt.sent, got, tt.want)
			}
		})
	}
}
