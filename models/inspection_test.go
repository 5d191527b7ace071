package models

import (
	"testing"
	"time"
)

func TestDisplayClass(t *testing.T) {
	today := NewDate(2026, time.March, 1)

	tests := []struct {
		name   string
		status InspectionStatus
		due    Date
		want   DisplayStatus
	}{
		{"completed is always compliant", InspectionCompleted, today.AddDays(-100), DisplayCompliant},
		{"past due is overdue", InspectionPending, today.AddDays(-1), DisplayOverdue},
		{"due today is due-soon, not overdue", InspectionPending, today, DisplayDueSoon},
		{"inside the 30 day window", InspectionPending, today.AddDays(30), DisplayDueSoon},
		{"just outside the window", InspectionPending, today.AddDays(31), DisplayCompliant},
		{"far future", InspectionPending, today.AddDays(200), DisplayCompliant},
		{"on hold past due still reads overdue", InspectionOnHold, today.AddDays(-5), DisplayOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insp := Inspection{Status: tt.status, DueDate: tt.due}
			if got := insp.DisplayClass(today); got != tt.want {
				t.Errorf("DisplayClass() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDueLabel(t *testing.T) {
	today := NewDate(2026, time.March, 1)

	tests := []struct {
		name   string
		status InspectionStatus
		due    Date
		want   string
	}{
		{"due today", InspectionPending, today, "Due today"},
		{"one day out uses singular", InspectionPending, today.AddDays(1), "1 day until due"},
		{"several days out", InspectionPending, today.AddDays(14), "14 days until due"},
		{"one day past uses singular", InspectionPending, today.AddDays(-1), "1 day overdue"},
		{"several days past", InspectionPending, today.AddDays(-9), "9 days overdue"},
		{"completed suppresses the label", InspectionCompleted, today.AddDays(3), ""},
		{"on hold suppresses the label", InspectionOnHold, today.AddDays(3), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insp := Inspection{Status: tt.status, DueDate: tt.due}
			if got := insp.DueLabel(today); got != tt.want {
				t.Errorf("DueLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompletionBlockers(t *testing.T) {
	next := NewDate(2027, time.March, 1)

	ready := Inspection{
		NextInspectionDate:  &next,
		CertsReceived:       true,
		CertsLink:           "https://drive.example.com/certs",
		DefectPortalActions: true,
	}
	if got := ready.CompletionBlockers(); len(got) != 0 {
		t.Fatalf("expected no blockers, got %v", got)
	}
	if !ready.CanComplete() {
		t.Error("CanComplete() = false for a fully gated inspection")
	}

	empty := Inspection{}
	got := empty.CompletionBlockers()
	if len(got) != 3 {
		t.Fatalf("expected 3 blockers, got %d: %v", len(got), got)
	}
	// Reasons come back in a fixed order so the client can render them
	// stably.
	wantOrder := []string{
		"Next inspection date is required (or mark it N/A)",
		"Certificates must be marked received with a link to the certificate folder",
		"Defect portal actions must be confirmed (or marked N/A)",
	}
	for i, want := range wantOrder {
		if got[i] != want {
			t.Errorf("blocker[%d] = %q, want %q", i, got[i], want)
		}
	}
}

func TestCompletionBlockersPartial(t *testing.T) {
	next := NewDate(2027, time.March, 1)

	tests := []struct {
		name string
		insp Inspection
		want int
	}{
		{"next date marked N/A passes that clause", Inspection{
			NextInspectionNA:    true,
			CertsReceived:       true,
			CertsLink:           "https://x",
			DefectPortalActions: true,
		}, 0},
		{"certs received without a link still blocks", Inspection{
			NextInspectionDate:  &next,
			CertsReceived:       true,
			DefectPortalActions: true,
		}, 1},
		{"defect portal N/A passes that clause", Inspection{
			NextInspectionDate: &next,
			CertsReceived:      true,
			CertsLink:          "https://x",
			DefectPortalNA:     true,
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.insp.CompletionBlockers(); len(got) != tt.want {
				t.Errorf("got %d blockers (%v), want %d", len(got), got, tt.want)
			}
		})
	}
}
