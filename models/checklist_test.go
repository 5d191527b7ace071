package models

import "testing"

func TestSynthesizeItemLabel(t *testing.T) {
	tests := []struct {
		name        string
		uniqueID    string
		description string
		n           int
		want        string
	}{
		{"id and description", "CRN-014", "Main hoist hook", 1, "CRN-014 - Main hoist hook"},
		{"id only", "CRN-014", "", 1, "CRN-014"},
		{"description only", "", "Main hoist hook", 1, "Main hoist hook"},
		{"both blank falls back to position", "", "", 3, "Item 3"},
		{"whitespace counts as blank", "  ", "\t", 7, "Item 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SynthesizeItemLabel(tt.uniqueID, tt.description, tt.n); got != tt.want {
				t.Errorf("SynthesizeItemLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChecklistCompletionBlockers(t *testing.T) {
	tests := []struct {
		name       string
		items      []ChecklistItem
		adminCount int
		want       []string
	}{
		{
			name: "all inspected passes",
			items: []ChecklistItem{
				{Status: ItemInspected},
				{Status: ItemInspected},
			},
			adminCount: 0,
			want:       nil,
		},
		{
			name: "unchecked item blocks",
			items: []ChecklistItem{
				{Status: ItemInspected},
				{Status: ItemNotChecked},
			},
			adminCount: 1,
			want:       []string{MsgItemsUnchecked},
		},
		{
			name: "issue without comment blocks",
			items: []ChecklistItem{
				{Status: ItemDefective},
			},
			adminCount: 1,
			want:       []string{MsgIssueComments},
		},
		{
			name: "issue with comment but no admins blocks",
			items: []ChecklistItem{
				{Status: ItemNotAvailable, Comment: "missing from store"},
			},
			adminCount: 0,
			want:       []string{MsgAdminsRequired},
		},
		{
			name: "every failure reported at once",
			items: []ChecklistItem{
				{Status: ItemNotChecked},
				{Status: ItemDefective},
			},
			adminCount: 0,
			want:       []string{MsgItemsUnchecked, MsgIssueComments, MsgAdminsRequired},
		},
		{
			name: "commented issue with an admin passes",
			items: []ChecklistItem{
				{Status: ItemInspected},
				{Status: ItemNotAvailable, Comment: "replaced last month"},
			},
			adminCount: 1,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Checklist{}
			got := c.CompletionBlockers(tt.items, tt.adminCount)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d reasons (%v), want %d (%v)", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("reason[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIssueItems(t *testing.T) {
	items := []ChecklistItem{
		{Label: "A", Status: ItemInspected},
		{Label: "B", Status: ItemDefective},
		{Label: "C", Status: ItemNotAvailable},
		{Label: "D", Status: ItemNotChecked},
	}

	issues := IssueItems(items)
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(issues))
	}
	if issues[0].Label != "B" || issues[1].Label != "C" {
		t.Errorf("issue labels = %q, %q; want B, C", issues[0].Label, issues[1].Label)
	}
}
