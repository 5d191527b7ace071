package handlers

import (
	"testing"

	"p9e.in/inspectra/models"
)

func TestFolderForType(t *testing.T) {
	tests := []struct {
		name string
		t    models.InspectionType
		want string
	}{
		{
			"folder url takes its last segment",
			models.InspectionType{Name: "Annual Load Test", FolderURL: "https://drive.example.com/plant/load_tests"},
			"load_tests",
		},
		{
			"trailing slash ignored",
			models.InspectionType{Name: "Annual Load Test", FolderURL: "https://drive.example.com/plant/load_tests/"},
			"load_tests",
		},
		{
			"no url slugs the type name",
			models.InspectionType{Name: "Annual Load Test"},
			"annual_load_test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := folderForType(&tt.t); got != tt.want {
				t.Errorf("folderForType() = %q, want %q", got, tt.want)
			}
		})
	}
}
