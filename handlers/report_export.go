package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/models"
)

// ExportInspectionRegister streams the full inspection register as an
// Excel workbook. Accepts the same status/assetId/typeId filters as the
// list endpoint.
// GET /api/v1/reports/inspections/export
func ExportInspectionRegister(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Preload("Asset").Preload("InspectionType").Order("due_date ASC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if assetID := r.URL.Query().Get("assetId"); assetID != "" {
		q = q.Where("asset_id = ?", assetID)
	}
	if typeID := r.URL.Query().Get("typeId"); typeID != "" {
		q = q.Where("inspection_type_id = ?", typeID)
	}

	var inspections []models.Inspection
	if err := q.Find(&inspections).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inspections"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Asset", "Inspection Type", "Due Date", "Status", "Compliance", "Due", "Assignee", "Completed", "Certificates", "Notes"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	today := models.Today()
	for row, insp := range inspections {
		completed := ""
		if insp.CompletedDate != nil {
			completed = insp.CompletedDate.String()
		}
		certs := "No"
		if insp.CertsReceived {
			certs = "Yes"
		}
		values := []interface{}{
			assetNameOf(&insp),
			typeNameOf(&insp),
			insp.DueDate.String(),
			string(insp.Status),
			string(insp.DisplayClass(today)),
			insp.DueLabel(today),
			insp.Assignee,
			completed,
			certs,
			insp.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "B", 28)
	f.SetColWidth(sheet, "C", "I", 16)
	f.SetColWidth(sheet, "J", "J", 40)

	filename := fmt.Sprintf("inspection_register_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(w); err != nil {
		http.Error(w, "failed to write workbook: "+err.Error(), http.StatusInternalServerError)
	}
}
