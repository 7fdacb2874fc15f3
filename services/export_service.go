package services

import (
	"bytes"
	"fmt"

	"obit_pipeline_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// exportSheetLimit caps the number of cards exported per stage sheet.
const exportSheetLimit = 5000

var exportHeaders = []string{
	"Contact", "Primary Phone", "All Phones", "Case", "City",
	"Date of Death", "Relationship", "Notes",
}

// ExportPipelineReport builds an xlsx workbook with one sheet per
// pipeline stage, each holding the assembled cards for that stage.
func ExportPipelineReport(db *gorm.DB) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, stage := range models.PipelineStages {
		sheet := stage
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}

		for col, header := range exportHeaders {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, header)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
		f.SetColWidth(sheet, "A", "A", 24)
		f.SetColWidth(sheet, "D", "D", 24)
		f.SetColWidth(sheet, "H", "H", 48)

		cards, err := FetchPipelineCards(db, stage, exportSheetLimit, "")
		if err != nil {
			return nil, fmt.Errorf("failed to assemble %s cards: %w", stage, err)
		}

		for row, card := range cards {
			values := []interface{}{
				card.ContactName,
				card.PrimaryPhone,
				card.AllPhones,
				card.CaseName,
				card.CaseCity,
				card.CaseDate,
				card.RelationType,
				card.Notes,
			}
			for col, value := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, value)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
