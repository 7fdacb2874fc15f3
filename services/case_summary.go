package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"obit_pipeline_go/models"

	"gorm.io/gorm"
)

// caseSummaryTemplate renders the printable summary: the case record plus
// the pipeline state of every linked relative.
const caseSummaryTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Georgia, serif; color: #222; }
h1 { font-size: 20px; border-bottom: 2px solid #222; padding-bottom: 6px; }
h2 { font-size: 15px; margin-top: 24px; }
table { width: 100%; border-collapse: collapse; margin-top: 8px; }
th, td { border: 1px solid #999; padding: 6px 8px; font-size: 12px; text-align: left; }
th { background: #eee; }
.meta { font-size: 12px; color: #555; }
.notes { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>Case Summary: {{.Case.Name}}</h1>
<p class="meta">
City: {{if .Case.City}}{{.Case.City}}{{else}}N/A{{end}}<br>
Date of death: {{if .DateOfDeath}}{{.DateOfDeath}}{{else}}N/A{{end}}<br>
{{if .Case.SourceLink}}Source: {{.Case.SourceLink}}{{end}}
</p>
<h2>Relatives ({{len .Relatives}})</h2>
{{if .Relatives}}
<table>
<tr><th>Name</th><th>Relationship</th><th>Stage</th><th>Phones</th><th>Notes</th></tr>
{{range .Relatives}}
<tr>
<td>{{.Name}}</td>
<td>{{.RelationType}}</td>
<td>{{.Status}}</td>
<td>{{.Phones}}</td>
<td class="notes">{{.Notes}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>No relatives linked to this case.</p>
{{end}}
</body>
</html>`

type caseSummaryRelative struct {
	Name         string
	RelationType string
	Status       string
	Phones       string
	Notes        string
}

type caseSummaryData struct {
	Case        models.Case
	DateOfDeath string
	Relatives   []caseSummaryRelative
}

// BuildCaseSummaryHTML assembles the printable HTML summary for a case.
// Returns NotFoundError when the case does not exist.
func BuildCaseSummaryHTML(db *gorm.DB, caseID string) (string, error) {
	var record models.Case
	if err := db.First(&record, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &NotFoundError{Entity: "case", ID: caseID}
		}
		return "", fmt.Errorf("failed to fetch case: %w", err)
	}

	var rels []models.Relationship
	if err := db.Where("case_id = ?", caseID).Preload("Contact").Find(&rels).Error; err != nil {
		return "", fmt.Errorf("failed to fetch relatives: %w", err)
	}

	data := caseSummaryData{
		Case:        record,
		DateOfDeath: record.DateOfDeathDisplay(),
	}
	for _, rel := range rels {
		if rel.Contact == nil {
			continue
		}
		data.Relatives = append(data.Relatives, caseSummaryRelative{
			Name:         rel.Contact.Name,
			RelationType: rel.RelationType,
			Status:       rel.Contact.Status,
			Phones:       rel.Contact.AllPhones(),
			Notes:        rel.Contact.Notes,
		})
	}

	tmpl, err := template.New("case_summary").Parse(caseSummaryTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse case summary template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render case summary: %w", err)
	}
	return buf.String(), nil
}

// GenerateCaseSummaryPDF renders the case summary to PDF.
func GenerateCaseSummaryPDF(db *gorm.DB, caseID string) ([]byte, error) {
	html, err := BuildCaseSummaryHTML(db, caseID)
	if err != nil {
		return nil, err
	}
	return GeneratePDF(html, DefaultPDFOptions())
}
