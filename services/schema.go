package services

import (
	"obit_pipeline_go/models"

	"gorm.io/gorm"
)

// pipelineColumns are the contact columns the engine depends on. Older
// deployments predate the pipeline and carry contacts without them.
var pipelineColumns = []string{"status", "notes", "status_updated_at"}

// PipelineMigrationSQL is surfaced to operators when the schema check
// fails, so the fix can be applied without digging through docs.
const PipelineMigrationSQL = `ALTER TABLE contacts ADD COLUMN status TEXT DEFAULT 'New';
ALTER TABLE contacts ADD COLUMN notes TEXT;
ALTER TABLE contacts ADD COLUMN status_updated_at DATETIME;
UPDATE contacts SET status = 'New' WHERE status IS NULL;`

// VerifySchema checks that the contacts table carries the pipeline
// columns. Returns a SchemaError listing what is missing; the engine
// constructor refuses to build until it passes.
func VerifySchema(db *gorm.DB) error {
	migrator := db.Migrator()

	if !migrator.HasTable(&models.Contact{}) {
		return &SchemaError{Table: "contacts", Missing: []string{"(table absent)"}}
	}

	var missing []string
	for _, col := range pipelineColumns {
		if !migrator.HasColumn(&models.Contact{}, col) {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return &SchemaError{Table: "contacts", Missing: missing}
	}
	return nil
}
