package services

import (
	"errors"
	"fmt"
	"time"

	"obit_pipeline_go/models"

	"gorm.io/gorm"
)

// autoCloseNote is appended (never overwriting) to a sibling's notes when
// the one-win cascade marks it Lost.
const autoCloseNote = "\n[Auto-closed: Another relative won on %s]"

// terminalStages are never auto-transitioned by the cascade.
var terminalStages = []string{models.StageWon, models.StageLost}

// TransitionResult reports the outcome of a stage move, including the
// per-sibling tally of the one-win cascade.
type TransitionResult struct {
	ContactID   string           `json:"contact_id"`
	Stage       string           `json:"stage"`
	ClosedCount int              `json:"closed_count"`
	FailedCount int              `json:"failed_count"`
	Failures    []SiblingFailure `json:"failures,omitempty"`
	Message     string           `json:"message"`
}

// SiblingFailure records a sibling whose auto-close write failed. The
// sibling keeps its prior status; the caller can retry.
type SiblingFailure struct {
	ContactID string `json:"contact_id"`
	Reason    string `json:"reason"`
}

// PipelineEngine owns the status/notes mutation contract for contacts.
// Constructing one verifies the store schema, so a built engine is always
// ready to operate.
type PipelineEngine struct {
	db *gorm.DB
}

// NewPipelineEngine builds an engine after verifying the contacts table
// carries the pipeline columns. Returns a SchemaError otherwise.
func NewPipelineEngine(db *gorm.DB) (*PipelineEngine, error) {
	if err := VerifySchema(db); err != nil {
		return nil, err
	}
	return &PipelineEngine{db: db}, nil
}

// MoveToStage moves a contact to a new pipeline stage. Moving to Won
// triggers the one-win cascade: every other non-terminal contact linked
// to any of the winner's cases is marked Lost with an audit note.
//
// Manual moves out of Won or Lost are permitted; the cascade itself is
// one-directional and never re-opens a closed contact.
func (e *PipelineEngine) MoveToStage(contactID, target string) (*TransitionResult, error) {
	if !models.IsValidStage(target) {
		return nil, &ValidationError{Field: "stage", Reason: fmt.Sprintf("%q is not a pipeline stage", target)}
	}

	var contact models.Contact
	if err := e.db.First(&contact, "id = ?", contactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "contact", ID: contactID}
		}
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}

	now := time.Now()
	if err := e.db.Model(&models.Contact{}).
		Where("id = ?", contactID).
		Updates(map[string]interface{}{
			"status":            target,
			"status_updated_at": now,
		}).Error; err != nil {
		// On a Won target this aborts before any cascade runs.
		return nil, &StoreWriteError{Op: "status update", Err: err}
	}

	result := &TransitionResult{ContactID: contactID, Stage: target}

	if target != models.StageWon {
		result.Message = fmt.Sprintf("Moved to %s", target)
		return result, nil
	}

	closed, failures, err := e.closeSiblings(contactID, now)
	if err != nil {
		// The winner already holds Won; retrying the move re-runs the
		// cascade without reopening anyone.
		return nil, err
	}
	result.ClosedCount = closed
	result.Failures = failures
	result.FailedCount = len(failures)
	result.Message = fmt.Sprintf("Marked as Won! %d other relative(s) automatically closed.", closed)
	if len(failures) > 0 {
		result.Message += fmt.Sprintf(" %d close(s) failed and should be retried.", len(failures))
	}
	return result, nil
}

// closeSiblings runs the one-win cascade for a freshly won contact. Each
// case linked to the winner (there may be several relationship rows) is
// its own cascade scope. Each sibling close is a single conditional
// UPDATE guarded by "status not terminal", with the audit note appended
// in SQL, so a concurrent transition cannot slip between a read and a
// write. Siblings already closed stay closed if a later write fails.
//
// A failed relationship or sibling lookup aborts the cascade and is
// returned as an error so the caller knows the case's other contacts
// are still open.
func (e *PipelineEngine) closeSiblings(winnerID string, now time.Time) (int, []SiblingFailure, error) {
	var winnerRels []models.Relationship
	if err := e.db.Where("contact_id = ?", winnerID).Find(&winnerRels).Error; err != nil {
		return 0, nil, fmt.Errorf("cascade aborted for contact %s: failed to resolve relationships: %w", winnerID, err)
	}
	if len(winnerRels) == 0 {
		return 0, nil, nil
	}

	caseIDs := make([]string, 0, len(winnerRels))
	seenCases := make(map[string]bool)
	for _, rel := range winnerRels {
		if !seenCases[rel.CaseID] {
			seenCases[rel.CaseID] = true
			caseIDs = append(caseIDs, rel.CaseID)
		}
	}

	var siblingRels []models.Relationship
	if err := e.db.Where("case_id IN ?", caseIDs).Find(&siblingRels).Error; err != nil {
		return 0, nil, fmt.Errorf("cascade aborted for contact %s: failed to resolve siblings: %w", winnerID, err)
	}

	closed := 0
	var failures []SiblingFailure
	seenSiblings := make(map[string]bool)

	for _, rel := range siblingRels {
		siblingID := rel.ContactID
		if siblingID == winnerID || seenSiblings[siblingID] {
			continue
		}
		seenSiblings[siblingID] = true

		auditLine := fmt.Sprintf(autoCloseNote, now.Format("2006-01-02 15:04"))
		res := e.db.Model(&models.Contact{}).
			Where("id = ? AND status NOT IN ?", siblingID, terminalStages).
			Updates(map[string]interface{}{
				"status":            models.StageLost,
				"notes":             gorm.Expr("COALESCE(notes, '') || ?", auditLine),
				"status_updated_at": now,
			})
		if res.Error != nil {
			failures = append(failures, SiblingFailure{ContactID: siblingID, Reason: res.Error.Error()})
			continue
		}
		// Zero rows means the sibling was already Won or Lost.
		if res.RowsAffected > 0 {
			closed++
		}
	}

	return closed, failures, nil
}

// UpdateNotes overwrites a contact's notes verbatim. Caller-initiated,
// no cascade, no status change.
func (e *PipelineEngine) UpdateNotes(contactID, notes string) error {
	res := e.db.Model(&models.Contact{}).
		Where("id = ?", contactID).
		Update("notes", notes)
	if res.Error != nil {
		return &StoreWriteError{Op: "notes update", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "contact", ID: contactID}
	}
	return nil
}
