package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pipeline stage constants
const (
	StageNew        = "New"
	StageAttempted  = "Attempted"
	StageInProgress = "In Progress"
	StageWon        = "Won"
	StageLost       = "Lost"
)

// PipelineStages lists all stages in board order
var PipelineStages = []string{
	StageNew,
	StageAttempted,
	StageInProgress,
	StageWon,
	StageLost,
}

// Contact represents a relative of a deceased individual (a lead) moving
// through the outreach pipeline. Status and notes are mutated exclusively
// through the pipeline engine.
type Contact struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name string `gorm:"not null" json:"name"`

	// Phone numbers are a fixed-arity ordered list, not a dynamic
	// collection. Display picks the first non-blank as primary.
	Phone1 *string `json:"phone_1,omitempty"`
	Phone2 *string `json:"phone_2,omitempty"`
	Phone3 *string `json:"phone_3,omitempty"`
	Phone4 *string `json:"phone_4,omitempty"`

	Status          string     `gorm:"not null;default:New;index" json:"status"`
	Notes           string     `gorm:"type:text" json:"notes"`
	StatusUpdatedAt *time.Time `json:"status_updated_at,omitempty"`

	Relationships []Relationship `gorm:"foreignKey:ContactID" json:"relationships,omitempty"`
}

// BeforeCreate hook to generate UUID and default the stage
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StageNew
	}
	return nil
}

// TableName specifies the table name for Contact model
func (Contact) TableName() string {
	return "contacts"
}

// IsValidStage checks if the stage is one of the five pipeline stages
func IsValidStage(stage string) bool {
	for _, s := range PipelineStages {
		if s == stage {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the contact sits in a terminal stage.
// Terminal contacts are never touched by the auto-close cascade.
func (c Contact) IsTerminal() bool {
	return c.Status == StageWon || c.Status == StageLost
}

// phones returns the four phone slots in fixed order 1 to 4.
func (c Contact) phones() []*string {
	return []*string{c.Phone1, c.Phone2, c.Phone3, c.Phone4}
}

// PrimaryPhone returns the first non-blank phone number, or "No phone".
func (c Contact) PrimaryPhone() string {
	for _, p := range c.phones() {
		if p != nil && strings.TrimSpace(*p) != "" {
			return strings.TrimSpace(*p)
		}
	}
	return "No phone"
}

// AllPhones returns all non-blank phone numbers joined by ", ".
func (c Contact) AllPhones() string {
	var valid []string
	for _, p := range c.phones() {
		if p != nil && strings.TrimSpace(*p) != "" {
			valid = append(valid, strings.TrimSpace(*p))
		}
	}
	return strings.Join(valid, ", ")
}
