package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case represents a deceased individual, the context for family outreach.
// Cases are created by the external ingestion pipeline and are read-only
// to this application: no edit or delete operations are exposed.
type Case struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string     `gorm:"not null" json:"name"`
	City        string     `gorm:"index" json:"city"`
	DateOfDeath *time.Time `gorm:"index" json:"date_of_death,omitempty"`
	SourceLink  string     `json:"source_link,omitempty"`

	Relationships []Relationship `gorm:"foreignKey:CaseID" json:"relationships,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// DateOfDeathDisplay returns the date of death truncated to date-only,
// or an empty string when unknown.
func (c *Case) DateOfDeathDisplay() string {
	if c.DateOfDeath == nil {
		return ""
	}
	return c.DateOfDeath.Format("2006-01-02")
}
