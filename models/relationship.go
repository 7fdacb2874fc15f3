package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Relationship links a Contact to a Case with a relationship-type label
// (e.g. "son", "daughter"). Many-to-many in principle: a contact may be
// linked to several cases and a case usually has several contacts.
type Relationship struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	ContactID string   `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact   *Contact `gorm:"foreignKey:ContactID" json:"contact,omitempty"`

	RelationType string `gorm:"size:100" json:"relation_type"`
}

// BeforeCreate hook to generate UUID
func (r *Relationship) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Relationship model
func (Relationship) TableName() string {
	return "relationships"
}
