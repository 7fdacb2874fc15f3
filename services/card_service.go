package services

import (
	"errors"
	"fmt"
	"strings"

	"obit_pipeline_go/models"

	"gorm.io/gorm"
)

// DefaultCardsPerPage is the number of cards loaded per pipeline column.
const DefaultCardsPerPage = 15

// NoLinkedCase is the case-name placeholder for contacts without a case.
const NoLinkedCase = "No linked case"

// PipelineCard is the flattened display record for one contact in a
// pipeline column: contact fields plus its linked case and relationship
// label.
type PipelineCard struct {
	ContactID    string `json:"contact_id"`
	ContactName  string `json:"contact_name"`
	PrimaryPhone string `json:"primary_phone"`
	AllPhones    string `json:"all_phones"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	CaseID       string `json:"case_id,omitempty"`
	CaseName     string `json:"case_name"`
	CaseCity     string `json:"case_city"`
	CaseDate     string `json:"case_date_of_death"`
	RelationType string `json:"relation_type"`
}

// FetchPipelineCards assembles the cards for one pipeline stage. The city
// filter matches case-insensitively as a substring against the linked
// case's city. A contact reachable through several relationship rows
// appears once, keeping the first encountered case/relationship pairing.
// Contacts with no relationship row still yield a card with case fields
// defaulted, except under a city filter (there is no city to match).
func FetchPipelineCards(db *gorm.DB, stage string, limit int, cityFilter string) ([]PipelineCard, error) {
	if !models.IsValidStage(stage) {
		return nil, &ValidationError{Field: "stage", Reason: fmt.Sprintf("%q is not a pipeline stage", stage)}
	}
	if limit <= 0 {
		limit = DefaultCardsPerPage
	}

	// Qualified select: the joined tables share column names with
	// relationships and would otherwise collide during scanning.
	query := db.Model(&models.Relationship{}).
		Select("relationships.*").
		Joins("JOIN contacts ON contacts.id = relationships.contact_id").
		Joins("LEFT JOIN cases ON cases.id = relationships.case_id").
		Where("contacts.status = ?", stage)

	city := strings.TrimSpace(cityFilter)
	if city != "" {
		query = query.Where("LOWER(cases.city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}

	// The limit counts distinct contacts, and a contact can hold several
	// relationship rows, so rows are fetched unbounded and the limit is
	// applied after dedup.
	var rels []models.Relationship
	if err := query.
		Preload("Contact").
		Preload("Case").
		Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch pipeline cards: %w", err)
	}

	cards := make([]PipelineCard, 0, limit)
	seen := make(map[string]bool)
	for _, rel := range rels {
		if len(cards) == limit {
			break
		}
		if rel.Contact == nil || seen[rel.Contact.ID] {
			continue
		}
		seen[rel.Contact.ID] = true
		cards = append(cards, buildCard(rel.Contact, rel.Case, rel.RelationType))
	}

	// Contacts never linked to a case.
	if city == "" && len(cards) < limit {
		var unlinked []models.Contact
		if err := db.Where("status = ?", stage).
			Where("NOT EXISTS (SELECT 1 FROM relationships WHERE relationships.contact_id = contacts.id)").
			Limit(limit - len(cards)).
			Find(&unlinked).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch unlinked contacts: %w", err)
		}
		for _, contact := range unlinked {
			cards = append(cards, buildCard(&contact, nil, ""))
		}
	}

	return cards, nil
}

func buildCard(contact *models.Contact, linked *models.Case, relationType string) PipelineCard {
	card := PipelineCard{
		ContactID:    contact.ID,
		ContactName:  contact.Name,
		PrimaryPhone: contact.PrimaryPhone(),
		AllPhones:    contact.AllPhones(),
		Status:       contact.Status,
		Notes:        contact.Notes,
		CaseName:     NoLinkedCase,
		RelationType: relationType,
	}
	if linked != nil {
		card.CaseID = linked.ID
		card.CaseName = linked.Name
		card.CaseCity = linked.City
		card.CaseDate = linked.DateOfDeathDisplay()
	}
	return card
}

// ContactDetail is the full record for the detail panel: the contact plus
// its first linked case and relationship label.
type ContactDetail struct {
	Contact      models.Contact `json:"contact"`
	Case         *models.Case   `json:"case,omitempty"`
	RelationType string         `json:"relation_type,omitempty"`
}

// FetchContactDetail loads a contact with its first case/relationship
// pairing. Returns NotFoundError when the contact does not exist.
func FetchContactDetail(db *gorm.DB, contactID string) (*ContactDetail, error) {
	var contact models.Contact
	if err := db.First(&contact, "id = ?", contactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "contact", ID: contactID}
		}
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}

	detail := &ContactDetail{Contact: contact}

	var rel models.Relationship
	err := db.Where("contact_id = ?", contactID).Preload("Case").First(&rel).Error
	switch {
	case err == nil:
		detail.Case = rel.Case
		detail.RelationType = rel.RelationType
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to fetch relationship: %w", err)
	}

	return detail, nil
}
