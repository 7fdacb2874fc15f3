package services

import (
	"fmt"
	"strings"
	"time"

	"obit_pipeline_go/models"

	"gorm.io/gorm"
)

// DefaultPageSize is the page size for the case list view.
const DefaultPageSize = 20

// CountByStage returns the number of contacts in each pipeline stage.
// One count query per stage; the stage set is small and fixed.
func CountByStage(db *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64, len(models.PipelineStages))
	for _, stage := range models.PipelineStages {
		var count int64
		if err := db.Model(&models.Contact{}).Where("status = ?", stage).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count contacts in %s: %w", stage, err)
		}
		counts[stage] = count
	}
	return counts, nil
}

// CaseFilters narrows the paginated case listing. The city filter is a
// case-insensitive substring match; the date range is inclusive on both
// ends, with the end bound extended to the end of that day.
type CaseFilters struct {
	City      string
	DateStart *time.Time
	DateEnd   *time.Time
}

// FetchCasesPage returns one page of cases ordered by date of death
// descending, plus the total matching count for pagination math.
func FetchCasesPage(db *gorm.DB, offset, limit int, filters CaseFilters) ([]models.Case, int64, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	query := db.Model(&models.Case{})

	if city := strings.TrimSpace(filters.City); city != "" {
		query = query.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if filters.DateStart != nil {
		query = query.Where("date_of_death >= ?", *filters.DateStart)
	}
	if filters.DateEnd != nil {
		// Extend to 23:59:59 so the end date is fully included.
		endOfDay := time.Date(
			filters.DateEnd.Year(), filters.DateEnd.Month(), filters.DateEnd.Day(),
			23, 59, 59, 0, filters.DateEnd.Location())
		query = query.Where("date_of_death <= ?", endOfDay)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	var cases []models.Case
	if err := query.Order("date_of_death DESC").
		Limit(limit).
		Offset(offset).
		Find(&cases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch cases: %w", err)
	}

	return cases, total, nil
}

// NextOffset advances one page, clamped so the offset never runs past the
// last page of results.
func NextOffset(offset, limit int, total int64) int {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	next := offset + limit
	if int64(next) >= total {
		return offset
	}
	return next
}

// PrevOffset steps back one page, clamped at zero.
func PrevOffset(offset, limit int) int {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	prev := offset - limit
	if prev < 0 {
		return 0
	}
	return prev
}
