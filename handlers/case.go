package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"obit_pipeline_go/db"
	"obit_pipeline_go/services"

	"github.com/labstack/echo/v4"
)

// GetCasesHandler returns a page of cases ordered by date of death
// descending, with city and inclusive date-range filters
func GetCasesHandler(c echo.Context) error {
	offset := 0
	limit := services.DefaultPageSize
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			offset = o
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	filters := services.CaseFilters{City: c.QueryParam("city")}
	if dateStart := c.QueryParam("date_start"); dateStart != "" {
		parsed, err := time.Parse("2006-01-02", dateStart)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_start must be YYYY-MM-DD")
		}
		filters.DateStart = &parsed
	}
	if dateEnd := c.QueryParam("date_end"); dateEnd != "" {
		parsed, err := time.Parse("2006-01-02", dateEnd)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_end must be YYYY-MM-DD")
		}
		filters.DateEnd = &parsed
	}

	cases, total, err := services.FetchCasesPage(db.DB, offset, limit, filters)
	if err != nil {
		return statusError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cases":       cases,
		"total":       total,
		"offset":      offset,
		"limit":       limit,
		"next_offset": services.NextOffset(offset, limit, total),
		"prev_offset": services.PrevOffset(offset, limit),
	})
}

// GetCaseSummaryPDFHandler streams the printable case summary
func GetCaseSummaryPDFHandler(c echo.Context) error {
	caseID := c.Param("id")

	pdf, err := services.GenerateCaseSummaryPDF(db.DB, caseID)
	if err != nil {
		return statusError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="case_%s_summary.pdf"`, caseID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
