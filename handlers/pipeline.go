package handlers

import (
	"net/http"
	"strconv"

	"obit_pipeline_go/config"
	"obit_pipeline_go/db"
	"obit_pipeline_go/models"
	"obit_pipeline_go/services"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

// Engine is the shared pipeline engine, wired in main after the schema
// check passes.
var Engine *services.PipelineEngine

// notesPolicy strips markup from caller-supplied notes before they reach
// the engine. Caller-side input hygiene; the engine stores verbatim.
var notesPolicy = bluemonday.StrictPolicy()

// statusError maps the service error taxonomy onto HTTP statuses
func statusError(err error) *echo.HTTPError {
	switch {
	case services.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case services.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// GetStageCountsHandler returns the contact count per pipeline stage
func GetStageCountsHandler(c echo.Context) error {
	counts, err := services.CountByStage(db.DB)
	if err != nil {
		return statusError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

// GetPipelineCardsHandler returns the assembled cards for one stage,
// optionally filtered by city substring
func GetPipelineCardsHandler(c echo.Context) error {
	stage := c.Param("stage")
	city := c.QueryParam("city")

	limit := services.DefaultCardsPerPage
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	cards, err := services.FetchPipelineCards(db.DB, stage, limit, city)
	if err != nil {
		return statusError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"stage": stage,
		"cards": cards,
	})
}

// GetContactDetailHandler returns a contact with its linked case and
// relationship label
func GetContactDetailHandler(c echo.Context) error {
	detail, err := services.FetchContactDetail(db.DB, c.Param("id"))
	if err != nil {
		return statusError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

type moveStageRequest struct {
	Stage string `json:"stage"`
}

// MoveContactStageHandler moves a contact to a new pipeline stage and
// reports the cascade outcome
func MoveContactStageHandler(c echo.Context) error {
	var req moveStageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	contactID := c.Param("id")
	result, err := Engine.MoveToStage(contactID, req.Stage)
	if err != nil {
		return statusError(err)
	}

	// A win is worth telling someone about. Best effort, never blocking.
	if result.Stage == models.StageWon {
		if cfg, ok := c.Get("config").(*config.Config); ok {
			if detail, derr := services.FetchContactDetail(db.DB, contactID); derr == nil {
				caseName := services.NoLinkedCase
				if detail.Case != nil {
					caseName = detail.Case.Name
				}
				services.SendWinNotificationAsync(cfg, detail.Contact.Name, caseName, result.ClosedCount)
			}
		}
	}

	return c.JSON(http.StatusOK, result)
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

// UpdateContactNotesHandler overwrites a contact's notes
func UpdateContactNotesHandler(c echo.Context) error {
	var req updateNotesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := Engine.UpdateNotes(c.Param("id"), notesPolicy.Sanitize(req.Notes)); err != nil {
		return statusError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notes saved"})
}
