package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"obit_pipeline_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCasesHandler_Pagination(t *testing.T) {
	database := setupTestDB(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 45; i++ {
		dod := base.AddDate(0, 0, i)
		require.NoError(t, database.Create(&models.Case{
			Name:        fmt.Sprintf("Case %02d", i),
			City:        "Springfield",
			DateOfDeath: &dod,
		}).Error)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cases?offset=40&limit=20", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, GetCasesHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Cases      []models.Case `json:"cases"`
		Total      int64         `json:"total"`
		NextOffset int           `json:"next_offset"`
		PrevOffset int           `json:"prev_offset"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(45), resp.Total)
	assert.Len(t, resp.Cases, 5)
	// Forward paging clamps on the last page; backward steps a full page
	assert.Equal(t, 40, resp.NextOffset)
	assert.Equal(t, 20, resp.PrevOffset)
}

func TestGetCasesHandler_CityAndDateFilters(t *testing.T) {
	database := setupTestDB(t)

	inRange := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)
	outOfRange := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	require.NoError(t, database.Create(&models.Case{Name: "Matching", City: "Springfield", DateOfDeath: &inRange}).Error)
	require.NoError(t, database.Create(&models.Case{Name: "Wrong City", City: "Fairview", DateOfDeath: &inRange}).Error)
	require.NoError(t, database.Create(&models.Case{Name: "Wrong Date", City: "Springfield", DateOfDeath: &outOfRange}).Error)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/api/cases?city=spring&date_start=2026-02-01&date_end=2026-02-28", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, GetCasesHandler(c))

	var resp struct {
		Cases []models.Case `json:"cases"`
		Total int64         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Cases, 1)
	assert.Equal(t, "Matching", resp.Cases[0].Name)
}

func TestGetCasesHandler_BadDate(t *testing.T) {
	setupTestDB(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cases?date_start=02-01-2026", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := GetCasesHandler(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
