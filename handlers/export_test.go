package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"obit_pipeline_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportPipelineHandler(t *testing.T) {
	database := setupTestDB(t)

	kase := &models.Case{Name: "John Doe", City: "Springfield"}
	require.NoError(t, database.Create(kase).Error)
	linkContact(t, database, kase.ID, "Alice", models.StageNew, "daughter")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/export/pipeline.xlsx", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, ExportPipelineHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "pipeline_report_")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue(models.StageNew, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
}
