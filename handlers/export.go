package handlers

import (
	"fmt"
	"net/http"
	"time"

	"obit_pipeline_go/db"
	"obit_pipeline_go/services"

	"github.com/labstack/echo/v4"
)

// ExportPipelineHandler streams the pipeline report workbook, one sheet
// per stage
func ExportPipelineHandler(c echo.Context) error {
	buf, err := services.ExportPipelineReport(db.DB)
	if err != nil {
		return statusError(err)
	}

	filename := fmt.Sprintf("pipeline_report_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
