package handlers

import (
	"errors"
	"net/http"
	"time"

	"obit_pipeline_go/db"
	"obit_pipeline_go/models"
	"obit_pipeline_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// caseExists verifies the target case before touching storage
func caseExists(caseID string) error {
	var record models.Case
	if err := db.DB.Select("id").First(&record, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &services.NotFoundError{Entity: "case", ID: caseID}
		}
		return err
	}
	return nil
}

// UploadCaseDocumentHandler stores an uploaded document under the case.
// The extension allowlist is enforced here: caller-side policy.
func UploadCaseDocumentHandler(c echo.Context) error {
	caseID := c.Param("id")
	if err := caseExists(caseID); err != nil {
		return statusError(err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	if !services.IsAllowedDocumentExtension(file.Filename) {
		return echo.NewHTTPError(http.StatusBadRequest,
			"file type not allowed (pdf, png, jpg, jpeg, doc, docx)")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read upload")
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	result, err := services.UploadCaseDocument(
		c.Request().Context(), services.Storage, caseID,
		src, file.Filename, contentType, file.Size)
	if err != nil {
		return statusError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"name": result.FileOriginalName,
		"path": result.Key,
		"size": result.FileSize,
	})
}

// DownloadCaseDocumentHandler serves one stored document. R2 hands out a
// short-lived signed URL; local storage streams the file directly.
func DownloadCaseDocumentHandler(c echo.Context) error {
	caseID := c.Param("id")
	name := c.Param("name")
	if err := caseExists(caseID); err != nil {
		return statusError(err)
	}

	ctx := c.Request().Context()
	if _, ok := services.Storage.(*services.R2Storage); ok {
		url, err := services.SignCaseDocumentURL(ctx, services.Storage, caseID, name, 15*time.Minute)
		if err != nil {
			return statusError(err)
		}
		return c.Redirect(http.StatusTemporaryRedirect, url)
	}

	reader, contentType, err := services.OpenCaseDocument(ctx, services.Storage, caseID, name)
	if err != nil {
		return statusError(err)
	}
	defer reader.Close()

	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	return c.Stream(http.StatusOK, contentType, reader)
}

// DeleteCaseDocumentHandler removes one stored document from the case
func DeleteCaseDocumentHandler(c echo.Context) error {
	caseID := c.Param("id")
	if err := caseExists(caseID); err != nil {
		return statusError(err)
	}

	if err := services.DeleteCaseDocument(c.Request().Context(), services.Storage, caseID, c.Param("name")); err != nil {
		return statusError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCaseDocumentsHandler lists the documents stored for a case
func ListCaseDocumentsHandler(c echo.Context) error {
	caseID := c.Param("id")
	if err := caseExists(caseID); err != nil {
		return statusError(err)
	}

	documents, err := services.ListCaseDocuments(c.Request().Context(), services.Storage, caseID)
	if err != nil {
		return statusError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"case_id":   caseID,
		"documents": documents,
	})
}
