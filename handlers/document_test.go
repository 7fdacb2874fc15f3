package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"obit_pipeline_go/models"
	"obit_pipeline_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadCaseDocumentHandler(t *testing.T) {
	database := setupTestDB(t)

	kase := &models.Case{Name: "John Doe"}
	require.NoError(t, database.Create(kase).Error)

	body, contentType := multipartUpload(t, "obituary.pdf", "pdf bytes")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/cases/"+kase.ID+"/documents", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(kase.ID)

	require.NoError(t, UploadCaseDocumentHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "obituary.pdf", resp["name"])

	docs, err := services.ListCaseDocuments(c.Request().Context(), services.Storage, kase.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUploadCaseDocumentHandler_RejectsDisallowedExtension(t *testing.T) {
	database := setupTestDB(t)

	kase := &models.Case{Name: "John Doe"}
	require.NoError(t, database.Create(kase).Error)

	body, contentType := multipartUpload(t, "malware.exe", "nope")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/cases/"+kase.ID+"/documents", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(kase.ID)

	err := UploadCaseDocumentHandler(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestUploadCaseDocumentHandler_CaseNotFound(t *testing.T) {
	setupTestDB(t)

	body, contentType := multipartUpload(t, "scan.pdf", "pdf bytes")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/cases/missing/documents", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := UploadCaseDocumentHandler(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

// uploadTestDocument stores a document for the case and returns its
// stored object name.
func uploadTestDocument(t *testing.T, caseID, filename, content string) string {
	result, err := services.UploadCaseDocument(context.Background(), services.Storage,
		caseID, strings.NewReader(content), filename, "application/pdf", int64(len(content)))
	require.NoError(t, err)
	return strings.TrimPrefix(result.Key, caseID+"/")
}

func TestDownloadCaseDocumentHandler(t *testing.T) {
	database := setupTestDB(t)

	kase := &models.Case{Name: "John Doe"}
	require.NoError(t, database.Create(kase).Error)
	name := uploadTestDocument(t, kase.ID, "scan.pdf", "pdf bytes")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cases/"+kase.ID+"/documents/"+name, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "name")
	c.SetParamValues(kase.ID, name)

	require.NoError(t, DownloadCaseDocumentHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf bytes", rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), name)
}

func TestDownloadCaseDocumentHandler_NotFound(t *testing.T) {
	database := setupTestDB(t)

	kase := &models.Case{Name: "John Doe"}
	require.NoError(t, database.Create(kase).Error)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cases/"+kase.ID+"/documents/missing.pdf", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "name")
	c.SetParamValues(kase.ID, "missing.pdf")

	err := DownloadCaseDocumentHandler(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestDeleteCaseDocumentHandler(t *testing.T) {
	database := setupTestDB(t)

	kase := &models.Case{Name: "John Doe"}
	require.NoError(t, database.Create(kase).Error)
	name := uploadTestDocument(t, kase.ID, "scan.pdf", "pdf bytes")

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/cases/"+kase.ID+"/documents/"+name, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "name")
	c.SetParamValues(kase.ID, name)

	require.NoError(t, DeleteCaseDocumentHandler(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	docs, err := services.ListCaseDocuments(context.Background(), services.Storage, kase.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDeleteCaseDocumentHandler_RejectsEscapingName(t *testing.T) {
	database := setupTestDB(t)

	kase := &models.Case{Name: "John Doe"}
	require.NoError(t, database.Create(kase).Error)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/cases/"+kase.ID+"/documents/..", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "name")
	c.SetParamValues(kase.ID, "..")

	err := DeleteCaseDocumentHandler(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestListCaseDocumentsHandler_Empty(t *testing.T) {
	database := setupTestDB(t)

	kase := &models.Case{Name: "John Doe"}
	require.NoError(t, database.Create(kase).Error)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cases/"+kase.ID+"/documents", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(kase.ID)

	require.NoError(t, ListCaseDocumentsHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Documents []services.ObjectInfo `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Documents)
}
