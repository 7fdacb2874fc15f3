package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// AllowedDocumentExtensions is the upload allowlist enforced at the call
// site (handler policy, not engine policy).
var AllowedDocumentExtensions = []string{"pdf", "png", "jpg", "jpeg", "doc", "docx"}

// IsAllowedDocumentExtension checks a filename against the allowlist.
func IsAllowedDocumentExtension(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return false
	}
	ext := strings.ToLower(filename[idx+1:])
	for _, allowed := range AllowedDocumentExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// UploadCaseDocument stores a document under the case's prefix, keyed
// <caseID>/<8-hex>_<filename>, and returns the stored path.
func UploadCaseDocument(ctx context.Context, storage StorageProvider, caseID string, reader io.Reader, filename, contentType string, size int64) (*StorageResult, error) {
	if caseID == "" {
		return nil, &ValidationError{Field: "case_id", Reason: "must not be empty"}
	}
	if filename == "" {
		return nil, &ValidationError{Field: "filename", Reason: "must not be empty"}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := GenerateCaseDocumentKey(caseID, filename)
	result, err := storage.UploadReader(ctx, reader, key, contentType, size)
	if err != nil {
		return nil, fmt.Errorf("failed to upload case document: %w", err)
	}
	result.FileOriginalName = filename
	return result, nil
}

// ListCaseDocuments returns the documents stored for a case.
func ListCaseDocuments(ctx context.Context, storage StorageProvider, caseID string) ([]ObjectInfo, error) {
	if caseID == "" {
		return nil, &ValidationError{Field: "case_id", Reason: "must not be empty"}
	}
	return storage.List(ctx, caseID)
}

// caseDocumentKey joins a case prefix and a stored object name. Names
// carrying path separators or ".." would escape the case prefix and are
// rejected.
func caseDocumentKey(caseID, name string) (string, error) {
	if caseID == "" {
		return "", &ValidationError{Field: "case_id", Reason: "must not be empty"}
	}
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", &ValidationError{Field: "name", Reason: "invalid document name"}
	}
	return caseID + "/" + name, nil
}

// OpenCaseDocument returns a reader over one stored document plus its
// content type. The name is the object name as returned by
// ListCaseDocuments.
func OpenCaseDocument(ctx context.Context, storage StorageProvider, caseID, name string) (io.ReadCloser, string, error) {
	key, err := caseDocumentKey(caseID, name)
	if err != nil {
		return nil, "", err
	}
	reader, contentType, err := storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", &NotFoundError{Entity: "document", ID: name}
		}
		return nil, "", fmt.Errorf("failed to open case document: %w", err)
	}
	return reader, contentType, nil
}

// SignCaseDocumentURL returns a temporary download URL for one stored
// document.
func SignCaseDocumentURL(ctx context.Context, storage StorageProvider, caseID, name string, expiration time.Duration) (string, error) {
	key, err := caseDocumentKey(caseID, name)
	if err != nil {
		return "", err
	}
	return storage.GetSignedURL(ctx, key, expiration)
}

// DeleteCaseDocument removes one stored document. Deleting a name that
// is already gone is not an error.
func DeleteCaseDocument(ctx context.Context, storage StorageProvider, caseID, name string) error {
	key, err := caseDocumentKey(caseID, name)
	if err != nil {
		return err
	}
	if err := storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete case document: %w", err)
	}
	return nil
}
