package httpadapter

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

const multipartMemory = 32 << 20

func (rt *Router) organizeFiles(w http.ResponseWriter, r *http.Request) {
	userID, ok := rt.authorizeUpload(w, r)
	if !ok {
		return
	}
	files, err := rt.readUploads(w, r, "files")
	if err != nil {
		writeDomainError(w, r, "organize", err)
		return
	}

	results, err := rt.organizer.Organize(r.Context(), userID, files)
	if err != nil {
		writeDomainError(w, r, "organize", err)
		return
	}

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	if rt.metrics != nil {
		rt.metrics.RecordUploads(serviceName, "sync", len(results)-failed, failed)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"results": results,
	})
}

func (rt *Router) stageFiles(w http.ResponseWriter, r *http.Request) {
	userID, ok := rt.authorizeUpload(w, r)
	if !ok {
		return
	}
	files, err := rt.readUploads(w, r, "files")
	if err != nil {
		writeDomainError(w, r, "stage", err)
		return
	}

	jobs, err := rt.organizer.Stage(r.Context(), userID, files)
	if rt.metrics != nil {
		rt.metrics.RecordUploads(serviceName, "async", len(jobs), len(files)-len(jobs))
	}
	if err != nil {
		if len(jobs) == 0 {
			writeDomainError(w, r, "stage", err)
			return
		}
		// Jobs already published will still be organized.
		status := mapErrorToHTTPStatus(err)
		writeJSON(w, status, map[string]any{
			"error": http.StatusText(status),
			"jobs":  jobs,
		})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"user_id": userID,
		"jobs":    jobs,
	})
}

func (rt *Router) classifyFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}
	files, err := rt.readUploads(w, r, "file")
	if err != nil {
		writeDomainError(w, r, "classify", err)
		return
	}
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one multipart field 'file' is required")
		return
	}

	decision, extraction := rt.organizer.Preview(r.Context(), files[0])
	writeJSON(w, http.StatusOK, map[string]any{
		"filename":   files[0].Filename,
		"decision":   decision,
		"extraction": extraction,
	})
}

func (rt *Router) authorizeUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return "", false
	}
	userID := r.PathValue("userID")
	if !principal.CanAccess(userID) {
		writeError(w, http.StatusForbidden, "cannot upload for another user")
		return "", false
	}
	return userID, true
}

func (rt *Router) readUploads(w http.ResponseWriter, r *http.Request, field string) ([]domain.UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse multipart", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse multipart",
			fmt.Errorf("multipart field '%s' is required", field))
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, header := range headers {
		content, err := readPart(header)
		if err != nil {
			return nil, err
		}
		files = append(files, domain.UploadedFile{Filename: header.Filename, Content: content})
	}
	return files, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open part %q: %w", header.Filename, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read part %q: %w", header.Filename, err)
	}
	return content, nil
}
