package httpadapter

import (
	"bytes"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

func (rt *Router) listUserFiles(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	userID := r.PathValue("userID")
	grouped, err := rt.library.ListByUser(r.Context(), principal, userID)
	if err != nil {
		writeDomainError(w, r, "list user files", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":    userID,
		"categories": grouped,
	})
}

func (rt *Router) listAllFiles(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	grouped, err := rt.library.ListAll(r.Context(), principal)
	if err != nil {
		writeDomainError(w, r, "list all files", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": grouped})
}

func (rt *Router) userStats(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	stats, err := rt.library.Stats(r.Context(), principal, r.PathValue("userID"))
	if err != nil {
		writeDomainError(w, r, "user stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) archiveCategory(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	category := domain.Category(r.PathValue("category"))

	var buf bytes.Buffer
	if err := rt.library.ArchiveCategory(r.Context(), principal, r.PathValue("userID"), category, &buf); err != nil {
		writeDomainError(w, r, "archive category", err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": category.String() + ".zip",
	}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (rt *Router) downloadFile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	fileID, ok := parseFileID(w, r)
	if !ok {
		return
	}

	rec, body, err := rt.library.Download(r.Context(), principal, fileID)
	if err != nil {
		writeDomainError(w, r, "download file", err)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(filepath.Ext(rec.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": rec.Filename,
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("download_interrupted",
			"request_id", requestIDFromContext(r.Context()),
			"file_id", fileID,
			"error", err,
		)
	}
}

func (rt *Router) deleteFile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	fileID, ok := parseFileID(w, r)
	if !ok {
		return
	}
	if err := rt.library.DeleteFile(r.Context(), principal, fileID); err != nil {
		writeDomainError(w, r, "delete file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) deleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := rt.library.DeleteUser(r.Context(), principal, r.PathValue("userID")); err != nil {
		writeDomainError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseFileID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	fileID, err := strconv.ParseInt(r.PathValue("fileID"), 10, 64)
	if err != nil || fileID <= 0 {
		writeError(w, http.StatusBadRequest, "file id must be a positive integer")
		return 0, false
	}
	return fileID, true
}
