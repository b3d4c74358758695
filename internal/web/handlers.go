package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recruitpipe/importer/internal/importer"
	"github.com/recruitpipe/importer/internal/mapping"
	"github.com/recruitpipe/importer/internal/schema"
	"github.com/recruitpipe/importer/internal/tabular"
)

// handleAnalyze accepts a multipart upload, parses it, and responds with the
// detected structure and proposed column mappings.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if _, err := tenantFrom(r); err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	kind, ok := schema.ParseEntityKind(r.FormValue("entityKind"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown entity kind %q", r.FormValue("entityKind")))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to read file")
		return
	}

	analysis, err := s.service.Analyze(r.Context(), data, tabular.DetectFormat(header.Filename), kind)
	if err != nil {
		if errors.Is(err, tabular.ErrUnreadableFile) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// executeRequest is the body of the execute call: the reviewed mappings.
type executeRequest struct {
	Mappings []mapping.ColumnMapping `json:"mappings"`
}

// handleExecute runs a previously analyzed upload with confirmed mappings.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantFrom(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	uploadID := chi.URLParam(r, "uploadID")

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Mappings) == 0 {
		writeError(w, r, http.StatusBadRequest, "mappings are required")
		return
	}

	result, err := s.service.Execute(r.Context(), uploadID, req.Mappings, tenant)
	if err != nil {
		if errors.Is(err, importer.ErrUploadNotFound) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// tenantFrom extracts the tenant and acting user from request headers.
func tenantFrom(r *http.Request) (importer.TenantContext, error) {
	tenantID, err := uuid.Parse(r.Header.Get("X-Tenant-ID"))
	if err != nil {
		return importer.TenantContext{}, errors.New("missing or invalid X-Tenant-ID header")
	}
	userID, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		return importer.TenantContext{}, errors.New("missing or invalid X-User-ID header")
	}
	return importer.TenantContext{TenantID: tenantID, UserID: userID}, nil
}
