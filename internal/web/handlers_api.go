package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/csvconvert/internal/core"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// UploadResponse is the JSON result of an upload batch.
type UploadResponse struct {
	Files     []core.FileResult `json:"files"`
	Converted int               `json:"converted"`
	Failed    int               `json:"failed"`
}

// ClassifyRequest is the body of POST /api/classify.
type ClassifyRequest struct {
	Values []string `json:"values"`
}

// ClassifyResponse is the label for a list of values.
type ClassifyResponse struct {
	Label core.Label `json:"label"`
}

// handleAPIUpload converts uploaded files and returns one result per file.
func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploadedFiles(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	results, err := s.service.ConvertFiles(WithRequestMetadata(r.Context(), r), files)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	resp := UploadResponse{Files: results}
	for _, res := range results {
		if res.OK() {
			resp.Converted++
		} else {
			resp.Failed++
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleAPIGetTable returns the current state of an uploaded table.
func (s *Server) handleAPIGetTable(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// handleAPIDiscardTable forgets an uploaded table.
func (s *Server) handleAPIDiscardTable(w http.ResponseWriter, r *http.Request) {
	s.service.Discard(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleAPITransform applies edits to an uploaded table.
func (s *Server) handleAPITransform(w http.ResponseWriter, r *http.Request) {
	var req core.TransformRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	summary, err := s.service.Transform(WithRequestMetadata(r.Context(), r), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// handleAPIExport sends an uploaded table as a workbook.
func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Export(WithRequestMetadata(r.Context(), r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeWorkbook(w, res)
}

// handleAPIClassify labels a list of values.
func (s *Server) handleAPIClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, ClassifyResponse{Label: s.service.Classify(req.Values)})
}

// handleAPIStatus returns the current state of the upload limiter and the
// session store. Used for monitoring.
func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Status())
}

// decodeJSON reads a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
