package web

import (
	"net/http"

	"github.com/JonMunkholm/csvconvert/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := templates.UploadPage(templates.UploadPageData{
		MaxFiles:  s.cfg.Upload.MaxFiles,
		MaxSizeMB: s.cfg.Upload.MaxFileSize >> 20,
		Encodings: s.cfg.Convert.Encodings,
	})
	templ.Handler(page).ServeHTTP(w, r)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConvert reads the uploaded files and renders the review page.
// Files that cannot be read are shown as errors next to the others.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploadedFiles(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	results, err := s.service.ConvertFiles(ctx, files)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	page := templates.ResultsPage(templates.ResultsPageData{
		Results:   results,
		FillValue: s.cfg.Convert.FillValue,
	})
	templ.Handler(page).ServeHTTP(w, r)
}

// handleDownload applies the review form to a copy of the table and sends
// the workbook.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := parseTransformForm(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	res, err := s.service.ExportTransformed(WithRequestMetadata(r.Context(), r), id, req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeWorkbook(w, res)
}
