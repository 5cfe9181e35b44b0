package web

// handlers_common.go holds helpers shared by page and API handlers.

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvconvert/internal/core"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// uploadFields are the form fields that may carry CSV files.
var uploadFields = []string{"files", "file"}

// readUploadedFiles reads every uploaded file of a multipart request.
// The request body is capped at the configured upload size.
func (s *Server) readUploadedFiles(w http.ResponseWriter, r *http.Request) ([]core.RawFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if strings.Contains(err.Error(), "too large") {
			return nil, fmt.Errorf("file too large: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}
	defer r.MultipartForm.RemoveAll()

	var files []core.RawFile
	for _, field := range uploadFields {
		for _, fh := range r.MultipartForm.File[field] {
			f, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("open %q: %w", fh.Filename, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("read %q: %w", fh.Filename, err)
			}
			files = append(files, core.RawFile{Name: fh.Filename, Data: data})
		}
	}

	if len(files) == 0 {
		return nil, core.ErrNoFile
	}
	return files, nil
}

// parseTransformForm builds a transform from the review form. The form
// repeats "column" (current names, in order) and "name" (new names, same
// order), lists dropped columns under "drop", and enables filling with
// "fill". Renames of dropped columns are ignored.
func parseTransformForm(r *http.Request) (core.TransformRequest, error) {
	if err := r.ParseForm(); err != nil {
		return core.TransformRequest{}, fmt.Errorf("invalid form: %w", err)
	}

	req := core.TransformRequest{
		Drop:        r.PostForm["drop"],
		FillMissing: r.PostForm.Get("fill") != "",
		FillValue:   r.PostForm.Get("fill_value"),
		Rename:      make(map[string]string),
	}

	dropped := make(map[string]bool, len(req.Drop))
	for _, d := range req.Drop {
		dropped[d] = true
	}

	columns := r.PostForm["column"]
	names := r.PostForm["name"]
	for i, col := range columns {
		if dropped[col] || i >= len(names) {
			continue
		}
		if renamed := strings.TrimSpace(names[i]); renamed != col {
			req.Rename[col] = renamed
		}
	}

	return req, nil
}

// writeWorkbook sends an export as a download.
func writeWorkbook(w http.ResponseWriter, res *core.ExportResult) {
	w.Header().Set("Content-Type", core.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, res.FileName))
	w.Header().Set("Content-Length", fmt.Sprint(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}
