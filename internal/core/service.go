package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/csvconvert/internal/config"
	"github.com/JonMunkholm/csvconvert/internal/logging"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSessionNotFound is returned for unknown or expired upload IDs.
	ErrSessionNotFound = errors.New("upload not found or expired")

	// ErrNoFile is returned when a batch contains no files.
	ErrNoFile = errors.New("no file provided")

	// ErrEmptyFile is returned for a zero-byte upload.
	ErrEmptyFile = errors.New("empty file")

	// ErrTooManyFiles is returned when a batch exceeds the configured limit.
	ErrTooManyFiles = errors.New("too many files")
)

// Service provides the conversion workflow: read uploaded CSV files, keep
// each table in an expiring in-memory session while the user reviews it,
// apply edits, and render the workbook.
type Service struct {
	cfg       *config.Config
	encodings []Encoding
	limiter   *UploadLimiter
	sessions  *expirable.LRU[string, *session]
}

// session is one uploaded table awaiting export.
type session struct {
	mu       sync.Mutex
	id       string
	fileName string
	encoding string
	created  time.Time
	table    *Table
}

// NewService creates a Service from configuration.
func NewService(cfg *config.Config) (*Service, error) {
	encodings, err := ParseEncodings(cfg.Convert.Encodings)
	if err != nil {
		return nil, fmt.Errorf("convert encodings: %w", err)
	}

	onEvict := func(id string, sess *session) {
		log := logging.WithFields(context.Background(), "upload_id", id, "file", sess.fileName)
		log.Debug("session evicted", "age", time.Since(sess.created).Round(time.Second))
	}

	return &Service{
		cfg:       cfg,
		encodings: encodings,
		limiter:   NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		sessions:  expirable.NewLRU[string, *session](cfg.Session.CacheSize, onEvict, cfg.Session.TTL),
	}, nil
}

// ConvertFiles reads a batch of uploaded files. The whole batch holds one
// upload slot; files inside it are read in parallel. Each file gets its own
// result, so a file that cannot be read never stops the others. The returned
// error is set only when the batch as a whole is rejected.
func (s *Service) ConvertFiles(ctx context.Context, files []RawFile) ([]FileResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFile
	}
	if len(files) > s.cfg.Upload.MaxFiles {
		return nil, fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(files), s.cfg.Upload.MaxFiles)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Upload.Timeout)
	defer cancel()

	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Upload.MaxConcurrent)
	for i, f := range files {
		g.Go(func() error {
			results[i] = s.convertFile(gctx, f)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	logging.FromContext(ctx).Info("batch converted",
		"files", len(files),
		"failed", failed,
		"ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)

	return results, nil
}

// convertFile reads one file and opens a session for it.
func (s *Service) convertFile(ctx context.Context, f RawFile) FileResult {
	start := time.Now()
	log := logging.WithFields(ctx, "file", f.Name, "bytes", len(f.Data))

	fail := func(err error) FileResult {
		msg := MapError(err)
		log.Warn("file not converted", "error", err, "code", msg.Code)
		return FileResult{
			FileName: f.Name,
			Error:    msg.Message,
			Action:   msg.Action,
			Code:     msg.Code,
			Duration: time.Since(start),
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if len(f.Data) == 0 {
		return fail(ErrEmptyFile)
	}

	t, enc, err := ReadTable(f.Name, f.Data, s.encodings...)
	if err != nil {
		return fail(err)
	}

	sess := &session{
		id:       uuid.NewString(),
		fileName: f.Name,
		encoding: enc.Name,
		created:  time.Now(),
		table:    t,
	}
	s.sessions.Add(sess.id, sess)

	log.Info("file converted",
		"upload_id", sess.id,
		"encoding", enc.Name,
		"rows", t.NumRows(),
		"columns", t.NumColumns(),
	)

	return FileResult{
		FileName: f.Name,
		Table:    s.summarize(sess),
		Duration: time.Since(start),
	}
}

// lookup returns a live session.
func (s *Service) lookup(id string) (*session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Session returns the summary of an uploaded table.
func (s *Service) Session(id string) (*TableSummary, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.summarize(sess), nil
}

// Transform applies edits to a session's table. Edits run on a copy that
// replaces the stored table only when every edit succeeds.
func (s *Service) Transform(ctx context.Context, id string, req TransformRequest) (*TableSummary, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	next := sess.table.Clone()
	if err := ApplyTransform(next, req, s.cfg.Convert.SampleSize, s.cfg.Convert.FillValue); err != nil {
		return nil, err
	}
	sess.table = next
	s.sessions.Add(id, sess)

	logging.WithFields(ctx, "upload_id", id, "file", sess.fileName).Info("table transformed",
		"dropped", len(req.Drop),
		"renamed", len(req.Rename),
		"filled", req.FillMissing,
		"suggested", req.ApplySuggestions,
	)

	return s.summarize(sess), nil
}

// ApplyTransform edits t in place in the fixed order drop, fill, rename.
// Suggestions are computed after the drop and before the fill, so filled
// placeholders do not change what a column looks like to the classifier.
// Explicit renames win over suggestions. An empty fill value falls back to
// defaultFill, then to DefaultFillValue.
func ApplyTransform(t *Table, req TransformRequest, sampleSize int, defaultFill string) error {
	if err := t.DropColumns(req.Drop...); err != nil {
		return err
	}

	rename := make(map[string]string, len(req.Rename))
	for old, renamed := range req.Rename {
		if old != renamed {
			rename[old] = renamed
		}
	}

	if req.ApplySuggestions {
		for _, sg := range SuggestNames(t, sampleSize) {
			if !sg.Placeholder || sg.Suggested == sg.Column {
				continue
			}
			if _, explicit := req.Rename[sg.Column]; explicit {
				continue
			}
			rename[sg.Column] = sg.Suggested
		}
	}

	if req.FillMissing {
		value := req.FillValue
		if value == "" {
			value = defaultFill
		}
		if value == "" {
			value = DefaultFillValue
		}
		t.FillMissing(value)
	}

	return t.RenameColumns(rename)
}

// Export renders a session's table as a workbook.
func (s *Service) Export(ctx context.Context, id string) (*ExportResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	data, err := ExportXLSX(sess.table)
	name := ExportFileName(sess.fileName)
	sess.mu.Unlock()
	if err != nil {
		return nil, err
	}

	logging.WithFields(ctx, "upload_id", id, "file", sess.fileName).Info("table exported",
		"export", name,
		"bytes", len(data),
	)

	return &ExportResult{FileName: name, Data: data}, nil
}

// ExportTransformed applies req to a copy of a session's table and renders
// the copy. The stored table is left as uploaded, so the review form can be
// submitted again with different choices.
func (s *Service) ExportTransformed(ctx context.Context, id string, req TransformRequest) (*ExportResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	t := sess.table.Clone()
	sess.mu.Unlock()

	if err := ApplyTransform(t, req, s.cfg.Convert.SampleSize, s.cfg.Convert.FillValue); err != nil {
		return nil, err
	}
	data, err := ExportXLSX(t)
	if err != nil {
		return nil, err
	}
	name := ExportFileName(sess.fileName)

	logging.WithFields(ctx, "upload_id", id, "file", sess.fileName).Info("table exported",
		"export", name,
		"bytes", len(data),
		"dropped", len(req.Drop),
		"renamed", len(req.Rename),
	)

	return &ExportResult{FileName: name, Data: data}, nil
}

// Discard drops a session. Unknown IDs are ignored.
func (s *Service) Discard(id string) {
	s.sessions.Remove(id)
}

// Classify labels a list of raw values. Missing markers are skipped and at
// most the configured sample size is used.
func (s *Service) Classify(values []string) Label {
	sample := make([]string, 0, s.cfg.Convert.SampleSize)
	for _, v := range values {
		if len(sample) >= s.cfg.Convert.SampleSize {
			break
		}
		if IsNAValue(v) {
			continue
		}
		sample = append(sample, v)
	}
	return Classify(sample)
}

// ServiceStatus is a snapshot for monitoring.
type ServiceStatus struct {
	Uploads  UploadLimiterStatus `json:"uploads"`
	Sessions int                 `json:"sessions"`
}

// Status returns limiter and session counts.
func (s *Service) Status() ServiceStatus {
	return ServiceStatus{
		Uploads:  s.limiter.Status(),
		Sessions: s.sessions.Len(),
	}
}

// WaitForConversions blocks until no batch is being converted or ctx ends.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// summarize builds the display summary. Callers hold sess.mu or own sess.
func (s *Service) summarize(sess *session) *TableSummary {
	t := sess.table
	suggestions := SuggestNames(t, s.cfg.Convert.SampleSize)

	cols := make([]ColumnSummary, len(t.Columns))
	for i := range t.Columns {
		cols[i] = ColumnSummary{
			Name:       t.Columns[i].Name,
			Kind:       t.Columns[i].Kind(),
			Missing:    t.Columns[i].MissingCount(),
			Suggestion: suggestions[i],
		}
	}

	return &TableSummary{
		ID:       sess.id,
		FileName: sess.fileName,
		Encoding: sess.encoding,
		Rows:     t.NumRows(),
		Columns:  cols,
		Preview:  t.Head(s.cfg.Convert.PreviewRows).Rows(),
	}
}
