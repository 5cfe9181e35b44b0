package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/csvconvert/internal/core"
)

func TestRespondError_LogLevel(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		wantLevel string
		wantCode  string
	}{
		{"mapped client error", fmt.Errorf("drop %q: %w", "x", core.ErrUnknownColumn), http.StatusUnprocessableEntity, "WARN", "TBL001"},
		{"malformed request", errors.New("invalid request body: unexpected EOF"), http.StatusBadRequest, "WARN", "REQ001"},
		{"unmapped client error", errors.New("strange failure"), http.StatusBadRequest, "ERROR", "ERR000"},
		{"mapped server error", core.ErrTooManyUploads, http.StatusServiceUnavailable, "ERROR", "UPL001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
			t.Cleanup(func() { slog.SetDefault(prev) })

			req := httptest.NewRequest(http.MethodGet, "/api/tables/x", nil)
			rec := httptest.NewRecorder()
			respondError(rec, req, tt.err, tt.status)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeError(t, rec).Code; got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}

			var entry struct {
				Level string `json:"level"`
			}
			if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
				t.Fatalf("decode log line %q: %v", logs.String(), err)
			}
			if entry.Level != tt.wantLevel {
				t.Errorf("log level = %q, want %q", entry.Level, tt.wantLevel)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"oversized body", fmt.Errorf("invalid request body: %w", &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{"malformed body", errors.New("invalid request body: unexpected EOF"), http.StatusBadRequest},
		{"malformed form", errors.New("invalid form: invalid URL escape"), http.StatusBadRequest},
		{"expired session", core.ErrSessionNotFound, http.StatusNotFound},
		{"rate limited", errRateLimited, http.StatusTooManyRequests},
		{"unknown", errors.New("strange failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
