package core

// reader.go implements the encoding-resolving CSV reader.
//
// Uploaded files arrive in an unknown text encoding. ReadTable tries each
// candidate encoding in order and returns the first table that both decodes
// and parses. There is no scoring between candidates: first success wins.
//
// Every attempt wraps a fresh bytes.Reader over the caller's raw bytes, so a
// failed attempt cannot leave a half-consumed cursor for the next one and the
// raw bytes are never modified. ReadTable is safe for concurrent use.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrReadFailure is returned when no candidate encoding yields a parseable
// table. It is a per-file failure: batch callers report it and continue.
var ErrReadFailure = errors.New("file could not be read with any supported encoding")

// errNoHeader is the parse failure for a stream without a header row.
var errNoHeader = errors.New("empty file: no header row")

// Encoding is a candidate text encoding for uploaded files.
type Encoding struct {
	Name string

	// decoder returns a fresh transformer from the encoding to UTF-8.
	// Transformers are stateful, so each attempt needs its own.
	decoder func() transform.Transformer
}

// Candidate encodings. UTF-8 is validated rather than decoded so that the
// first invalid byte fails the attempt instead of becoming U+FFFD.
var (
	UTF8 = Encoding{
		Name:    "utf-8",
		decoder: func() transform.Transformer { return encoding.UTF8Validator },
	}
	Latin1 = Encoding{
		Name:    "latin-1",
		decoder: func() transform.Transformer { return charmap.ISO8859_1.NewDecoder() },
	}
	Windows1252 = Encoding{
		Name:    "cp1252",
		decoder: func() transform.Transformer { return charmap.Windows1252.NewDecoder() },
	}
)

// DefaultEncodings is the fixed candidate priority for uploads.
// Latin-1 maps every byte, so Windows-1252 is only reached with custom lists.
var DefaultEncodings = []Encoding{UTF8, Latin1, Windows1252}

// encodingAliases maps accepted names to candidates (lowercase keys).
var encodingAliases = map[string]Encoding{
	"utf-8":        UTF8,
	"utf8":         UTF8,
	"latin-1":      Latin1,
	"latin1":       Latin1,
	"iso-8859-1":   Latin1,
	"cp1252":       Windows1252,
	"windows-1252": Windows1252,
}

// EncodingByName looks up a candidate by name (case-insensitive).
func EncodingByName(name string) (Encoding, bool) {
	enc, ok := encodingAliases[strings.ToLower(strings.TrimSpace(name))]
	return enc, ok
}

// ParseEncodings resolves a list of names into candidates, keeping order.
func ParseEncodings(names []string) ([]Encoding, error) {
	if len(names) == 0 {
		return nil, errors.New("no encodings configured")
	}
	out := make([]Encoding, 0, len(names))
	for _, n := range names {
		enc, ok := EncodingByName(n)
		if !ok {
			return nil, fmt.Errorf("unknown encoding %q", n)
		}
		out = append(out, enc)
	}
	return out, nil
}

// ReadTable parses raw as comma-separated text, trying candidates in order.
// With no candidates, DefaultEncodings is used. It returns the table and the
// encoding that produced it. If every candidate fails, the error wraps
// ErrReadFailure and lists each attempt.
func ReadTable(name string, raw []byte, candidates ...Encoding) (*Table, Encoding, error) {
	if len(candidates) == 0 {
		candidates = DefaultEncodings
	}

	attempts := make([]string, 0, len(candidates))
	for _, enc := range candidates {
		t, consumed, err := readWith(name, raw, enc)
		if err == nil {
			return t, enc, nil
		}
		attempts = append(attempts, fmt.Sprintf("%s (after %d bytes): %v", enc.Name, consumed, err))
	}

	return nil, Encoding{}, fmt.Errorf("%w: %s", ErrReadFailure, strings.Join(attempts, "; "))
}

// readWith makes one attempt: decode raw from the start with enc, strip a
// BOM, and parse as comma-separated text with strict quoting. Rows may be
// shorter than the header; NewTable pads them and rejects wider ones.
// Returns bytes of raw consumed.
func readWith(name string, raw []byte, enc Encoding) (*Table, int64, error) {
	src := NewCountingReader(bytes.NewReader(raw))
	decoded := transform.NewReader(src, enc.decoder())

	r := csv.NewReader(NewBOMSkippingReader(decoded))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, src.BytesRead, err
	}
	if len(records) == 0 {
		return nil, src.BytesRead, errNoHeader
	}

	t, err := NewTable(name, records[0], records[1:])
	return t, src.BytesRead, err
}
