package core

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestReadTable_EncodingFallback(t *testing.T) {
	tests := []struct {
		name       string
		raw        []byte
		candidates []Encoding
		wantEnc    string
		wantName   string
	}{
		{
			name:     "plain ascii is utf-8",
			raw:      []byte("name,email\nAna,ana@example.com\n"),
			wantEnc:  "utf-8",
			wantName: "Ana",
		},
		{
			name:     "utf-8 multibyte",
			raw:      []byte("name,email\nJosé,jose@example.com\n"),
			wantEnc:  "utf-8",
			wantName: "José",
		},
		{
			name:     "latin-1 byte falls back",
			raw:      []byte("name,email\nJos\xe9,jose@example.com\n"),
			wantEnc:  "latin-1",
			wantName: "José",
		},
		{
			name:       "cp1252 when listed before latin-1",
			raw:        []byte("name,email\n\x80uro,e@example.com\n"),
			candidates: []Encoding{UTF8, Windows1252, Latin1},
			wantEnc:    "cp1252",
			wantName:   "€uro",
		},
		{
			name:     "utf-8 BOM is stripped",
			raw:      []byte("\xEF\xBB\xBFname,email\nAna,a@b.c\n"),
			wantEnc:  "utf-8",
			wantName: "Ana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, enc, err := ReadTable("people.csv", tt.raw, tt.candidates...)
			if err != nil {
				t.Fatalf("ReadTable() error = %v", err)
			}
			if enc.Name != tt.wantEnc {
				t.Errorf("encoding = %q, want %q", enc.Name, tt.wantEnc)
			}
			if got := table.ColumnNames(); strings.Join(got, ",") != "name,email" {
				t.Errorf("columns = %v, want [name email]", got)
			}
			col, _ := table.Column("name")
			if got := col.Cells[0].String(); got != tt.wantName {
				t.Errorf("first name = %q, want %q", got, tt.wantName)
			}
			if table.Name != "people.csv" {
				t.Errorf("table name = %q, want %q", table.Name, "people.csv")
			}
		})
	}
}

func TestReadTable_Failure(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"row wider than header", []byte("a,b\n1,2,3\n")},
		{"bare quote", []byte("id,name\n1,Jo\"hn\n")},
		{"unterminated quote", []byte("id,name\n1,\"John\n")},
		{"no header row", []byte{}},
		{"blank lines only", []byte("\n\n\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, enc, err := ReadTable("broken.csv", tt.raw)
			if !errors.Is(err, ErrReadFailure) {
				t.Fatalf("ReadTable() error = %v, want ErrReadFailure", err)
			}
			if table != nil {
				t.Error("table should be nil on failure")
			}
			if enc.Name != "" {
				t.Errorf("encoding = %q, want empty", enc.Name)
			}
			for _, name := range []string{"utf-8", "latin-1", "cp1252"} {
				if !strings.Contains(err.Error(), name) {
					t.Errorf("error should list the %s attempt: %v", name, err)
				}
			}
		})
	}
}

func TestReadTable_ShortRowsPadded(t *testing.T) {
	raw := []byte("nome,cpf,telefone\nAna,123.456.789-09\nBia,987.654.321-00,(11) 98765-4321\nCaio\n")

	table, enc, err := ReadTable("x.csv", raw)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if enc.Name != "utf-8" {
		t.Errorf("encoding = %q, want utf-8", enc.Name)
	}
	if got := table.NumRows(); got != 3 {
		t.Fatalf("NumRows() = %d, want 3", got)
	}

	phone, _ := table.Column("telefone")
	if got := phone.MissingCount(); got != 2 {
		t.Errorf("telefone missing = %d, want 2", got)
	}
	if got := phone.Cells[1].String(); got != "(11) 98765-4321" {
		t.Errorf("telefone[1] = %q, want the phone number", got)
	}
	cpf, _ := table.Column("cpf")
	if !cpf.Cells[2].IsMissing() {
		t.Errorf("cpf[2] = %+v, want missing", cpf.Cells[2])
	}
}

func TestReadTable_DoesNotModifyInput(t *testing.T) {
	raw := []byte("\xEF\xBB\xBFname\nJos\xe9\n")
	orig := bytes.Clone(raw)

	if _, _, err := ReadTable("x.csv", raw); err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if !bytes.Equal(raw, orig) {
		t.Error("ReadTable modified the raw bytes")
	}
}

func TestReadTable_Concurrent(t *testing.T) {
	raw := []byte("id,name\n1,Jos\xe9\n2,Ana\n")

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, enc, err := ReadTable("x.csv", raw)
			if err != nil {
				errs <- err
				return
			}
			if enc.Name != "latin-1" || table.NumRows() != 2 {
				errs <- errors.New("unexpected result " + enc.Name)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestReadTable_TypesCells(t *testing.T) {
	raw := []byte("id,amount,note\n001,2.50,ok\n002,NA,\n003,10,NULL\n")

	table, _, err := ReadTable("x.csv", raw)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	amount, _ := table.Column("amount")
	if amount.Cells[0].Kind != CellNumber || amount.Cells[0].Number != 2.5 {
		t.Errorf("amount[0] = %+v, want number 2.5", amount.Cells[0])
	}
	if !amount.Cells[1].IsMissing() {
		t.Errorf("amount[1] = %+v, want missing", amount.Cells[1])
	}

	id, _ := table.Column("id")
	if got := id.Cells[0].String(); got != "001" {
		t.Errorf("id[0] text = %q, want source spelling %q", got, "001")
	}

	note, _ := table.Column("note")
	if got := note.MissingCount(); got != 2 {
		t.Errorf("note missing = %d, want 2", got)
	}
}

func TestParseEncodings(t *testing.T) {
	encs, err := ParseEncodings([]string{"UTF8", " iso-8859-1 ", "windows-1252"})
	if err != nil {
		t.Fatalf("ParseEncodings() error = %v", err)
	}
	var names []string
	for _, e := range encs {
		names = append(names, e.Name)
	}
	if got := strings.Join(names, ","); got != "utf-8,latin-1,cp1252" {
		t.Errorf("names = %q, want %q", got, "utf-8,latin-1,cp1252")
	}

	if _, err := ParseEncodings([]string{"utf-16"}); err == nil {
		t.Error("ParseEncodings should reject unknown encodings")
	}
	if _, err := ParseEncodings(nil); err == nil {
		t.Error("ParseEncodings should reject an empty list")
	}
}
