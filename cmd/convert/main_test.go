package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/JonMunkholm/csvconvert/internal/config"
	"github.com/JonMunkholm/csvconvert/internal/core"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), "a\n1\n")
	writeFile(t, filepath.Join(dir, "B.CSV"), "b\n1\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	if err := os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := collectInputs(dir, []string{"explicit.csv"})
	if err != nil {
		t.Fatalf("collectInputs() error = %v", err)
	}
	want := []string{"explicit.csv", filepath.Join(dir, "B.CSV"), filepath.Join(dir, "a.csv")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectInputs() = %q, want %q", got, want)
	}

	if _, err := collectInputs(filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("collectInputs(missing dir) = nil error")
	}
}

func TestRun(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "xlsx")
	writeFile(t, filepath.Join(in, "people.csv"), ",age\nAna,30\nBea,\n")
	writeFile(t, filepath.Join(in, "broken.csv"), "a,b\n1,2,3\n")
	writeFile(t, filepath.Join(in, "latin.csv"), "name\nJos\xe9\n")

	cfg := config.Defaults()
	cfg.Upload.MaxFiles = 2

	failed, err := run(context.Background(), cfg, options{
		dir:     in,
		out:     out,
		fill:    core.DefaultFillValue,
		suggest: true,
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	if _, err := os.Stat(filepath.Join(out, "broken.xlsx")); !os.IsNotExist(err) {
		t.Errorf("broken.xlsx should not be written, Stat error = %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(out, "people.xlsx"))
	if err != nil {
		t.Fatalf("OpenFile(people.xlsx) error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(core.SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{{"Name", "age"}, {"Ana", "30"}, {"Bea", "-"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("people.xlsx rows = %q, want %q", rows, want)
	}

	if _, err := os.Stat(filepath.Join(out, "latin.xlsx")); err != nil {
		t.Errorf("latin.xlsx not written: %v", err)
	}
}

func TestRun_SameBaseName(t *testing.T) {
	a := filepath.Join(t.TempDir(), "x.csv")
	b := filepath.Join(t.TempDir(), "x.csv")
	out := t.TempDir()
	writeFile(t, a, "first\n1\n")
	writeFile(t, b, "second\n2\n")

	failed, err := run(context.Background(), config.Defaults(), options{out: out, files: []string{a, b}})
	if err != nil || failed != 0 {
		t.Fatalf("run() = %d, %v", failed, err)
	}

	for name, header := range map[string]string{"x.xlsx": "first", "x-2.xlsx": "second"} {
		f, err := excelize.OpenFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("OpenFile(%s) error = %v", name, err)
		}
		rows, err := f.GetRows(core.SheetName)
		f.Close()
		if err != nil {
			t.Fatalf("GetRows(%s) error = %v", name, err)
		}
		if len(rows) == 0 || rows[0][0] != header {
			t.Errorf("%s rows = %q, want header %q", name, rows, header)
		}
	}
}

func TestOutputNames_Claim(t *testing.T) {
	names := newOutputNames("out")
	got := []string{
		names.claim("x.xlsx"),
		names.claim("X.xlsx"),
		names.claim("x.xlsx"),
		names.claim("y.xlsx"),
	}
	want := []string{
		filepath.Join("out", "x.xlsx"),
		filepath.Join("out", "X-2.xlsx"),
		filepath.Join("out", "x-3.xlsx"),
		filepath.Join("out", "y.xlsx"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("claim() = %q, want %q", got, want)
	}
}

func TestRun_NoInputs(t *testing.T) {
	if _, err := run(context.Background(), config.Defaults(), options{dir: t.TempDir(), out: t.TempDir()}); err == nil {
		t.Error("run() with no inputs = nil error")
	}
}
