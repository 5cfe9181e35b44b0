package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvconvert/internal/core"
	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestErrorAlert_Escapes(t *testing.T) {
	got := render(t, ErrorAlert("<b>bad</b>", "try & retry", "FILE002"))

	for _, want := range []string{"&lt;b&gt;bad&lt;/b&gt;", "try &amp; retry", "Code: FILE002"} {
		if !strings.Contains(got, want) {
			t.Errorf("ErrorAlert() = %s, missing %q", got, want)
		}
	}
	if strings.Contains(got, "<b>") {
		t.Errorf("ErrorAlert() left markup unescaped: %s", got)
	}
}

func TestErrorPage_WrapsAlertInLayout(t *testing.T) {
	got := render(t, ErrorPage("Upload session not found", "Upload again", "UPL002"))

	if !strings.HasPrefix(strings.ToLower(got), "<!doctype html>") {
		t.Errorf("ErrorPage() is not a full document: %.60s", got)
	}
	alert := strings.Index(got, `role="alert"`)
	body := strings.Index(got, "<main>")
	if alert < body || body < 0 {
		t.Errorf("alert at %d is not inside <main> at %d", alert, body)
	}
	if !strings.Contains(got, `<a href="/">Back to upload</a>`) {
		t.Error("ErrorPage() has no link back")
	}
}

func TestUploadPage(t *testing.T) {
	got := render(t, UploadPage(UploadPageData{MaxFiles: 20, MaxSizeMB: 50, Encodings: []string{"utf-8", "latin-1"}}))

	for _, want := range []string{
		"<title>CSV to Excel</title>",
		`action="/convert"`,
		`enctype="multipart/form-data"`,
		"Up to 20 files, 50 MB per upload.",
		"utf-8, latin-1.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("UploadPage() missing %q", want)
		}
	}
}

func TestResultsPage(t *testing.T) {
	data := ResultsPageData{
		FillValue: "-",
		Results: []core.FileResult{
			{
				FileName: "people.csv",
				Table: &core.TableSummary{
					ID:       "0b7c7f3e-3c1a-4c5e-9a55-1f0f6f4d2a10",
					FileName: "people.csv",
					Encoding: "latin-1",
					Rows:     3,
					Columns: []core.ColumnSummary{
						{
							Name:       "Unnamed: 0",
							Kind:       "text",
							Missing:    1,
							Suggestion: core.Suggestion{Column: "Unnamed: 0", Suggested: "Name", Label: core.LabelName, Placeholder: true},
						},
						{
							Name:       `a"b`,
							Kind:       "number",
							Suggestion: core.Suggestion{Column: `a"b`, Suggested: `a"b`},
						},
					},
					Preview: [][]string{{"Ana", "<1>"}},
				},
			},
			{FileName: "broken.csv", Error: "File is not a valid CSV", Action: "Fix it", Code: "FILE002"},
		},
	}

	got := render(t, ResultsPage(data))

	for _, want := range []string{
		`action="/tables/0b7c7f3e-3c1a-4c5e-9a55-1f0f6f4d2a10/download"`,
		"3 rows, 2 columns, read as latin-1.",
		`name="column" value="Unnamed: 0"`,
		`name="name" value="Name"`,
		"looks like Name",
		"text, 1 empty",
		`value="a&#34;b"`,
		"<td>&lt;1&gt;</td>",
		"Showing the first 1 of 3 rows.",
		`name="fill" value="on" checked`,
		`name="fill_value" value="-"`,
		"broken.csv",
		"Code: FILE002",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ResultsPage() missing %q", want)
		}
	}
	if n := strings.Count(got, "looks like"); n != 1 {
		t.Errorf("ResultsPage() shows %d label hints, want 1 for the placeholder column", n)
	}
}
