package core

import (
	"fmt"
	"sync"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		sample []string
		want   Label
	}{
		{"empty sample", nil, LabelColumn},
		{"cpf", []string{"123.456.789-09", "987.654.321-00"}, LabelCPF},
		{"cpf needs every value", []string{"123.456.789-09", "abc"}, LabelColumn},
		{"phone with area code", []string{"(11) 98765-4321", "11 8765-4321", "1198765-4321"}, LabelPhone},
		{"birth date", []string{"01/02/1990", "31/12/2001"}, LabelBirthDate},
		{"name", []string{"Maria Silva", "Joao"}, LabelName},
		{"lowercase is not a name", []string{"maria"}, LabelColumn},
		{"short first id", []string{"123", "4567890"}, LabelID},
		{"long first id is medical record", []string{"123456", "1"}, LabelMedicalRecord},
		{"leading zeros count as digits", []string{"000123"}, LabelMedicalRecord},
		{"five digits is id", []string{"12345"}, LabelID},
		{"email matches any value", []string{"foo", "ana@example.com"}, LabelEmail},
		{"email after failed name", []string{"Ana", "x@y"}, LabelEmail},
		{"one non-digit value moves digits to email", []string{"1@2", "34", "56"}, LabelEmail},
		{"decimal comma value", []string{"1,5", "2.75", "3"}, LabelValue},
		{"trailing separator value", []string{"10.", "2,"}, LabelValue},
		{"thousands separators fail value", []string{"1,000.50"}, LabelColumn},
		{"negative numbers fail value", []string{"-1", "2"}, LabelColumn},
		{"digits prefer id over value", []string{"12"}, LabelID},
		{"free text", []string{"hello world", "x"}, LabelColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.sample); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.sample, got, tt.want)
			}
		})
	}
}

func TestClassify_SameSampleSameLabel(t *testing.T) {
	samples := [][]string{
		nil,
		{"123.456.789-09"},
		{"1@2", "34", "56"},
		{"123456", "1"},
		{"1,5", "2"},
		{"hello world"},
	}

	for _, sample := range samples {
		first := Classify(sample)
		if second := Classify(sample); second != first {
			t.Errorf("Classify(%q) = %q then %q", sample, first, second)
		}
	}
}

func TestClassify_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Classify([]string{"01/02/1990"}); got != LabelBirthDate {
				t.Errorf("Classify = %q, want %q", got, LabelBirthDate)
			}
		}()
	}
	wg.Wait()
}

func TestClassifyColumn_UsesLeadingNonMissingValues(t *testing.T) {
	cells := []Cell{MissingCell(), TextCell("ana@example.com")}
	for i := 0; i < 20; i++ {
		cells = append(cells, TextCell("Ana"))
	}
	col := &Column{Name: "Unnamed: 0", Cells: cells}

	if got := ClassifyColumn(col, 10); got != LabelEmail {
		t.Errorf("ClassifyColumn(n=10) = %q, want %q", got, LabelEmail)
	}

	// Missing cells do not use up the sample.
	if got := ClassifyColumn(col, 1); got != LabelEmail {
		t.Errorf("ClassifyColumn(n=1) = %q, want %q", got, LabelEmail)
	}

	col.Cells[1] = TextCell("Bob")
	if got := ClassifyColumn(col, 0); got != LabelName {
		t.Errorf("ClassifyColumn(default) = %q, want %q", got, LabelName)
	}
}

func TestClassifyColumn_SampleCutoff(t *testing.T) {
	var cells []Cell
	for i := 0; i < DefaultSampleSize; i++ {
		cells = append(cells, TextCell("Ana"))
	}
	cells = append(cells, TextCell("not a name 123"))
	col := &Column{Name: "Column 1", Cells: cells}

	if got := ClassifyColumn(col, DefaultSampleSize); got != LabelName {
		t.Errorf("ClassifyColumn = %q, want %q: values past the sample must be ignored", got, LabelName)
	}
}

func TestIsPlaceholderName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Unnamed: 3", true},
		{"Column 2", true},
		{"ColumnA", true},
		{"column", false},
		{"Email", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsPlaceholderName(tt.name); got != tt.want {
			t.Errorf("IsPlaceholderName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSuggestNames(t *testing.T) {
	table, err := NewTable("x.csv",
		[]string{"", "Name", "", "Column 4", ""},
		[][]string{
			{"Ana", "Ana", "Bob", "", "123.456.789-09"},
			{"Carla", "Bea", "Dan", "", "987.654.321-00"},
		})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	got := SuggestNames(table, DefaultSampleSize)

	want := []Suggestion{
		{Column: "Unnamed: 0", Suggested: "Name 2", Label: LabelName, Placeholder: true},
		{Column: "Name", Suggested: "Name"},
		{Column: "Unnamed: 2", Suggested: "Name 3", Label: LabelName, Placeholder: true},
		{Column: "Column 4", Suggested: "Column", Label: LabelColumn, Placeholder: true},
		{Column: "Unnamed: 4", Suggested: "CPF", Label: LabelCPF, Placeholder: true},
	}
	if len(got) != len(want) {
		t.Fatalf("len(SuggestNames) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	seen := make(map[string]bool)
	for _, s := range got {
		if seen[s.Suggested] {
			t.Errorf("suggested name %q is not unique", s.Suggested)
		}
		seen[s.Suggested] = true
	}
}

func TestSuggestNames_ManyCollisions(t *testing.T) {
	header := make([]string, 12)
	row := make([]string, 12)
	for i := range header {
		header[i] = fmt.Sprintf("Column %d", i)
		row[i] = "ana@example.com"
	}
	table, err := NewTable("x.csv", header, [][]string{row})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	got := SuggestNames(table, DefaultSampleSize)
	if got[0].Suggested != "Email" || got[1].Suggested != "Email 2" || got[11].Suggested != "Email 12" {
		t.Errorf("suggestions = %q, %q, %q", got[0].Suggested, got[1].Suggested, got[11].Suggested)
	}
}
