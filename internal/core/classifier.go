package core

// classifier.go proposes names for unlabeled columns from their content.
//
// A column's sample (its leading non-missing values as text) is checked
// against an ordered rule table. The first rule the sample satisfies names
// the column. Rules use ALL-match semantics except Email, which fires when
// ANY value contains "@". The ID / Medical Record Number split looks only at
// the length of the first sampled value.
//
// The rule table is built once at package init and never modified, so
// Classify is safe for concurrent use.

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultSampleSize is how many leading non-missing values are classified.
const DefaultSampleSize = 10

// medicalRecordMinDigits is the first-value length at which an all-digit
// column is a medical record number rather than an ID.
const medicalRecordMinDigits = 6

// Label is a suggested semantic column name.
type Label string

// The closed set of labels the classifier emits.
const (
	LabelCPF           Label = "CPF"
	LabelPhone         Label = "Phone"
	LabelBirthDate     Label = "Birth Date"
	LabelName          Label = "Name"
	LabelID            Label = "ID"
	LabelMedicalRecord Label = "Medical Record Number"
	LabelEmail         Label = "Email"
	LabelValue         Label = "Value"
	LabelColumn        Label = "Column"
)

var (
	cpfPattern       = fullMatch(`\d{3}\.\d{3}\.\d{3}-\d{2}`)
	phonePattern     = fullMatch(`\(?\d{2}\)?\s?\d{4,5}-\d{4}`)
	birthDatePattern = fullMatch(`\d{2}/\d{2}/\d{4}`)
	namePattern      = fullMatch(`[A-Z][a-z]+(\s[A-Z][a-z]+)*`)
	digitsPattern    = fullMatch(`\d+`)
	valuePattern     = fullMatch(`\d+[.,]?\d*`)
)

// fullMatch compiles a pattern that must match the whole value.
func fullMatch(expr string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + expr + `)$`)
}

// classifierRule is one entry of the ordered rule table. match reports
// whether the rule fires and which label it assigns.
type classifierRule struct {
	name  string
	match func(sample []string) (Label, bool)
}

// classifierRules is evaluated top to bottom; order is significant.
var classifierRules = []classifierRule{
	{name: "cpf", match: allMatch(cpfPattern, LabelCPF)},
	{name: "phone", match: allMatch(phonePattern, LabelPhone)},
	{name: "birth_date", match: allMatch(birthDatePattern, LabelBirthDate)},
	{name: "name", match: allMatch(namePattern, LabelName)},
	{name: "id", match: matchIDFamily},
	{name: "email", match: matchEmail},
	{name: "value", match: matchValue},
}

// allMatch builds a rule that fires when every value matches re.
func allMatch(re *regexp.Regexp, label Label) func([]string) (Label, bool) {
	return func(sample []string) (Label, bool) {
		for _, v := range sample {
			if !re.MatchString(v) {
				return "", false
			}
		}
		return label, true
	}
}

// matchIDFamily fires for all-digit samples. Only the first value's length
// picks between ID and medical record number.
func matchIDFamily(sample []string) (Label, bool) {
	if _, ok := allMatch(digitsPattern, LabelID)(sample); !ok {
		return "", false
	}
	if len(sample[0]) >= medicalRecordMinDigits {
		return LabelMedicalRecord, true
	}
	return LabelID, true
}

// matchEmail fires when any value contains "@".
func matchEmail(sample []string) (Label, bool) {
	for _, v := range sample {
		if strings.Contains(v, "@") {
			return LabelEmail, true
		}
	}
	return "", false
}

// matchValue fires when every value is a number, accepting ',' as the
// decimal separator.
func matchValue(sample []string) (Label, bool) {
	for _, v := range sample {
		if !valuePattern.MatchString(strings.ReplaceAll(v, ",", ".")) {
			return "", false
		}
	}
	return LabelValue, true
}

// Classify returns the label of the first rule the sample satisfies, or
// LabelColumn. An empty sample is always LabelColumn.
func Classify(sample []string) Label {
	if len(sample) == 0 {
		return LabelColumn
	}
	for _, rule := range classifierRules {
		if label, ok := rule.match(sample); ok {
			return label
		}
	}
	return LabelColumn
}

// ClassifyColumn classifies the first sampleSize non-missing values of col.
func ClassifyColumn(col *Column, sampleSize int) Label {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return Classify(col.Sample(sampleSize))
}

// placeholderMarkers identify headers that carry no meaning: parser-made
// names for empty header cells and generic "Column N" headers.
var placeholderMarkers = []string{"Unnamed", "Column"}

// IsPlaceholderName reports whether a column name is a placeholder that
// should be replaced by a suggested name.
func IsPlaceholderName(name string) bool {
	for _, m := range placeholderMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// SuggestNames proposes a final name for every column. Placeholder columns
// get their classifier label; other columns keep their name. Suggested
// labels are suffixed " 2", " 3", ... when they would collide with another
// column's final name.
func SuggestNames(t *Table, sampleSize int) []Suggestion {
	out := make([]Suggestion, len(t.Columns))

	taken := make(map[string]bool, len(t.Columns))
	for i := range t.Columns {
		name := t.Columns[i].Name
		out[i] = Suggestion{Column: name, Suggested: name}
		if IsPlaceholderName(name) {
			out[i].Placeholder = true
			out[i].Label = ClassifyColumn(&t.Columns[i], sampleSize)
			continue
		}
		taken[name] = true
	}

	for i := range out {
		if !out[i].Placeholder {
			continue
		}
		base := string(out[i].Label)
		candidate := base
		for n := 2; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s %d", base, n)
		}
		taken[candidate] = true
		out[i].Suggested = candidate
	}

	return out
}
