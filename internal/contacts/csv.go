package contacts

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// headerAliases maps recognized column header variants (English and
// Hebrew) to their canonical names.
var headerAliases = map[string]string{
	"label": "label", "labels": "label", "tag": "label", "tags": "label",
	"category": "label",
	"תגית":     "label", "תגיות": "label", "תווית": "label", "סיווג": "label",
	"קבוצה": "label",

	"email": "email", "e-mail": "email", "mail": "email",
	"אימייל": "email", "מייל": "email", "דואל": "email", `דוא"ל`: "email",

	"name": "name", "full name": "name", "שם": "name", "שם מלא": "name",

	"color": "color", "color_id": "color", "צבע": "color",
}

// LoadCSV loads the label directory from a CSV file with a header row.
// Required columns (any recognized alias): label, email. An optional
// color column overrides the default color for that label.
func LoadCSV(path string) (*StaticDirectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contacts file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("contacts file %s is empty", path)
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := headerAliases[h]; ok {
			cols[canonical] = i
		}
	}
	labelIdx, okLabel := cols["label"]
	emailIdx, okEmail := cols["email"]
	if !okLabel || !okEmail {
		return nil, fmt.Errorf("contacts file must include label and email columns, got %v", records[0])
	}
	colorIdx, hasColor := cols["color"]

	emails := map[string][]string{}
	colors := map[string]string{}
	for _, rec := range records[1:] {
		if labelIdx >= len(rec) || emailIdx >= len(rec) {
			continue
		}
		label := strings.TrimSpace(rec[labelIdx])
		email := strings.TrimSpace(rec[emailIdx])
		if label == "" {
			continue
		}
		if email != "" {
			emails[label] = append(emails[label], email)
		}
		if hasColor && colorIdx < len(rec) {
			if c := strings.TrimSpace(rec[colorIdx]); c != "" {
				colors[label] = c
			}
		}
	}

	return NewStaticDirectory(emails, colors), nil
}
