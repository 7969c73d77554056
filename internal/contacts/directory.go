package contacts

import (
	"sort"
	"strings"
)

// Directory answers label queries for the conversational core.
type Directory interface {
	// Labels returns the known labels in sorted order.
	Labels() []string
	// EmailsForLabel returns the contact emails for a label, or nil for
	// an unknown label.
	EmailsForLabel(label string) []string
	// ColorForLabel returns the Google Calendar color id for a label, or
	// the empty string when none is assigned.
	ColorForLabel(label string) string
}

// StaticDirectory is an in-memory Directory, the common load target of
// the CSV and SQLite backends.
type StaticDirectory struct {
	labels []string
	emails map[string][]string
	colors map[string]string
}

// NewStaticDirectory builds a directory from a label→emails mapping and
// optional color overrides. Labels without any email are dropped; colors
// not overridden fall back to the default label color table.
func NewStaticDirectory(emails map[string][]string, colorOverrides map[string]string) *StaticDirectory {
	d := &StaticDirectory{
		emails: make(map[string][]string),
		colors: make(map[string]string),
	}
	for label, ems := range emails {
		label = strings.TrimSpace(label)
		var kept []string
		for _, e := range ems {
			if e = strings.TrimSpace(e); e != "" {
				kept = append(kept, e)
			}
		}
		if label == "" || len(kept) == 0 {
			continue
		}
		d.emails[label] = kept
		d.labels = append(d.labels, label)
	}
	sort.Strings(d.labels)

	for label := range d.emails {
		if c, ok := colorOverrides[label]; ok && c != "" {
			d.colors[label] = c
		} else if c, ok := defaultLabelColors[label]; ok {
			d.colors[label] = c
		}
	}
	return d
}

// Labels returns the known labels in sorted order.
func (d *StaticDirectory) Labels() []string {
	out := make([]string, len(d.labels))
	copy(out, d.labels)
	return out
}

// EmailsForLabel returns the contact emails for a label.
func (d *StaticDirectory) EmailsForLabel(label string) []string {
	return d.emails[strings.TrimSpace(label)]
}

// ColorForLabel returns the calendar color id for a label.
func (d *StaticDirectory) ColorForLabel(label string) string {
	return d.colors[strings.TrimSpace(label)]
}

// HasLabel reports whether label is an exact member of the directory.
func (d *StaticDirectory) HasLabel(label string) bool {
	_, ok := d.emails[strings.TrimSpace(label)]
	return ok
}

// Contains reports whether label is an exact member of dir's label set.
func Contains(dir Directory, label string) bool {
	for _, l := range dir.Labels() {
		if l == label {
			return true
		}
	}
	return false
}
