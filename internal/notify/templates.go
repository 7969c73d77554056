// Package notify renders the user-facing notification messages emitted
// by the change watcher. Templates are JSON, keyed by message kind, with
// {placeholder} substitution; a template file configured at startup
// overrides the embedded defaults per key.
package notify

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

//go:embed templates/notification_templates.json
var defaultTemplates []byte

// Template keys.
const (
	KeyEventUpdated = "event_updated"
	KeyEventDeleted = "event_deleted"
	KeyWatchError   = "watch_error"
)

// Renderer renders notification templates in a fixed display time zone.
type Renderer struct {
	templates map[string]string
	loc       *time.Location
}

// NewRenderer creates a renderer with the embedded default templates.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	templates := map[string]string{}
	// The embedded defaults are known-good JSON.
	_ = json.Unmarshal(defaultTemplates, &templates)
	return &Renderer{templates: templates, loc: loc}
}

// LoadRenderer creates a renderer whose templates are overridden per key
// by the JSON file at path. Keys missing from the file keep their
// embedded defaults.
func LoadRenderer(path string, loc *time.Location) (*Renderer, error) {
	r := NewRenderer(loc)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	overrides := map[string]string{}
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse templates file: %w", err)
	}
	for k, v := range overrides {
		r.templates[k] = v
	}
	return r, nil
}

// Render substitutes vars into the template for key. An unknown key
// renders to the empty string.
func (r *Renderer) Render(key string, vars map[string]string) string {
	out := r.templates[key]
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

// TimeDate formats an event start for display in the renderer's zone.
// Timed events yield ("15:04", "02/01"); all-day events yield the date
// for both positions.
func (r *Renderer) TimeDate(t time.Time, allDay bool) (timeStr, dateStr string) {
	local := t.In(r.loc)
	if allDay {
		d := t.Format("02/01")
		return d, d
	}
	return local.Format("15:04"), local.Format("02/01")
}
