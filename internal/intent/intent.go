// Package intent extracts structured calendar commands from free-form
// Hebrew text. Extraction is delegated to a generative text model; this
// package owns the prompt, the strict-JSON contract, and the fallback
// parsing of the model's reply.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Known command actions.
const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionSummarize = "summarize"
	ActionCalendars = "calendars"
)

// DefaultDurationMinutes applies when the model omits a duration.
const DefaultDurationMinutes = 60

// Command is the structured form of one user instruction.
type Command struct {
	Action          string `json:"action"`
	Summary         string `json:"summary"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Label           string `json:"label"`
}

// Parser extracts commands and writes schedule summaries.
type Parser interface {
	// Parse converts rawText into a Command, given the known label set
	// and today's date.
	Parse(ctx context.Context, rawText string, labels []string, today time.Time) (*Command, error)
	// Summarize writes a human schedule summary from formatted event
	// lines.
	Summarize(ctx context.Context, eventLines []string, today time.Time) (string, error)
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractCommand pulls the first JSON object out of a model reply and
// decodes it, applying the default duration. Model replies sometimes
// wrap the object in prose or code fences.
func ExtractCommand(reply string) (*Command, error) {
	match := jsonObjectRe.FindString(reply)
	if match == "" {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var cmd Command
	if err := json.Unmarshal([]byte(match), &cmd); err != nil {
		return nil, fmt.Errorf("failed to decode model reply: %w", err)
	}

	cmd.Action = strings.TrimSpace(cmd.Action)
	cmd.Label = strings.TrimSpace(cmd.Label)
	if cmd.DurationMinutes <= 0 {
		cmd.DurationMinutes = DefaultDurationMinutes
	}
	return &cmd, nil
}
