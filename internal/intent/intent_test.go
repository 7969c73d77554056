package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCommand(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected Command
		wantErr  bool
	}{
		{
			name:  "plain JSON object",
			reply: `{"action":"create","summary":"תדריך","start_time":"2026-09-01 10:00","duration_minutes":30,"label":"צוות"}`,
			expected: Command{
				Action:          "create",
				Summary:         "תדריך",
				StartTime:       "2026-09-01 10:00",
				DurationMinutes: 30,
				Label:           "צוות",
			},
		},
		{
			name:  "object wrapped in prose and fences",
			reply: "הנה הפקודה:\n```json\n{\"action\":\"delete\",\"summary\":\"תדריך\"}\n```",
			expected: Command{
				Action:          "delete",
				Summary:         "תדריך",
				DurationMinutes: DefaultDurationMinutes,
			},
		},
		{
			name:  "missing duration gets the default",
			reply: `{"action":"update","summary":"x","start_time":"2026-09-01 10:00"}`,
			expected: Command{
				Action:          "update",
				Summary:         "x",
				StartTime:       "2026-09-01 10:00",
				DurationMinutes: DefaultDurationMinutes,
			},
		},
		{
			name:  "whitespace trimmed from action and label",
			reply: `{"action":" create ","label":" צוות "}`,
			expected: Command{
				Action:          "create",
				Label:           "צוות",
				DurationMinutes: DefaultDurationMinutes,
			},
		},
		{
			name:    "no JSON at all",
			reply:   "sorry, I cannot help with that",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			reply:   `{"action": create}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ExtractCommand(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *cmd)
		})
	}
}

func TestEmbeddedPromptsPresent(t *testing.T) {
	assert.Contains(t, defaultIntentPrompt, "{LABELS}", "intent prompt must carry the label placeholder")
	assert.Contains(t, defaultSummarizePrompt, "{TODAY}", "summarize prompt must carry the date placeholder")
}
