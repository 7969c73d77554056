package notify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jerusalem(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	return loc
}

func TestRenderEventUpdated(t *testing.T) {
	r := NewRenderer(jerusalem(t))

	msg := r.Render(KeyEventUpdated, map[string]string{
		"summary":  "תדריך",
		"old_time": "10:00",
		"old_date": "01/09",
		"new_time": "11:00",
		"new_date": "01/09",
	})

	assert.Contains(t, msg, "תדריך")
	assert.Contains(t, msg, "10:00")
	assert.Contains(t, msg, "11:00")
	assert.NotContains(t, msg, "{", "all placeholders substituted")
}

func TestRenderUnknownKey(t *testing.T) {
	r := NewRenderer(nil)
	assert.Equal(t, "", r.Render("no_such_key", nil))
}

func TestLoadRendererOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"event_deleted": "gone: {summary}"}`), 0o644))

	r, err := LoadRenderer(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "gone: X", r.Render(KeyEventDeleted, map[string]string{"summary": "X"}))
	assert.NotEmpty(t, r.Render(KeyEventUpdated, nil), "keys missing from the file keep defaults")
}

func TestLoadRendererMissingFile(t *testing.T) {
	_, err := LoadRenderer(filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Error(t, err)
}

func TestTimeDate(t *testing.T) {
	r := NewRenderer(jerusalem(t))

	// 07:00 UTC is 10:00 in Jerusalem during DST.
	ts := time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)
	timeStr, dateStr := r.TimeDate(ts, false)
	assert.Equal(t, "10:00", timeStr)
	assert.Equal(t, "01/09", dateStr)

	timeStr, dateStr = r.TimeDate(time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), true)
	assert.Equal(t, "02/09", timeStr, "all-day events render the date in both positions")
	assert.Equal(t, "02/09", dateStr)
}
