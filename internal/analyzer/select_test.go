package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentbai/replaygen/internal/models"
)

func sessionForSelect(id string, duration int64, errorCount int) models.ReplaySession {
	errs := make([]map[string]any, errorCount)
	for i := range errs {
		errs[i] = map[string]any{"id": i}
	}
	return models.ReplaySession{
		ReplayID: id,
		Duration: duration,
		URL:      "https://example.com",
		Errors:   errs,
		Metadata: map[string]any{},
	}
}

func TestSelectSessionsRankingAndStability(t *testing.T) {
	sessions := []models.ReplaySession{
		sessionForSelect("short", 500, 0),
		sessionForSelect("first-2000", 2000, 2),
		sessionForSelect("mid-1500", 1500, 2),
		sessionForSelect("second-2000", 2000, 2),
	}

	selected := SelectSessions(sessions, SelectOptions{
		MaxSessions:      10,
		PrioritizeErrors: true,
		MinDuration:      1000,
	})

	// The 500ms session is dropped entirely. Among the rest, equal error
	// counts fall back to duration; the two 2000ms sessions keep input order.
	require.Len(t, selected, 3)
	assert.Equal(t, "first-2000", selected[0].ReplayID)
	assert.Equal(t, "second-2000", selected[1].ReplayID)
	assert.Equal(t, "mid-1500", selected[2].ReplayID)
}

func TestSelectSessionsErrorCountOutranksDuration(t *testing.T) {
	sessions := []models.ReplaySession{
		sessionForSelect("long-clean", 90000, 0),
		sessionForSelect("short-errors", 2000, 3),
	}

	selected := SelectSessions(sessions, DefaultSelectOptions())

	require.Len(t, selected, 2)
	assert.Equal(t, "short-errors", selected[0].ReplayID)
}

func TestSelectSessionsByDurationOnly(t *testing.T) {
	sessions := []models.ReplaySession{
		sessionForSelect("a", 2000, 5),
		sessionForSelect("b", 8000, 0),
		sessionForSelect("c", 4000, 1),
	}

	selected := SelectSessions(sessions, SelectOptions{
		MaxSessions:      10,
		PrioritizeErrors: false,
		MinDuration:      1000,
	})

	require.Len(t, selected, 3)
	assert.Equal(t, "b", selected[0].ReplayID)
	assert.Equal(t, "c", selected[1].ReplayID)
	assert.Equal(t, "a", selected[2].ReplayID)
}

func TestSelectSessionsTruncates(t *testing.T) {
	var sessions []models.ReplaySession
	for i := 0; i < 25; i++ {
		sessions = append(sessions, sessionForSelect("s", 5000, 0))
	}

	selected := SelectSessions(sessions, DefaultSelectOptions())
	assert.Len(t, selected, 10)
}

func TestSelectSessionsMinDurationInclusive(t *testing.T) {
	sessions := []models.ReplaySession{
		sessionForSelect("exactly", 1000, 0),
		sessionForSelect("below", 999, 0),
	}

	selected := SelectSessions(sessions, DefaultSelectOptions())

	require.Len(t, selected, 1)
	assert.Equal(t, "exactly", selected[0].ReplayID)
}

func TestSelectSessionsNoneQualify(t *testing.T) {
	sessions := []models.ReplaySession{
		sessionForSelect("a", 10, 0),
		sessionForSelect("b", 20, 4),
	}

	selected := SelectSessions(sessions, DefaultSelectOptions())
	assert.Empty(t, selected)
}

// Selection never mutates its input collection.
func TestSelectSessionsLeavesInputOrderIntact(t *testing.T) {
	sessions := []models.ReplaySession{
		sessionForSelect("a", 2000, 0),
		sessionForSelect("b", 9000, 0),
		sessionForSelect("c", 5000, 0),
	}

	SelectSessions(sessions, DefaultSelectOptions())

	assert.Equal(t, "a", sessions[0].ReplayID)
	assert.Equal(t, "b", sessions[1].ReplayID)
	assert.Equal(t, "c", sessions[2].ReplayID)
}
