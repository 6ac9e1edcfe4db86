package analyzer

import (
	"sort"

	"github.com/vincentbai/replaygen/internal/models"
)

// SelectOptions controls which sessions are picked for test generation.
type SelectOptions struct {
	MaxSessions      int
	PrioritizeErrors bool
	MinDuration      int64 // ms
}

func DefaultSelectOptions() SelectOptions {
	return SelectOptions{
		MaxSessions:      10,
		PrioritizeErrors: true,
		MinDuration:      1000,
	}
}

// SelectSessions filters out sessions shorter than MinDuration, ranks the
// rest, and truncates to MaxSessions. When PrioritizeErrors is set the sort
// key is (error count, duration) descending; otherwise duration descending.
// The sort is stable: ties keep their input order.
func SelectSessions(sessions []models.ReplaySession, opts SelectOptions) []models.ReplaySession {
	candidates := make([]models.ReplaySession, 0, len(sessions))
	for _, session := range sessions {
		if session.Duration >= opts.MinDuration {
			candidates = append(candidates, session)
		}
	}

	if opts.PrioritizeErrors {
		sort.SliceStable(candidates, func(i, j int) bool {
			if len(candidates[i].Errors) != len(candidates[j].Errors) {
				return len(candidates[i].Errors) > len(candidates[j].Errors)
			}
			return candidates[i].Duration > candidates[j].Duration
		})
	} else {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Duration > candidates[j].Duration
		})
	}

	if len(candidates) > opts.MaxSessions {
		candidates = candidates[:opts.MaxSessions]
	}
	return candidates
}
