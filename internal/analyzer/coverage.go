package analyzer

import (
	"github.com/vincentbai/replaygen/internal/models"
)

// Coverage summarizes the diversity and volume of a session collection.
type Coverage struct {
	TotalSessions       int            `json:"total_sessions"`
	UniqueURLs          int            `json:"unique_urls"`
	UniqueSelectors     int            `json:"unique_selectors"`
	URLDistribution     map[string]int `json:"url_distribution"`
	BrowserDistribution map[string]int `json:"browser_distribution"`
	TotalActions        int            `json:"total_actions"`
	TotalErrors         int            `json:"total_errors"`
}

// AnalyzeCoverage computes coverage statistics across sessions. Sessions
// without a browser name are counted under the empty key; filtering those
// out is a display concern, not an aggregation one.
func AnalyzeCoverage(sessions []models.ReplaySession) Coverage {
	cov := Coverage{
		TotalSessions:       len(sessions),
		URLDistribution:     make(map[string]int),
		BrowserDistribution: make(map[string]int),
	}

	selectors := make(map[string]bool)
	for _, session := range sessions {
		cov.URLDistribution[session.URL]++
		cov.BrowserDistribution[session.BrowserName()]++
		cov.TotalActions += len(session.Actions)
		cov.TotalErrors += len(session.Errors)

		for _, action := range session.Actions {
			if action.Selector != nil {
				selectors[*action.Selector] = true
			}
		}
	}

	cov.UniqueURLs = len(cov.URLDistribution)
	cov.UniqueSelectors = len(selectors)
	return cov
}
