package models

// Coordinates is an x/y point for pointer events. Informational only.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type UserAction struct {
	Timestamp   int64        `json:"timestamp"`   // ms since session start
	ActionType  string       `json:"action_type"` // click|input|navigation|...
	Selector    *string      `json:"selector"`    // nullable, CSS selector or XPath
	Value       *string      `json:"value"`       // nullable, for input events
	Target      *string      `json:"target"`      // nullable, URL for navigation
	Coordinates *Coordinates `json:"coordinates"` // nullable
}

type NetworkRequest struct {
	Timestamp    int64   `json:"timestamp"`
	Method       string  `json:"method"`
	URL          string  `json:"url"`
	StatusCode   *int    `json:"status_code"`   // nullable
	ResponseBody *string `json:"response_body"` // nullable
	RequestBody  *string `json:"request_body"`  // nullable
}

// ReplaySession is the normalized, analysis-ready representation of one
// recorded browsing session. Immutable once produced by the analyzer.
type ReplaySession struct {
	ReplayID        string           `json:"replay_id"`
	Duration        int64            `json:"duration"` // ms
	URL             string           `json:"url"`      // starting URL
	Actions         []UserAction     `json:"actions"`
	NetworkRequests []NetworkRequest `json:"network_requests"`
	Errors          []map[string]any `json:"errors"`   // opaque error records
	Metadata        map[string]any   `json:"metadata"` // user/browser/os/device/timing
}

// BrowserName returns metadata.browser.name, or "" when absent.
func (s ReplaySession) BrowserName() string {
	browser, ok := s.Metadata["browser"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := browser["name"].(string)
	return name
}
