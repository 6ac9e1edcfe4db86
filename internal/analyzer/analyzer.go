// Package analyzer normalizes raw replay records into session records and
// implements coverage aggregation and session selection over them.
package analyzer

import (
	"github.com/vincentbai/replaygen/internal/models"
)

// EventDecoder extracts user actions and network requests from a raw replay
// record. The replay-listing payload carries summary fields only, so the
// default decoder produces empty sequences; a real event-stream decoder can
// be plugged in without touching the rest of the normalization logic.
type EventDecoder interface {
	Actions(raw map[string]any) []models.UserAction
	NetworkRequests(raw map[string]any) []models.NetworkRequest
}

type noopDecoder struct{}

func (noopDecoder) Actions(map[string]any) []models.UserAction {
	return []models.UserAction{}
}

func (noopDecoder) NetworkRequests(map[string]any) []models.NetworkRequest {
	return []models.NetworkRequest{}
}

// Analyzer accumulates every session it analyzes. The collection is owned by
// whoever constructed the Analyzer; it is append-only and not safe for
// concurrent use.
type Analyzer struct {
	sessions []models.ReplaySession
	decoder  EventDecoder
}

func New() *Analyzer {
	return NewWithDecoder(noopDecoder{})
}

// NewWithDecoder builds an Analyzer that extracts actions and network
// requests with the given decoder.
func NewWithDecoder(decoder EventDecoder) *Analyzer {
	return &Analyzer{decoder: decoder}
}

// Analyze normalizes one raw replay record, appends the result to the
// accumulated collection, and returns it.
func (a *Analyzer) Analyze(raw map[string]any) models.ReplaySession {
	session := normalize(raw, a.decoder)
	a.sessions = append(a.sessions, session)
	return session
}

// Sessions returns the accumulated collection. Callers must not mutate it.
func (a *Analyzer) Sessions() []models.ReplaySession {
	return a.sessions
}

// Coverage aggregates statistics across all accumulated sessions.
func (a *Analyzer) Coverage() Coverage {
	return AnalyzeCoverage(a.sessions)
}

// Select ranks and truncates the accumulated sessions per opts.
func (a *Analyzer) Select(opts SelectOptions) []models.ReplaySession {
	return SelectSessions(a.sessions, opts)
}
