// Package export writes selected sessions out as Playwright test files plus
// a machine-readable summary document.
package export

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/vincentbai/replaygen/internal/analyzer"
	"github.com/vincentbai/replaygen/internal/models"
	"github.com/vincentbai/replaygen/internal/testgen"
)

// SummaryFilename is the name of the summary document within the output
// directory.
const SummaryFilename = "test-summary.json"

// Sink is the write capability export depends on. Both methods may fail
// with an I/O error, which export propagates unchanged.
type Sink interface {
	EnsureDir(path string) error
	WriteText(path, content string) error
}

// OSSink writes through the local filesystem.
type OSSink struct{}

func (OSSink) EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (OSSink) WriteText(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// Summary is the machine-readable companion to a batch of generated tests.
type Summary struct {
	GeneratedAt string            `json:"generated_at"`
	TotalTests  int               `json:"total_tests"`
	Coverage    analyzer.Coverage `json:"coverage"`
	Tests       []TestDigest      `json:"tests"`
}

// TestDigest is the per-test entry in the summary.
type TestDigest struct {
	ReplayID    string `json:"replay_id"`
	Duration    int64  `json:"duration"`
	URL         string `json:"url"`
	ActionCount int    `json:"action_count"`
	ErrorCount  int    `json:"error_count"`
}

// Export selects sessions with the default policy, writes one test script
// per selected session into outputDir, then writes the summary document.
// A sink failure aborts remaining writes; files already written stay in
// place.
func Export(outputDir string, sink Sink, sessions []models.ReplaySession) error {
	if err := sink.EnsureDir(outputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Export always runs its own selection with defaults, independent of
	// any selection a caller made for display.
	selected := analyzer.SelectSessions(sessions, analyzer.DefaultSelectOptions())

	for _, session := range selected {
		path := filepath.Join(outputDir, testgen.Filename(session))
		if err := sink.WriteText(path, testgen.Script(session)); err != nil {
			return fmt.Errorf("failed to write test script: %w", err)
		}
		log.Printf("Generated test: %s", path)
	}

	summary := Summary{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		TotalTests:  len(selected),
		Coverage:    analyzer.AnalyzeCoverage(sessions),
		Tests:       digests(selected),
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	summaryPath := filepath.Join(outputDir, SummaryFilename)
	if err := sink.WriteText(summaryPath, string(data)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	log.Printf("Generated %d tests in %s", len(selected), outputDir)
	return nil
}

func digests(sessions []models.ReplaySession) []TestDigest {
	result := make([]TestDigest, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, TestDigest{
			ReplayID:    session.ReplayID,
			Duration:    session.Duration,
			URL:         session.URL,
			ActionCount: len(session.Actions),
			ErrorCount:  len(session.Errors),
		})
	}
	return result
}
