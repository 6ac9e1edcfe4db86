package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"

	"github.com/vincentbai/replaygen/internal/analyzer"
	"github.com/vincentbai/replaygen/internal/export"
	"github.com/vincentbai/replaygen/internal/sentry"
	"github.com/vincentbai/replaygen/internal/store"
	"github.com/vincentbai/replaygen/internal/testgen"
)

type config struct {
	OutputDir   string `env:"REPLAYGEN_OUTPUT_DIR" envDefault:"./generated-tests"`
	ArchivePath string `env:"REPLAYGEN_ARCHIVE_PATH"`
	MaxPages    int    `env:"REPLAYGEN_MAX_PAGES" envDefault:"3"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal("Failed to parse configuration:", err)
	}

	raws := fetchReplays(cfg.MaxPages)

	a := analyzer.New()
	for _, raw := range raws {
		session := a.Analyze(raw)
		log.Printf("Analyzed replay %s: %dms, %d errors",
			testgen.ShortID(session.ReplayID), session.Duration, len(session.Errors))
	}

	printCoverage(a.Coverage())

	preview := a.Select(analyzer.SelectOptions{
		MaxSessions:      5,
		PrioritizeErrors: true,
		MinDuration:      1000,
	})
	fmt.Printf("\nSelected %d sessions for testing:\n", len(preview))
	for i, session := range preview {
		fmt.Printf("  %d. %s - %dms, %d errors, %d actions\n",
			i+1, testgen.ShortID(session.ReplayID), session.Duration,
			len(session.Errors), len(session.Actions))
	}

	// Export runs its own selection with default parameters; the preview
	// above is display only.
	if err := export.Export(cfg.OutputDir, export.OSSink{}, a.Sessions()); err != nil {
		log.Fatal("Export failed:", err)
	}

	archiveRun(cfg.ArchivePath, a)
}

// fetchReplays pulls raw records from the Sentry API, preferring sessions
// with errors. Without credentials it degrades to built-in samples so the
// demo runs offline.
func fetchReplays(maxPages int) []map[string]any {
	sentryCfg, err := sentry.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load Sentry configuration:", err)
	}
	client, err := sentry.NewClient(sentryCfg)
	if err != nil {
		log.Printf("Sentry client unavailable (%v); using built-in sample replays", err)
		return sampleReplays()
	}

	log.Printf("Fetching replays for organization: %s", client.OrgSlug())
	raws, err := client.FetchAll(context.Background(), maxPages, sentry.ListOptions{
		Query:   "error_count:>0",
		PerPage: 20,
		Fields: []string{
			"id", "project_id", "duration", "finished_at",
			"user", "browser", "os", "error_count", "urls",
		},
	})
	if err != nil {
		log.Fatal("Failed to fetch replays:", err)
	}
	if len(raws) == 0 {
		log.Println("No replays found; using built-in sample replays")
		return sampleReplays()
	}
	return raws
}

func printCoverage(cov analyzer.Coverage) {
	fmt.Println("\nCoverage:")
	fmt.Printf("  Total sessions: %d\n", cov.TotalSessions)
	fmt.Printf("  Unique URLs: %d\n", cov.UniqueURLs)
	fmt.Printf("  Unique selectors: %d\n", cov.UniqueSelectors)
	fmt.Printf("  Total actions: %d\n", cov.TotalActions)
	fmt.Printf("  Total errors: %d\n", cov.TotalErrors)
	fmt.Println("  Browser distribution:")
	for name, count := range cov.BrowserDistribution {
		if name == "" {
			// sessions without a browser name stay in the raw counts but
			// are skipped for display
			continue
		}
		fmt.Printf("    - %s: %d\n", name, count)
	}
}

func archiveRun(archivePath string, a *analyzer.Analyzer) {
	if archivePath == "" {
		archivePath = defaultArchivePath()
	}

	st, err := store.Open(archivePath)
	if err != nil {
		log.Fatal("Failed to open session archive:", err)
	}
	defer st.Close()

	runID, err := st.SaveRun(a.Sessions())
	if err != nil {
		log.Fatal("Failed to archive run:", err)
	}
	log.Printf("Archived run %s (%d sessions) to %s", runID, len(a.Sessions()), archivePath)
}

// defaultArchivePath puts the archive in the platform app data directory.
func defaultArchivePath() string {
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		log.Fatal("Failed to get user home directory:", err)
	}

	var applicationDirectory string
	switch runtime.GOOS {
	case "darwin":
		applicationDirectory = filepath.Join(homeDirectory, "Library", "Application Support", "ReplayGen")
	case "windows":
		applicationDirectory = filepath.Join(homeDirectory, "AppData", "Roaming", "ReplayGen")
	default: // linux and others
		applicationDirectory = filepath.Join(homeDirectory, ".local", "share", "ReplayGen")
	}
	if err := os.MkdirAll(applicationDirectory, 0o755); err != nil {
		log.Fatal("Failed to create application directory:", err)
	}
	return filepath.Join(applicationDirectory, "replays.db")
}

// sampleReplays mirrors the shape of the Sentry replay listing payload.
func sampleReplays() []map[string]any {
	return []map[string]any{
		{
			"id":          "abc123def456",
			"duration":    45000,
			"urls":        []any{"https://example.com/app", "https://example.com/app/settings"},
			"user":        map[string]any{"email": "user@example.com"},
			"browser":     map[string]any{"name": "Chrome", "version": "120.0"},
			"os":          map[string]any{"name": "macOS", "version": "14.0"},
			"error_count": 2,
			"errors": []any{
				map[string]any{"message": "TypeError: Cannot read property X"},
				map[string]any{"message": "NetworkError: Failed to fetch"},
			},
		},
		{
			"id":       "789xyz012abc",
			"duration": 90000,
			"url":      "https://example.com/checkout",
			"browser":  map[string]any{"name": "Firefox", "version": "121.0"},
			"tags": []any{
				map[string]any{"key": "release", "value": "1.4.2"},
			},
		},
		{
			"id":        "shortsession",
			"duration":  400,
			"url":       "https://example.com/",
			"error_ids": []any{"e-1"},
		},
	}
}
