// Package testgen renders session records as Playwright test scripts.
package testgen

import (
	"fmt"
	"strings"

	"github.com/vincentbai/replaygen/internal/models"
)

const scriptExt = ".spec.ts"

// ShortID returns the first 8 characters of a replay id, used in test names
// and artifact paths.
func ShortID(replayID string) string {
	if len(replayID) > 8 {
		return replayID[:8]
	}
	return replayID
}

// Filename returns the test file name for a session: replay-<id8>.spec.ts.
func Filename(session models.ReplaySession) string {
	return "replay-" + ShortID(session.ReplayID) + scriptExt
}

// ScreenshotPath returns the path the generated test captures its final
// screenshot to.
func ScreenshotPath(session models.ReplaySession) string {
	return "screenshots/replay-" + ShortID(session.ReplayID) + ".png"
}

// Script renders a session as a complete Playwright test. The output is a
// pure function of the session: identical input yields byte-identical text.
//
// Actions that are missing the sub-fields their statement needs emit no
// statement, but every action slot still gets the fixed 100ms wait that
// paces the generated test.
func Script(session models.ReplaySession) string {
	var b strings.Builder
	b.WriteString("import { test, expect } from '@playwright/test';\n\n")
	fmt.Fprintf(&b, "test('replay-%s', async ({ page }) => {\n", ShortID(session.ReplayID))
	fmt.Fprintf(&b, "  // Original session duration: %dms\n", session.Duration)
	fmt.Fprintf(&b, "  // URL: %s\n\n", session.URL)
	fmt.Fprintf(&b, "  await page.goto('%s');\n\n", session.URL)

	for _, action := range session.Actions {
		if line := actionLine(action); line != "" {
			b.WriteString(line)
		}
		b.WriteString("  await page.waitForTimeout(100);\n\n")
	}

	b.WriteString("  // Take final screenshot for comparison\n")
	fmt.Fprintf(&b, "  await page.screenshot({ path: '%s' });\n", ScreenshotPath(session))
	b.WriteString("});\n")
	return b.String()
}

// actionLine emits the statement for one action, or "" when the action's
// shape does not match a renderable form.
func actionLine(action models.UserAction) string {
	switch action.ActionType {
	case "click":
		if !present(action.Selector) {
			return ""
		}
		return fmt.Sprintf("  await page.click('%s');\n", *action.Selector)
	case "input":
		if !present(action.Selector) || !present(action.Value) {
			return ""
		}
		return fmt.Sprintf("  await page.fill('%s', '%s');\n", *action.Selector, *action.Value)
	case "navigation":
		if !present(action.Target) {
			return ""
		}
		return fmt.Sprintf("  await page.goto('%s');\n", *action.Target)
	}
	return ""
}

func present(s *string) bool {
	return s != nil && *s != ""
}
