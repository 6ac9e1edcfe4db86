package analyzer

import (
	"github.com/vincentbai/replaygen/internal/models"
)

// FallbackURL is used when a raw record carries no URL at all.
const FallbackURL = "https://example.com"

// Normalize maps a raw replay record into a ReplaySession without touching
// any accumulator. Missing or wrong-typed fields are never an error; every
// field has an explicit default.
func Normalize(raw map[string]any) models.ReplaySession {
	return normalize(raw, noopDecoder{})
}

func normalize(raw map[string]any, decoder EventDecoder) models.ReplaySession {
	replayID := stringField(raw, "id")
	if replayID == "" {
		replayID = "unknown"
	}

	return models.ReplaySession{
		ReplayID:        replayID,
		Duration:        intField(raw, "duration"),
		URL:             extractURL(raw),
		Actions:         decoder.Actions(raw),
		NetworkRequests: decoder.NetworkRequests(raw),
		Errors:          extractErrors(raw),
		Metadata: map[string]any{
			"user":        mapField(raw, "user"),
			"browser":     mapField(raw, "browser"),
			"os":          mapField(raw, "os"),
			"device":      mapField(raw, "device"),
			"started_at":  raw["started_at"],
			"finished_at": raw["finished_at"],
			"error_count": intField(raw, "error_count"),
			"project_id":  raw["project_id"],
		},
	}
}

// extractURL resolves the starting URL. First match wins: first entry of a
// urls list, then a scalar url field, then a tags entry keyed "url", then
// the fixed fallback.
func extractURL(raw map[string]any) string {
	if urls, ok := raw["urls"].([]any); ok && len(urls) > 0 {
		if u, ok := urls[0].(string); ok {
			return u
		}
	}
	if u, ok := raw["url"].(string); ok {
		return u
	}
	if tags, ok := raw["tags"].([]any); ok {
		for _, entry := range tags {
			tag, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if key, _ := tag["key"].(string); key == "url" {
				value, _ := tag["value"].(string)
				return value
			}
		}
	}
	return FallbackURL
}

// extractErrors passes an errors list through verbatim. When only error ids
// are present it synthesizes one opaque record per id; detail lookup would
// need a separate fetch.
func extractErrors(raw map[string]any) []map[string]any {
	if list, ok := raw["errors"].([]any); ok {
		errs := make([]map[string]any, 0, len(list))
		for _, entry := range list {
			if m, ok := entry.(map[string]any); ok {
				errs = append(errs, m)
			}
		}
		return errs
	}
	if ids, ok := raw["error_ids"].([]any); ok {
		errs := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			errs = append(errs, map[string]any{"id": id})
		}
		return errs
	}
	return []map[string]any{}
}

func stringField(raw map[string]any, key string) string {
	v, _ := raw[key].(string)
	return v
}

// intField tolerates the numeric types JSON decoding can produce.
func intField(raw map[string]any, key string) int64 {
	switch v := raw[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

func mapField(raw map[string]any, key string) map[string]any {
	if m, ok := raw[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
