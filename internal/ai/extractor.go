package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"screen_ai_server/internal/types"
)

// The model is not contractually reliable about output shape, so extraction
// tries progressively looser strategies. Each strategy's failure is swallowed
// and control falls through to the next one.

var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

var fieldRes = map[string]*regexp.Regexp{
	"name":        fieldRe("name"),
	"description": fieldRe("description"),
	"htmlContent": fieldRe("htmlContent"),
	"cssContent":  fieldRe("cssContent"),
}

func fieldRe(key string) *regexp.Regexp {
	// Matches a JSON string value including escaped characters.
	return regexp.MustCompile(`"` + key + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
}

// Extract attempts to recover a ScreenData record from raw model output.
// Strategies, in order: whole text as JSON, fenced block, first "{" through
// last "}", and per-field regexp recovery. The first hit wins. Returns false
// when nothing usable could be recovered.
func Extract(raw string) (types.ScreenData, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return types.ScreenData{}, false
	}

	if sd, ok := parseScreenObject(text); ok {
		return sd, true
	}

	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if sd, ok := parseScreenObject(strings.TrimSpace(m[1])); ok {
			return sd, true
		}
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if sd, ok := parseScreenObject(text[start : end+1]); ok {
			return sd, true
		}
	}

	if sd, ok := recoverFields(text); ok {
		return sd, true
	}

	return types.ScreenData{}, false
}

// parseScreenObject parses s as a JSON object with the four screen keys.
// A record without htmlContent is not a match, even if the JSON was valid.
func parseScreenObject(s string) (types.ScreenData, bool) {
	var sd types.ScreenData
	if err := json.Unmarshal([]byte(s), &sd); err != nil {
		return types.ScreenData{}, false
	}
	if strings.TrimSpace(sd.HTMLContent) == "" {
		return types.ScreenData{}, false
	}
	return sd, true
}

// recoverFields searches for each `"key": "..."` pair independently.
// name and htmlContent are required; description and cssContent default
// to empty strings when absent.
func recoverFields(text string) (types.ScreenData, bool) {
	name, okName := findField(text, "name")
	html, okHTML := findField(text, "htmlContent")
	if !okName || !okHTML || strings.TrimSpace(html) == "" {
		return types.ScreenData{}, false
	}
	desc, _ := findField(text, "description")
	css, _ := findField(text, "cssContent")
	return types.ScreenData{
		Name:        name,
		Description: desc,
		HTMLContent: html,
		CSSContent:  css,
	}, true
}

func findField(text, key string) (string, bool) {
	m := fieldRes[key].FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	// Re-parse the raw match as a JSON string to resolve escapes.
	var out string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &out); err != nil {
		return m[1], true
	}
	return out, true
}
