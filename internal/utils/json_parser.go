package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseModelJSON extracts and parses a JSON object from language model
// output that may contain:
// - Pure JSON
// - JSON wrapped in markdown code fences (```json ... ```)
// - JSON with surrounding prose
// - Trailing commas or embedded newlines inside quoted strings
func ParseModelJSON(input string, target any) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	// Try direct parsing first (most common case)
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	repaired := RepairModelJSON(input)
	if repaired == "" {
		return fmt.Errorf("no JSON object found in input: %s", truncateString(input, 100))
	}

	if err := json.Unmarshal([]byte(repaired), target); err != nil {
		return fmt.Errorf("failed to parse repaired JSON: %w", err)
	}

	return nil
}

var (
	fenceRe         = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// RepairModelJSON applies the repair pipeline to a raw completion and
// returns the best candidate JSON object text, or "" when the input holds no
// object at all.
func RepairModelJSON(input string) string {
	s := input

	// Strip markdown code fences if present
	if strings.Contains(s, "```") {
		if matches := fenceRe.FindStringSubmatch(s); len(matches) > 1 {
			s = matches[1]
		}
	}

	// Slice between the first '{' and the last '}'; models wrap objects in
	// prose and truncation leaves trailing garbage
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	s = s[start : end+1]

	// Remove trailing commas before closing braces/brackets
	s = trailingCommaRe.ReplaceAllString(s, "$1")

	// Collapse embedded newlines; unescaped line breaks inside quoted
	// strings break the parse
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	return strings.TrimSpace(s)
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
