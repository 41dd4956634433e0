// Package transcript normalizes scraped lecture transcripts into plain text.
//
// Browser-side scrapers upload transcripts in whatever shape the meeting
// platform exposed: a bare string, a JSON array of timestamped segments, an
// object wrapping such an array, or an object of numbered text chunks. Extract
// accepts any of these and produces one newline-joined body suitable for
// storage and chunking.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Segment is one timestamped utterance from a scraped transcript.
type Segment struct {
	Timestamp string `json:"timestamp,omitempty"`
	Speaker   string `json:"speaker,omitempty"`
	Text      string `json:"text"`
}

// Join concatenates segment texts with newlines, skipping empty ones.
func Join(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Extract converts raw transcript payloads into readable text. Payloads that
// are not valid JSON are treated as plain text and returned as-is.
func Extract(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}

	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		// Plain text upload
		return string(trimmed)
	}
	return extractValue(value, trimmed)
}

func extractValue(value any, raw []byte) string {
	switch v := value.(type) {
	case string:
		return v

	case map[string]any:
		// Wrapped segment array: {"transcript": [{"text": ...}, ...]}
		if inner, ok := v["transcript"].([]any); ok {
			return joinTexts(inner)
		}

		// Numbered chunks: {"0": "...", "1": "...", "metadata": {...}}
		if keys, ok := numberedKeys(v); ok {
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				if s, ok := v[k].(string); ok {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, "\n")
		}

		// Single text field
		if s, ok := v["text"].(string); ok {
			return s
		}

		// Unrecognized shape: keep the JSON so nothing is lost
		return string(raw)

	case []any:
		return joinTexts(v)

	default:
		return fmt.Sprint(v)
	}
}

// joinTexts flattens a segment list. Items that are objects contribute their
// "text" field; anything else is stringified.
func joinTexts(items []any) string {
	allObjects := true
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			allObjects = false
			break
		}
	}

	parts := make([]string, 0, len(items))
	if allObjects {
		for _, item := range items {
			obj := item.(map[string]any)
			if s, ok := obj["text"].(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
	} else {
		for _, item := range items {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			} else {
				parts = append(parts, fmt.Sprint(item))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// numberedKeys returns the digit-only keys of m in numeric order. A key named
// "metadata" is ignored; any other non-digit key disqualifies the shape.
func numberedKeys(m map[string]any) ([]string, bool) {
	var keys []string
	for k := range m {
		if k == "metadata" {
			continue
		}
		if _, err := strconv.Atoi(k); err != nil {
			return nil, false
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, false
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})
	return keys, true
}
