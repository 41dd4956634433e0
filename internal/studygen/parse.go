package studygen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoJSON = errors.New("no JSON array in model output")

// extractJSONArray pulls the first JSON array out of model output, tolerating
// fenced code blocks and prose around the payload.
func extractJSONArray(s string) (string, error) {
	s = strings.TrimSpace(s)

	// Strip a markdown fence if the whole payload is wrapped in one
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "[")
	if start < 0 {
		return "", errNoJSON
	}
	end := strings.LastIndex(s, "]")
	if end < start {
		return "", errNoJSON
	}
	return s[start : end+1], nil
}

func parseNotecards(output string) ([]Notecard, error) {
	payload, err := extractJSONArray(output)
	if err != nil {
		return nil, err
	}

	var cards []Notecard
	if err := json.Unmarshal([]byte(payload), &cards); err != nil {
		return nil, fmt.Errorf("invalid notecard JSON: %w", err)
	}

	kept := cards[:0]
	for _, c := range cards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return nil, errors.New("notecard JSON contained no usable cards")
	}
	return kept, nil
}

func parseQuiz(output string) ([]QuizQuestion, error) {
	payload, err := extractJSONArray(output)
	if err != nil {
		return nil, err
	}

	var questions []QuizQuestion
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		return nil, fmt.Errorf("invalid quiz JSON: %w", err)
	}

	kept := questions[:0]
	for _, q := range questions {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			continue
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			continue
		}
		kept = append(kept, q)
	}
	if len(kept) == 0 {
		return nil, errors.New("quiz JSON contained no usable questions")
	}
	return kept, nil
}
