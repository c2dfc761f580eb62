package solver

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseAnswers extracts the JSON answer array from an LLM response and
// parses it. Models wrap JSON in prose and code fences often enough that the
// extraction has to tolerate both.
func ParseAnswers(content string) ([]Answer, error) {
	jsonStr := extractJSON(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var answers []Answer
	if err := json.Unmarshal([]byte(jsonStr), &answers); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}

	for i, a := range answers {
		if a.QuestionID == "" {
			return nil, fmt.Errorf("answer %d: missing question_id", i)
		}
		if len(a.OptionIDs) == 0 && a.Text == "" {
			return nil, fmt.Errorf("answer %d: no option_ids or text", i)
		}
	}

	return answers, nil
}

// extractJSON finds the first JSON array in the content
func extractJSON(content string) string {
	// Look for JSON array between triple backticks
	codeBlockRegex := regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	matches := codeBlockRegex.FindStringSubmatch(content)
	if len(matches) > 1 {
		trimmed := strings.TrimSpace(matches[1])
		if isJSONArray(trimmed) {
			return trimmed
		}
	}

	// Look for JSON array directly in content
	startIdx := strings.Index(content, "[")
	if startIdx == -1 {
		return ""
	}

	// Find matching closing bracket
	depth := 0
	for i := startIdx; i < len(content); i++ {
		switch content[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(content[startIdx : i+1])
			}
		}
	}

	return ""
}

// isJSONArray checks if the string starts with [ and ends with ]
func isJSONArray(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}
