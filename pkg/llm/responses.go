package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	// fencedBlockPatterns match code blocks that may contain JSON, most specific first
	fencedBlockPatterns = []*regexp.Regexp{
		regexp.MustCompile("(?i)```json\\s*([\\s\\S]*?)```"),
		regexp.MustCompile("```(?:javascript|js)\\s*([\\s\\S]*?)```"),
		regexp.MustCompile("```\\w*\\s*([\\s\\S]*?)```"),
		regexp.MustCompile("`([^`]+)`"),
	}

	ansiEscapes    = regexp.MustCompile(`\x1b?\[[0-9;]+m`)
	trailingCommas = regexp.MustCompile(`,(\s*[}\]])`)
)

// ExtractJSONFromResponse extracts JSON from LLM response that may contain markdown
// code blocks or other text. It returns the extracted JSON string or the original
// response if no JSON is found.
//
// Example:
//
//	response := "Here is the data:\n```json\n{\"key\": \"value\"}\n```"
//	jsonStr := ExtractJSONFromResponse(response)
//	fmt.Println(jsonStr) // Output: {"key": "value"}
func ExtractJSONFromResponse(text string) string {
	text = strings.TrimSpace(ansiEscapes.ReplaceAllString(text, ""))

	for _, re := range fencedBlockPatterns {
		matches := re.FindStringSubmatch(text)
		if len(matches) < 2 {
			continue
		}
		if candidate, ok := asJSON(matches[1]); ok {
			return candidate
		}
	}

	for _, candidate := range findJSONBlocks(text) {
		if candidate, ok := asJSON(candidate); ok {
			return candidate
		}
	}

	if candidate, ok := asJSON(text); ok {
		return candidate
	}

	return text
}

// asJSON returns the candidate if it is a JSON object or array, cleaning up
// comments and trailing commas when needed.
func asJSON(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if !strings.HasPrefix(candidate, "{") && !strings.HasPrefix(candidate, "[") {
		return "", false
	}
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}
	if cleaned := cleanJSON(candidate); cleaned != "" {
		return cleaned, true
	}
	return "", false
}

// findJSONBlocks returns every balanced {...} or [...] span in text, in order of appearance
func findJSONBlocks(text string) []string {
	var results []string
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		if end := matchingClose(text[i:]); end > 0 {
			results = append(results, text[i:i+end+1])
		}
	}
	return results
}

// matchingClose returns the index of the bracket closing the one at text[0],
// ignoring brackets inside JSON strings. It returns -1 if unbalanced.
func matchingClose(text string) int {
	open := text[0]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// cleanJSON removes line comments and trailing commas, returning "" if the result is still invalid
func cleanJSON(jsonText string) string {
	var cleanedLines []string
	for _, line := range strings.Split(jsonText, "\n") {
		if idx := strings.Index(line, "//"); idx != -1 && !strings.Contains(line[:idx], `"`) {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	result := trailingCommas.ReplaceAllString(strings.Join(cleanedLines, "\n"), "$1")
	if json.Valid([]byte(result)) {
		return result
	}
	return ""
}

// RemoveBlocks removes all blocks of the specified tag from the input string.
// For example, RemoveBlocks(text, "think") will remove all <think>...</think> blocks.
//
// Example:
//
//	text := "Hello <think>this is internal</think> world!"
//	cleaned := RemoveBlocks(text, "think")
//	fmt.Println(cleaned) // Output: "Hello  world!"
func RemoveBlocks(text, tag string) string {
	pattern := fmt.Sprintf(`(?s)<%s>.*?</%s>`, regexp.QuoteMeta(tag), regexp.QuoteMeta(tag))
	return regexp.MustCompile(pattern).ReplaceAllString(text, "")
}

// ExtractJSONToStruct extracts JSON from LLM response and unmarshals it into out,
// which should be a pointer.
func ExtractJSONToStruct(response string, out interface{}) error {
	jsonStr := ExtractJSONFromResponse(response)
	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return fmt.Errorf("response does not contain valid JSON: %w", err)
	}
	return nil
}
