package llm

import "strings"

// StripCodeFences removes a surrounding markdown code fence and an optional
// leading "json" language tag, which chat models frequently wrap structured
// output in despite instructions.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) > 6 {
		text = strings.TrimSpace(text[3 : len(text)-3])
	}
	if strings.HasPrefix(text, "json") || strings.HasPrefix(text, "JSON") {
		text = strings.TrimSpace(text[4:])
	}

	return text
}

// ExtractJSON finds and extracts the first complete JSON object from text
// using brace matching. Returns "" when no balanced object is present.
func ExtractJSON(text string) string {
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return ""
	}

	braceCount := 0
	inString := false
	escaped := false

	for i := startIdx; i < len(text); i++ {
		ch := text[i]

		if escaped {
			escaped = false
			continue
		}

		if ch == '\\' {
			escaped = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if ch == '{' {
				braceCount++
			} else if ch == '}' {
				braceCount--
				if braceCount == 0 {
					return text[startIdx : i+1]
				}
			}
		}
	}

	return ""
}
