package analysis

import "strings"

// ExtractJSONObject locates the first complete JSON object embedded in
// a free-text model reply. Models frequently wrap their output in
// markdown code fences or add prose before and after the object, so
// the fences are stripped first and the rest of the text is scanned
// for a balanced {...} span. The scanner tracks string and escape
// state, so braces inside string values do not truncate the object.
func ExtractJSONObject(raw string) (string, bool) {
	cleaned := stripCodeFences(raw)

	start := strings.Index(cleaned, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return cleaned[start : i+1], true
				}
			}
		}
	}

	return "", false
}

// stripCodeFences removes markdown code fence markers around a reply
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
