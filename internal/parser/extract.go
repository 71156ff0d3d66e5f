package parser

import (
	"strings"
)

// ExtractJSON pulls the JSON payload out of possibly-decorated backend output.
// In order it tries: the first ```json (or bare ```) fenced block holding an
// object or array; the largest balanced object or array in the text; the span
// from the first opening bracket to the last closing one; the whole text.
func ExtractJSON(raw string) string {
	if block, ok := firstFencedJSON(raw); ok {
		return block
	}
	if span, ok := largestBalanced(raw); ok {
		return span
	}
	if span, ok := greedySpan(raw); ok {
		return span
	}
	return strings.TrimSpace(raw)
}

func firstFencedJSON(raw string) (string, bool) {
	rest := raw
	for {
		open := strings.Index(rest, "```")
		if open == -1 {
			return "", false
		}
		body := rest[open+3:]
		closing := strings.Index(body, "```")
		if closing == -1 {
			return "", false
		}
		block := body[:closing]
		rest = body[closing+3:]

		lang, content := splitFenceLang(block)
		if lang != "" && !strings.EqualFold(lang, "json") {
			continue
		}
		content = strings.TrimSpace(content)
		if looksLikeJSON(content) {
			return content, true
		}
	}
}

// splitFenceLang separates an info string such as "json" from the block body.
func splitFenceLang(block string) (string, string) {
	if block == "" || block[0] == '\n' || block[0] == '\r' || block[0] == ' ' || block[0] == '\t' {
		return "", block
	}
	if block[0] == '{' || block[0] == '[' {
		return "", block
	}
	end := strings.IndexAny(block, " \t\r\n{[")
	if end == -1 {
		return block, ""
	}
	return block[:end], block[end:]
}

func looksLikeJSON(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}

// largestBalanced returns the longest substring that opens with { or [ and
// closes its matching bracket, ignoring brackets inside JSON strings.
func largestBalanced(input string) (string, bool) {
	best := ""
	for i := 0; i < len(input); i++ {
		ch := input[i]
		if ch != '{' && ch != '[' {
			continue
		}
		end, ok := matchFrom(input, i)
		if !ok {
			continue
		}
		if end+1-i > len(best) {
			best = input[i : end+1]
		}
		// Anything starting inside this span is shorter.
		i = end
	}
	return best, best != ""
}

// matchFrom scans from an opening bracket at start and returns the index of
// its matching closer.
func matchFrom(input string, start int) (int, bool) {
	stack := make([]byte, 0, 16)
	inString := false
	escaped := false
	for i := start; i < len(input); i++ {
		ch := input[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func greedySpan(input string) (string, bool) {
	start := strings.IndexAny(input, "{[")
	if start == -1 {
		return "", false
	}
	end := strings.LastIndexAny(input, "}]")
	if end <= start {
		return "", false
	}
	return input[start : end+1], true
}
