package directive

import (
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// findTag locates the first open..close span in s. Returned offsets cover
// the whole span including both tags; inner is the text between them.
func findTag(s, open, close string) (start, end int, inner string, ok bool) {
	i := strings.Index(s, open)
	if i < 0 {
		return 0, 0, "", false
	}
	j := strings.Index(s[i+len(open):], close)
	if j < 0 {
		return 0, 0, "", false
	}
	inner = s[i+len(open) : i+len(open)+j]
	return i, i + len(open) + j + len(close), inner, true
}

// findConfirm locates a research confirm prompt. The tags match
// case-insensitively and the inner text must follow the "{topic} Yes?"
// grammar; anything else passes through as plain text.
func findConfirm(s string) (before, after, topic string, ok bool) {
	lower := strings.ToLower(s)
	i := strings.Index(lower, tagConfirmOpen)
	if i < 0 {
		return "", "", "", false
	}
	j := strings.Index(lower[i+len(tagConfirmOpen):], tagConfirmClose)
	if j < 0 {
		return "", "", "", false
	}
	inner := strings.TrimSpace(s[i+len(tagConfirmOpen) : i+len(tagConfirmOpen)+j])
	if !strings.HasPrefix(inner, "{") {
		return "", "", "", false
	}
	k := strings.Index(inner, "}")
	if k <= 1 {
		return "", "", "", false
	}
	if !strings.EqualFold(strings.TrimSpace(inner[k+1:]), "Yes?") {
		return "", "", "", false
	}
	before = s[:i]
	after = s[i+len(tagConfirmOpen)+j+len(tagConfirmClose):]
	return before, after, inner[1:k], true
}

// findUserRef locates the first well-formed user reference,
// <USER_ID>name[id]</USER_ID>, where id is one or more digits. Malformed
// occurrences are skipped so they render as plain text.
func findUserRef(s string) (start, end int, node Node, ok bool) {
	offset := 0
	for {
		i, e, inner, found := findTag(s[offset:], tagUserOpen, tagUserClose)
		if !found {
			return 0, 0, Node{}, false
		}
		if name, id, valid := splitUserRef(inner); valid {
			return offset + i, offset + e, Node{
				Kind:        UserRef,
				DisplayName: stripUnderscoreRuns(strings.TrimSpace(name)),
				UserID:      id,
			}, true
		}
		offset += i + len(tagUserOpen)
	}
}

// splitUserRef separates "name[id]" into its parts, requiring a trailing
// bracketed run of digits.
func splitUserRef(inner string) (name, id string, ok bool) {
	if !strings.HasSuffix(inner, "]") {
		return "", "", false
	}
	k := strings.LastIndex(inner, "[")
	if k < 0 {
		return "", "", false
	}
	id = inner[k+1 : len(inner)-1]
	if !isDigits(id) {
		return "", "", false
	}
	return inner[:k], id, true
}

// findPastCount locates the first well-formed past-count marker,
// [PAST_MEETING_COUNT]N[/PAST_MEETING_COUNT](contextId), where N is one or
// more digits and the context suffix must immediately follow the close tag.
func findPastCount(s string) (start, end int, node Node, ok bool) {
	offset := 0
	for {
		i, e, inner, found := findTag(s[offset:], tagPastCountOpen, tagPastCountClose)
		if !found {
			return 0, 0, Node{}, false
		}
		inner = strings.TrimSpace(inner)
		rest := s[offset+e:]
		if isDigits(inner) && strings.HasPrefix(rest, "(") {
			if p := strings.Index(rest, ")"); p > 0 {
				count := 0
				for _, c := range inner {
					count = count*10 + int(c-'0')
				}
				return offset + i, offset + e + p + 1, Node{
					Kind:      PastCount,
					Count:     count,
					ContextID: rest[1:p],
				}, true
			}
		}
		offset += i + len(tagPastCountOpen)
	}
}

// findMarkdownLink locates the first [text](url) span.
func findMarkdownLink(s string) (start, end int, text, url string, ok bool) {
	offset := 0
	for {
		i := strings.Index(s[offset:], "[")
		if i < 0 {
			return 0, 0, "", "", false
		}
		i += offset
		j := strings.Index(s[i:], "](")
		if j < 0 {
			return 0, 0, "", "", false
		}
		k := strings.Index(s[i+j+2:], ")")
		if k < 0 {
			return 0, 0, "", "", false
		}
		text = s[i+1 : i+j]
		url = s[i+j+2 : i+j+2+k]
		if text != "" && (strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) {
			return i, i + j + 2 + k + 1, text, url, true
		}
		offset = i + 1
	}
}

// findBareURL locates the first bare http(s) URL, terminated by whitespace
// or end of text. Returns -1, -1 when none is present.
func findBareURL(s string) (start, end int) {
	start = -1
	for _, scheme := range []string{"http://", "https://"} {
		if i := strings.Index(s, scheme); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}
	if start < 0 {
		return -1, -1
	}
	end = start
	for end < len(s) && !isSpace(s[end]) {
		end++
	}
	return start, end
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
