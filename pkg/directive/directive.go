/*
directive recognizes the structured markers embedded in assistant-produced
text and converts them into renderable nodes. Parsing is pure and
deterministic: the same text always yields the same nodes, and markers are
processed in a fixed precedence so overlapping patterns never double-fire.
Registration of any side effect (such as starting a research job for a
request marker) is the caller's responsibility; the parser only reports
what appears in the text.
*/
package directive

import (
	"fmt"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Kind discriminates inline nodes.
type Kind int

// LineKind discriminates physical-line formatting, recognized before
// inline markers are parsed on the line's remaining text.
type LineKind int

// Node is one inline element of a parsed line. Exactly the fields for its
// Kind are set.
type Node struct {
	Kind        Kind
	Text        string // Text and Bold content, Link display text
	URL         string // Link target
	RequestID   string // Request
	Payload     string // MeetingPrefill inner payload, may be empty
	Topic       string // ConfirmPrompt
	DisplayName string // UserRef
	UserID      string // UserRef
	Count       int    // PastCount
	ContextID   string // PastCount
}

// Line is one physical line of a parsed message.
type Line struct {
	Kind  LineKind
	Nodes []Node
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	Text Kind = iota
	Bold
	Link
	Request
	MeetingPrefill
	ConfirmPrompt
	UserRef
	PastCount
)

const (
	Plain LineKind = iota
	Heading
	Bullet
)

// Display text substituted for a request marker while the job runs, and
// after it completes. The completion swap matches on ResearchingText.
const (
	ResearchingText = "Researching your request"
	CompletedText   = "Research completed! You can download the results from the download button above."
)

// Marker syntax, frozen wire format
const (
	tagRequestOpen    = "<REQUEST_ID>"
	tagRequestClose   = "</REQUEST_ID>"
	tagMeetingOpen    = "<PrePopulateMeeting>"
	tagMeetingClose   = "</PrePopulateMeeting>"
	tagConfirmOpen    = "<research_topic>" // matched case-insensitively
	tagConfirmClose   = "</research_topic>"
	tagUserOpen       = "<USER_ID>"
	tagUserClose      = "</USER_ID>"
	tagPastCountOpen  = "[PAST_MEETING_COUNT]"
	tagPastCountClose = "[/PAST_MEETING_COUNT]"
	tagPrepareOpen    = "[PREPARE_MEETING]"
	tagPrepareClose   = "[/PREPARE_MEETING]"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Parse converts message text into renderable lines. Annotation-only
// prepare-meeting spans are stripped first; heading and bullet prefixes
// are recognized per physical line; inline markers are then parsed on each
// line's remaining text in precedence order.
func Parse(text string) []Line {
	text = Strip(text)
	if text == "" {
		return nil
	}
	var result []Line
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "###"):
			rest := strings.TrimLeft(strings.TrimPrefix(line, "###"), " ")
			result = append(result, Line{Kind: Heading, Nodes: parseInline(rest)})
		case strings.HasPrefix(strings.TrimSpace(line), "-"):
			rest := strings.TrimLeft(strings.TrimPrefix(strings.TrimSpace(line), "-"), " ")
			result = append(result, Line{Kind: Bullet, Nodes: parseInline(rest)})
		default:
			result = append(result, Line{Kind: Plain, Nodes: parseInline(line)})
		}
	}
	return result
}

// Strip removes prepare-meeting annotation spans from text. These markers
// only annotate the turn; they are never rendered as an affordance.
func Strip(text string) string {
	for {
		i := strings.Index(text, tagPrepareOpen)
		if i < 0 {
			return text
		}
		j := strings.Index(text[i:], tagPrepareClose)
		if j < 0 {
			return text
		}
		rest := text[i+j+len(tagPrepareClose):]
		text = text[:i] + strings.TrimLeft(rest, " \t\r\n")
	}
}

// RequestIDs returns every request id appearing in text, in order. Each
// appearance is reported on every call; de-duplication is the caller's
// responsibility.
func RequestIDs(text string) []string {
	var ids []string
	for _, line := range Parse(text) {
		for _, node := range line.Nodes {
			if node.Kind == Request {
				ids = append(ids, node.RequestID)
			}
		}
	}
	return ids
}

// ResearchTurn derives the user turn submitted when a confirm prompt is
// accepted.
func ResearchTurn(topic string) string {
	return fmt.Sprintf("Help with this topic on Research %q", topic)
}

// PlainText flattens parsed lines back into displayable text, substituting
// a textual form for each affordance. Used by copy and download helpers.
func PlainText(lines []Line) string {
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if line.Kind == Bullet {
			sb.WriteString("• ")
		}
		for _, node := range line.Nodes {
			switch node.Kind {
			case Text, Bold, Link:
				sb.WriteString(node.Text)
			case Request:
				sb.WriteString(ResearchingText)
			case MeetingPrefill:
				sb.WriteString("Schedule Meeting")
			case ConfirmPrompt:
				sb.WriteString("Yes")
			case UserRef:
				sb.WriteString(node.DisplayName)
			case PastCount:
				fmt.Fprintf(&sb, "%d tasks", node.Count)
			}
		}
	}
	return sb.String()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// parseInline applies marker precedence to one segment of text:
// meeting-prefill, then request, then confirm-prompt, then user-reference
// and past-count by position, then fallback formatting.
func parseInline(s string) []Node {
	if s == "" {
		return nil
	}

	// 1. Meeting prefill fully replaces its span with an affordance
	if start, end, payload, ok := findTag(s, tagMeetingOpen, tagMeetingClose); ok {
		nodes := parseInline(s[:start])
		nodes = append(nodes, Node{Kind: MeetingPrefill, Payload: payload})
		return append(nodes, parseInline(s[end:])...)
	}

	// 2. A request marker replaces the entire segment with the running
	// indicator; only the id survives
	if _, _, id, ok := findTag(s, tagRequestOpen, tagRequestClose); ok {
		return []Node{{Kind: Request, RequestID: strings.TrimSpace(id)}}
	}

	// 3. Confirm prompt: the marker is removed and the cleaned remainder
	// precedes the accept affordance
	if before, after, topic, ok := findConfirm(s); ok {
		var nodes []Node
		if cleaned := stripUnderscoreRuns(strings.TrimSpace(before + after)); cleaned != "" {
			nodes = append(nodes, Node{Kind: Text, Text: cleaned})
		}
		return append(nodes, Node{Kind: ConfirmPrompt, Topic: topic})
	}

	// 4, 5. User references and past counts, leftmost first; surrounding
	// text is preserved verbatim through the fallback
	return scanRefs(s)
}

// scanRefs extracts user-reference and past-count markers by position,
// applying fallback formatting to the gaps between them.
func scanRefs(s string) []Node {
	uStart, uEnd, uNode, uOK := findUserRef(s)
	pStart, pEnd, pNode, pOK := findPastCount(s)

	switch {
	case uOK && (!pOK || uStart <= pStart):
		nodes := fallback(s[:uStart])
		nodes = append(nodes, uNode)
		return append(nodes, scanRefs(s[uEnd:])...)
	case pOK:
		nodes := fallback(s[:pStart])
		nodes = append(nodes, pNode)
		return append(nodes, scanRefs(s[pEnd:])...)
	default:
		return fallback(s)
	}
}

// fallback applies bold and link conversion to plain text. Runs of two or
// more underscores are stripped here, after all marker extraction, so the
// suppression can never corrupt a marker's own syntax.
func fallback(s string) []Node {
	if s == "" {
		return nil
	}
	var nodes []Node
	for {
		i := strings.Index(s, "**")
		if i < 0 {
			break
		}
		j := strings.Index(s[i+2:], "**")
		if j < 0 {
			break
		}
		nodes = append(nodes, links(s[:i])...)
		nodes = append(nodes, Node{Kind: Bold, Text: stripUnderscoreRuns(s[i+2 : i+2+j])})
		s = s[i+2+j+2:]
	}
	return append(nodes, links(s)...)
}

// links converts markdown-style links and bare http(s) URLs in plain text
// into link nodes.
func links(s string) []Node {
	if s == "" {
		return nil
	}
	var nodes []Node
	emitText := func(t string) {
		if t = stripUnderscoreRuns(t); t != "" {
			nodes = append(nodes, Node{Kind: Text, Text: t})
		}
	}
	for {
		mStart, mEnd, text, u, ok := findMarkdownLink(s)
		bStart, bEnd := findBareURL(s)
		switch {
		case ok && (bStart < 0 || mStart <= bStart):
			emitText(s[:mStart])
			nodes = append(nodes, Node{Kind: Link, Text: text, URL: u})
			s = s[mEnd:]
		case bStart >= 0:
			emitText(s[:bStart])
			nodes = append(nodes, Node{Kind: Link, Text: s[bStart:bEnd], URL: s[bStart:bEnd]})
			s = s[bEnd:]
		default:
			emitText(s)
			return nodes
		}
	}
}

// stripUnderscoreRuns removes runs of two or more consecutive underscores,
// a cosmetic artifact of the backend model.
func stripUnderscoreRuns(s string) string {
	if !strings.Contains(s, "__") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '_' && i+1 < len(s) && s[i+1] == '_' {
			for i < len(s) && s[i] == '_' {
				i++
			}
			continue
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}
