// Package stream implements the line-oriented frame protocol between the
// engine and the chat client. Each frame is one newline-terminated line whose
// tag is prefix-matched at the first colon boundaries; unknown lines are
// ignored by clients.
package stream

import "strings"

// Frame tags. STATUS frames carry a step-name suffix after the second colon.
const (
	TagStatus          = "STATUS:STEP:"
	TagData            = "DATA:"
	TagModelResponses  = "MODEL_RESPONSES:"
	TagSummaryExecuted = "SUMMARY_EXECUTED:"
	TagError           = "ERROR:"
)

// Kind identifies a decoded frame's type.
type Kind string

const (
	KindStatus          Kind = "status"
	KindData            Kind = "data"
	KindModelResponses  Kind = "model_responses"
	KindSummaryExecuted Kind = "summary_executed"
	KindError           Kind = "error"
)

// Frame is one decoded protocol line.
type Frame struct {
	Kind Kind
	Body string
}

// escapeBody makes a frame body line-safe. The protocol frames on newlines,
// so a newline inside a body (a model can emit one mid-token) must be
// escaped; the decoder reverses this so concatenated DATA bodies reproduce
// the answer byte-for-byte.
func escapeBody(s string) string {
	if !strings.ContainsAny(s, "\\\n\r") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unescapeBody reverses escapeBody.
func unescapeBody(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if escaped {
			switch r {
			case 'n':
				b.WriteRune('\n')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Encode renders a frame as a protocol line without the trailing newline.
func Encode(kind Kind, body string) string {
	switch kind {
	case KindStatus:
		return TagStatus + body
	case KindData:
		return TagData + escapeBody(body)
	case KindModelResponses:
		return TagModelResponses + body
	case KindSummaryExecuted:
		return TagSummaryExecuted + body
	case KindError:
		return TagError + escapeBody(body)
	default:
		return ""
	}
}

// Decode parses one protocol line (without its trailing newline). Returns
// false for lines that match no known tag; clients skip those.
func Decode(line string) (Frame, bool) {
	switch {
	case strings.HasPrefix(line, TagStatus):
		return Frame{Kind: KindStatus, Body: strings.TrimPrefix(line, TagStatus)}, true
	case strings.HasPrefix(line, TagData):
		return Frame{Kind: KindData, Body: unescapeBody(strings.TrimPrefix(line, TagData))}, true
	case strings.HasPrefix(line, TagModelResponses):
		return Frame{Kind: KindModelResponses, Body: strings.TrimPrefix(line, TagModelResponses)}, true
	case strings.HasPrefix(line, TagSummaryExecuted):
		return Frame{Kind: KindSummaryExecuted, Body: strings.TrimPrefix(line, TagSummaryExecuted)}, true
	case strings.HasPrefix(line, TagError):
		return Frame{Kind: KindError, Body: unescapeBody(strings.TrimPrefix(line, TagError))}, true
	default:
		return Frame{}, false
	}
}

// DecodeAll parses a full response body into its frames, skipping unknown
// lines. Intended for clients and tests.
func DecodeAll(body string) []Frame {
	var frames []Frame
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			continue
		}
		if f, ok := Decode(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}
