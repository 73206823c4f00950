package report

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxSegmentLen keeps a segment under the messaging platform's text
// limit with some headroom.
const DefaultMaxSegmentLen = 4800

// Segment is one outbound text message. Options become quick-reply buttons
// when the transport supports them.
type Segment struct {
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// Texts returns the text of every segment.
func Texts(segments []Segment) []string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		out = append(out, s.Text)
	}
	return out
}

// pack greedily joins whole lines into chunks of at most max runes. A line
// longer than max is cut on rune boundaries.
func pack(lines []string, max int) []string {
	if max <= 0 {
		max = DefaultMaxSegmentLen
	}
	var (
		out     []string
		buf     strings.Builder
		size    int
		started bool
	)
	flush := func() {
		if started {
			if text := strings.TrimRight(buf.String(), "\n"); text != "" {
				out = append(out, text)
			}
		}
		buf.Reset()
		size = 0
		started = false
	}
	for _, line := range lines {
		for _, piece := range splitRunes(line, max) {
			n := utf8.RuneCountInString(piece)
			if !started {
				if piece == "" {
					continue
				}
				buf.WriteString(piece)
				size = n
				started = true
				continue
			}
			if size+1+n > max {
				flush()
				if piece == "" {
					continue
				}
				buf.WriteString(piece)
				size = n
				started = true
				continue
			}
			buf.WriteByte('\n')
			buf.WriteString(piece)
			size += 1 + n
		}
	}
	flush()
	return out
}

func splitRunes(line string, max int) []string {
	if utf8.RuneCountInString(line) <= max {
		return []string{line}
	}
	var parts []string
	runes := []rune(line)
	for len(runes) > max {
		parts = append(parts, string(runes[:max]))
		runes = runes[max:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
