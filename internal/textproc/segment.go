package textproc

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is one candidate clause: its text and the byte offset where it starts
// in the segmented input.
type Span struct {
	Text  string
	Start int
}

// Segment splits document text into ordered candidate clause spans. The
// returned sequence is lazy and restartable; ranging over it twice yields the
// same spans.
//
// Structural cues win over content cues: a paragraph opening with a section
// marker ("3.", "(a)") is kept whole, everything else is sentence-split.
// Spans shorter than minLength runes are discarded as page noise. A document
// with no structural cues at all degrades to a single span covering the
// whole text.
func Segment(text string, minLength int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		yielded := false
		emit := func(s Span) bool {
			s.Text = strings.TrimSpace(s.Text)
			if s.Text == "" || utf8.RuneCountInString(s.Text) < minLength {
				return true
			}
			yielded = true
			return yield(s)
		}

		offset := 0
		rest := text
		for rest != "" {
			para, tail, _ := strings.Cut(rest, "\n")
			paraStart := offset
			offset += len(para) + 1
			rest = tail

			trimmed := strings.TrimSpace(para)
			if trimmed == "" {
				continue
			}
			lead := strings.Index(para, trimmed)

			if reHeading.MatchString(trimmed) {
				// numbered section: the whole paragraph is one clause
				if !emit(Span{Text: trimmed, Start: paraStart + lead}) {
					return
				}
				continue
			}
			for _, sent := range splitSentences(trimmed) {
				if !emit(Span{Text: sent.Text, Start: paraStart + lead + sent.Start}) {
					return
				}
			}
		}

		if !yielded {
			whole := strings.TrimSpace(text)
			if whole != "" {
				yield(Span{Text: whole, Start: strings.Index(text, whole)})
			}
		}
	}
}

// CollectSpans drains a span sequence into a slice.
func CollectSpans(seq iter.Seq[Span]) []Span {
	var out []Span
	for s := range seq {
		out = append(out, s)
	}
	return out
}

// splitSentences breaks prose on sentence-ending punctuation followed by
// whitespace and an uppercase letter, keeping the terminator with its
// sentence.
func splitSentences(s string) []Span {
	var out []Span
	start := 0
	runes := []rune(s)
	byteOff := make([]int, len(runes)+1)
	for i, r := range runes {
		byteOff[i+1] = byteOff[i] + utf8.RuneLen(r)
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// find the next non-space rune
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 || j >= len(runes) {
			continue // terminator not followed by whitespace, or end of text
		}
		if !unicode.IsUpper(runes[j]) {
			continue
		}
		out = append(out, Span{Text: s[byteOff[start]:byteOff[i+1]], Start: byteOff[start]})
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = append(out, Span{Text: s[byteOff[start]:], Start: byteOff[start]})
	}
	return out
}
