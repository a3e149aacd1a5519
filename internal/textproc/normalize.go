// Package textproc holds the deterministic text cleanup and clause
// segmentation that feed the classifier and the field extractor.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reSpaces    = regexp.MustCompile(`[ \t]+`)
	reParaBreak = regexp.MustCompile(`\n\s*\n+`)

	// Leading section markers: "3.", "3.1", "12)", "(a)", "b)". The trailing
	// punctuation is required so bare numbers (amounts, addresses) never read
	// as headings.
	reHeading = regexp.MustCompile(`^(\d+(\.\d+)*[.)]|\([a-z0-9]+\)|[a-z]\))\s+`)
)

// Normalize cleans raw extracted document text: control characters and
// page-break markers are dropped, hyphenated line breaks are rejoined,
// wrapped lines are merged into their paragraph, and whitespace is collapsed.
// Retained newlines are structural: paragraph boundaries and section starts.
//
// Normalize is pure and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '\n':
			b.WriteRune('\n')
		case r == '\f', r == '\v', r == '\r':
			// page breaks and carriage returns become paragraph boundaries
			b.WriteRune('\n')
			b.WriteRune('\n')
		case r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// drop remaining control characters from PDF extraction
		case r == ' ':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	text := joinHyphenBreaks(b.String())

	paras := reParaBreak.Split(text, -1)
	out := make([]string, 0, len(paras))
	for _, para := range paras {
		joined := joinParagraphLines(para)
		if joined != "" {
			out = append(out, joined)
		}
	}
	return strings.Join(out, "\n\n")
}

// joinHyphenBreaks repairs hyphenation artifacts where a word was wrapped
// across a line break ("agree-\nment"). The continuation must be plain prose;
// a line opening with a section marker keeps its break so the repair stays
// idempotent with respect to retained structural newlines.
func joinHyphenBreaks(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '-' && i > 0 && i+1 < len(runes) && runes[i+1] == '\n' && unicode.IsLetter(runes[i-1]) {
			rest := strings.TrimLeft(string(runes[i+2:]), " \t")
			if line, _, _ := strings.Cut(rest, "\n"); line != "" {
				first, _ := firstRune(line)
				if unicode.IsLetter(first) && unicode.IsLower(first) && !reHeading.MatchString(line) {
					i++ // skip the newline, dropping the hyphen
					continue
				}
			}
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

// joinParagraphLines merges wrapped lines of a paragraph into running text,
// keeping a line break only in front of lines that open with a section
// marker.
func joinParagraphLines(para string) string {
	lines := strings.Split(para, "\n")
	var parts []string
	current := ""
	flush := func() {
		current = strings.TrimSpace(reSpaces.ReplaceAllString(current, " "))
		if current != "" {
			parts = append(parts, current)
		}
		current = ""
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if reHeading.MatchString(line) {
			flush()
			current = line
			continue
		}
		if current == "" {
			current = line
		} else {
			current += " " + line
		}
	}
	flush()
	return strings.Join(parts, "\n")
}

// FoldForFeatures produces the classification-only form of a clause:
// lowercased, punctuation and symbols removed, whitespace collapsed. The
// original casing is kept on the Clause record; only the feature extractor
// sees this form.
func FoldForFeatures(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
			// punctuation and symbols are deleted outright, matching the
			// vectorizer's tokenization
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
