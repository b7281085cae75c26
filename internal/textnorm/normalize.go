// Package textnorm implements the text normalization pipeline of
// spec.md §4.2: HTML unescape, tag strip (preserving paragraph breaks),
// whitespace collapse, Unicode NFKC normalization, full-width-to-half-width
// punctuation folding, and title desuffixing. The pipeline is deterministic:
// identical input always produces identical output.
package textnorm

import (
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// blockLevelAtoms produce a paragraph break when closed, so the stripped
// text doesn't run every block element together.
var blockLevelAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.Tr: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Blockquote: true,
}

var whitespaceRun = regexp.MustCompile(`[ \t\f\v]+`)
var blankLineRun = regexp.MustCompile(`\n{3,}`)

// NormalizeBody runs the full body-text pipeline: unescape, strip tags
// (preserving paragraph breaks), collapse whitespace, NFKC, width fold.
func NormalizeBody(raw string) string {
	stripped := StripHTML(raw)
	return foldWidth(collapseWhitespace(norm.NFKC.String(stripped)))
}

// NormalizeTitle runs the title pipeline and, when sourceName is non-empty,
// desuffixes a trailing "| Source Name" (or similar separator) that
// duplicates the known source name.
func NormalizeTitle(raw, sourceName string) string {
	stripped := StripHTML(raw)
	clean := foldWidth(collapseWhitespace(norm.NFKC.String(stripped)))
	return desuffix(clean, sourceName)
}

// StripHTML unescapes entities and removes tags, inserting a newline at
// each block-level element boundary so paragraph structure survives as
// plain-text line breaks.
func StripHTML(raw string) string {
	unescaped := html.UnescapeString(raw)
	tokenizer := xhtml.NewTokenizer(strings.NewReader(unescaped))

	var b strings.Builder
	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return b.String()
		case xhtml.TextToken:
			b.Write(tokenizer.Text())
		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if a := atom.Lookup(name); blockLevelAtoms[a] {
				b.WriteByte('\n')
			}
		}
	}
}

// collapseWhitespace squashes runs of horizontal whitespace to a single
// space and runs of three-or-more newlines down to a paragraph break,
// trimming the result.
func collapseWhitespace(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = blankLineRun.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// foldWidth maps full-width punctuation and forms to their half-width
// equivalents — necessary for consistent fingerprinting of CJK content
// that mixes full- and half-width punctuation.
func foldWidth(s string) string {
	return width.Fold.String(s)
}

// titleSeparators are the delimiters recognized between a title and a
// trailing source-name suffix.
var titleSeparators = []string{" | ", " - ", " — ", " :: ", " » "}

// desuffix removes a trailing "<title><sep><sourceName>" suffix when the
// tail exactly matches sourceName (case-insensitive), per spec.md §4.2.
func desuffix(title, sourceName string) string {
	if sourceName == "" {
		return title
	}
	for _, sep := range titleSeparators {
		if idx := strings.LastIndex(title, sep); idx != -1 {
			tail := strings.TrimSpace(title[idx+len(sep):])
			if strings.EqualFold(tail, sourceName) {
				return strings.TrimSpace(title[:idx])
			}
		}
	}
	return title
}
