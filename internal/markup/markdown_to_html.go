package markup

import (
	"regexp"
	"strconv"
	"strings"
)

type block int

const (
	blockNone block = iota
	blockUnordered
	blockOrdered
	blockQuote
)

var blockTags = map[block][2]string{
	blockUnordered: {"<ul>", "</ul>"},
	blockOrdered:   {"<ol>", "</ol>"},
	blockQuote:     {"<blockquote>", "</blockquote>"},
}

// Block prefixes are matched against already-escaped text, so a quote marker is "&gt; ".
const (
	quotePrefix = "&gt; "
	fence       = "```"
)

var (
	headingLine   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	orderedLine   = regexp.MustCompile(`^\d+\.\s+(.*)$`)
	unorderedLine = regexp.MustCompile(`^[-*]\s+(.*)$`)
	ruleLine      = regexp.MustCompile(`^-{3,}$`)

	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\x00", "",
	)
)

// MarkdownToHTML renders stored Markdown back into HTML for the editor and for
// read-only display. The raw text is entity-escaped before any tag is emitted,
// so the output never contains markup that did not come from a recognised rule.
func MarkdownToHTML(markdown string) string {
	trimmed := strings.TrimSpace(markdown)
	if trimmed == "" {
		return ""
	}

	escaped := htmlEscaper.Replace(trimmed)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")

	lines := strings.Split(escaped, "\n")
	r := &htmlRenderer{}
	for i, line := range lines {
		r.line(line, lines[i+1:])
	}
	r.finish()
	return r.out.String()
}

type htmlRenderer struct {
	out      strings.Builder
	open     block
	inFence  bool
	fenceLen int
}

// line renders one source line. rest holds the lines after it; a fence only opens
// when one of them closes it.
func (r *htmlRenderer) line(raw string, rest []string) {
	if r.inFence {
		r.fenceLine(raw)
		return
	}

	line := strings.TrimSpace(raw)
	switch {
	case line == "":
		r.closeBlock()
		r.out.WriteString("<br />")

	case strings.HasPrefix(line, fence) && !strings.Contains(line[len(fence):], "`") && closesFence(rest):
		r.closeBlock()
		r.out.WriteString("<pre><code>")
		r.inFence = true
		r.fenceLen = 0

	case ruleLine.MatchString(line):
		r.closeBlock()
		r.out.WriteString("<hr />")

	case strings.HasPrefix(line, quotePrefix):
		r.openBlock(blockQuote)
		r.out.WriteString("<p>" + RenderInline(strings.TrimPrefix(line, quotePrefix)) + "</p>")

	case headingLine.MatchString(line):
		r.closeBlock()
		m := headingLine.FindStringSubmatch(line)
		level := strconv.Itoa(len(m[1]))
		r.out.WriteString("<h" + level + ">" + RenderInline(m[2]) + "</h" + level + ">")

	case orderedLine.MatchString(line):
		r.openBlock(blockOrdered)
		r.out.WriteString("<li>" + RenderInline(orderedLine.FindStringSubmatch(line)[1]) + "</li>")

	case unorderedLine.MatchString(line):
		r.openBlock(blockUnordered)
		r.out.WriteString("<li>" + RenderInline(unorderedLine.FindStringSubmatch(line)[1]) + "</li>")

	default:
		r.closeBlock()
		r.out.WriteString("<p>" + RenderInline(line) + "</p>")
	}
}

func closesFence(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) == fence {
			return true
		}
	}
	return false
}

func (r *htmlRenderer) fenceLine(raw string) {
	if strings.TrimSpace(raw) == fence {
		r.out.WriteString("</code></pre>")
		r.inFence = false
		return
	}
	if r.fenceLen > 0 {
		r.out.WriteByte('\n')
	}
	r.out.WriteString(strings.TrimRight(raw, " \t\r"))
	r.fenceLen++
}

// openBlock switches to the given list or quote; any other open one is closed first.
func (r *htmlRenderer) openBlock(b block) {
	if r.open == b {
		return
	}
	r.closeBlock()
	r.out.WriteString(blockTags[b][0])
	r.open = b
}

func (r *htmlRenderer) closeBlock() {
	if r.open == blockNone {
		return
	}
	r.out.WriteString(blockTags[r.open][1])
	r.open = blockNone
}

func (r *htmlRenderer) finish() {
	r.closeBlock()
}
