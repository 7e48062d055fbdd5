package markup

import (
	"regexp"
	"strconv"
	"strings"
)

// tagPattern matches an element with optional attributes and captures its inner content.
// Attributes are matched only to be discarded.
func tagPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + name + `(?:\s[^>]*)?>(.*?)</` + name + `\s*>`)
}

func openTag(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<` + name + `(?:\s[^>]*)?/?>`)
}

func closeTag(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)</` + name + `\s*>`)
}

type inlineRule struct {
	pattern *regexp.Regexp
	marker  string
}

var (
	preCodeBlock = regexp.MustCompile(`(?is)<pre(?:\s[^>]*)?>\s*<code(?:\s[^>]*)?>(.*?)</code>\s*</pre>`)

	headings = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<h1(?:\s[^>]*)?>(.*?)</h1>`),
		regexp.MustCompile(`(?i)<h2(?:\s[^>]*)?>(.*?)</h2>`),
		regexp.MustCompile(`(?i)<h3(?:\s[^>]*)?>(.*?)</h3>`),
	}

	blockquoteBlock = tagPattern("blockquote")
	anchor          = regexp.MustCompile(`(?is)<a\s[^>]*?href="([^"]*)"[^>]*>(.*?)</a\s*>`)

	inlineRules = []inlineRule{
		{tagPattern("strong"), "**"},
		{tagPattern("b"), "**"},
		{tagPattern("em"), "*"},
		{tagPattern("i"), "*"},
		{tagPattern("s"), "~~"},
		{tagPattern("del"), "~~"},
		{tagPattern("strike"), "~~"},
		{tagPattern("code"), "`"},
		{tagPattern("u"), ""},
	}

	orderedList   = tagPattern("ol")
	unorderedList = tagPattern("ul")
	listItem      = tagPattern("li")

	lineBreak      = regexp.MustCompile(`(?i)<br\s*/?>`)
	horizontalRule = openTag("hr")
	divOpen        = openTag("div")
	divClose       = closeTag("div")
	paragraphOpen  = openTag("p")
	paragraphClose = closeTag("p")
	anyTag         = regexp.MustCompile(`<[^>]+>`)
	excessNewlines = regexp.MustCompile(`\n{3,}`)

	// &amp; is decoded last so "&amp;lt;" yields "&lt;" rather than "<".
	entityDecoding = [][2]string{
		{"&nbsp;", " "},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", `"`},
		{"&#39;", "'"},
		{"&amp;", "&"},
	}
)

// HTMLToMarkdown converts the rich-text editor's HTML into the stored Markdown dialect.
//
// The conversion is an ordered series of substitutions; later steps rely on earlier
// ones having consumed their delimiters. Unknown markup falls through to tag
// stripping, so the function never fails.
func HTMLToMarkdown(html string) string {
	md := html

	md = replaceSubmatch(preCodeBlock, md, func(m []string) string {
		return "\n```\n" + strings.TrimSpace(m[1]) + "\n```\n"
	})

	for i, re := range headings {
		prefix := strings.Repeat("#", i+1)
		md = re.ReplaceAllString(md, "\n"+prefix+" ${1}\n\n")
	}

	md = replaceSubmatch(blockquoteBlock, md, func(m []string) string {
		inner := paragraphOpen.ReplaceAllString(m[1], "")
		inner = paragraphClose.ReplaceAllString(inner, "\n")
		inner = lineBreak.ReplaceAllString(inner, "\n")
		var quoted []string
		for _, line := range strings.Split(inner, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			quoted = append(quoted, "> "+line)
		}
		if len(quoted) == 0 {
			return "\n"
		}
		return "\n" + strings.Join(quoted, "\n") + "\n"
	})

	md = anchor.ReplaceAllString(md, "[${2}](${1})")

	for _, rule := range inlineRules {
		md = rule.pattern.ReplaceAllString(md, rule.marker+"${1}"+rule.marker)
	}

	md = replaceSubmatch(orderedList, md, func(m []string) string {
		n := 0
		items := replaceSubmatch(listItem, m[1], func(li []string) string {
			n++
			return strconv.Itoa(n) + ". " + listItemText(li[1]) + "\n"
		})
		return "\n" + items
	})

	md = replaceSubmatch(unorderedList, md, func(m []string) string {
		items := replaceSubmatch(listItem, m[1], func(li []string) string {
			return "* " + listItemText(li[1]) + "\n"
		})
		return "\n" + items
	})

	// li outside of any list
	md = replaceSubmatch(listItem, md, func(li []string) string {
		return "* " + listItemText(li[1]) + "\n"
	})

	md = lineBreak.ReplaceAllString(md, "\n")
	md = horizontalRule.ReplaceAllString(md, "\n---\n")
	md = divOpen.ReplaceAllString(md, "\n")
	md = divClose.ReplaceAllString(md, "")
	md = paragraphOpen.ReplaceAllString(md, "")
	md = paragraphClose.ReplaceAllString(md, "\n")

	md = anyTag.ReplaceAllString(md, "")
	md = decodeEntities(md)
	md = excessNewlines.ReplaceAllString(md, "\n\n")

	return strings.TrimSpace(md)
}

// VisibleText returns the text a reader would see for the given editor HTML.
func VisibleText(html string) string {
	text := lineBreak.ReplaceAllString(html, "\n")
	text = anyTag.ReplaceAllString(text, "")
	return strings.TrimSpace(decodeEntities(text))
}

// listItemText flattens editor paragraphs inside a list item onto one line.
func listItemText(inner string) string {
	inner = paragraphOpen.ReplaceAllString(inner, "")
	inner = paragraphClose.ReplaceAllString(inner, " ")
	return strings.TrimSpace(inner)
}

func decodeEntities(s string) string {
	for _, pair := range entityDecoding {
		s = strings.ReplaceAll(s, pair[0], pair[1])
	}
	return s
}

func replaceSubmatch(re *regexp.Regexp, src string, fn func(m []string) string) string {
	return re.ReplaceAllStringFunc(src, func(match string) string {
		return fn(re.FindStringSubmatch(match))
	})
}
