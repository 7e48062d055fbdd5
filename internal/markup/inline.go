package markup

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	codeSpan   = regexp.MustCompile("`([^`]+)`")
	inlineLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	slotRef    = regexp.MustCompile("\x00([0-9]+)\x00")

	emphasisRules = []struct {
		pattern *regexp.Regexp
		open    string
		close   string
	}{
		{regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>", "</strong>"},
		{regexp.MustCompile(`__(.+?)__`), "<strong>", "</strong>"},
		{regexp.MustCompile(`\*(.+?)\*`), "<em>", "</em>"},
		{regexp.MustCompile(`_(.+?)_`), "<em>", "</em>"},
		{regexp.MustCompile(`~~(.+?)~~`), "<del>", "</del>"},
	}
)

// RenderInline applies the span-level rules to one line of already-escaped text.
// Code spans and links are set aside before emphasis runs so their contents stay literal.
func RenderInline(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	var slots []string
	stash := func(fragment string) string {
		slots = append(slots, fragment)
		return "\x00" + strconv.Itoa(len(slots)-1) + "\x00"
	}

	text = replaceSubmatch(codeSpan, text, func(m []string) string {
		return stash("<code>" + m[1] + "</code>")
	})

	text = replaceSubmatch(inlineLink, text, func(m []string) string {
		if !safeHref(m[2]) {
			return m[0]
		}
		return stash(`<a href="` + m[2] + `">` + emphasize(m[1]) + "</a>")
	})

	text = emphasize(text)

	// link labels may hold code slots, so restore until nothing is left
	for slotRef.MatchString(text) {
		text = replaceSubmatch(slotRef, text, func(m []string) string {
			i, err := strconv.Atoi(m[1])
			if err != nil || i >= len(slots) {
				return ""
			}
			return slots[i]
		})
	}
	return text
}

func emphasize(text string) string {
	for _, rule := range emphasisRules {
		text = rule.pattern.ReplaceAllString(text, rule.open+"${1}"+rule.close)
	}
	return text
}

func safeHref(href string) bool {
	lower := strings.ToLower(href)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "mailto:"):
		return true
	case strings.HasPrefix(lower, "/") && !strings.HasPrefix(lower, "//"):
		return true
	}
	return false
}
