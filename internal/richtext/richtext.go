// Package richtext derives plain text, excerpts and reading time from the
// HTML bodies written in the CMS editor.
package richtext

import (
	"html"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// WordsPerMinute is the reading speed assumed by ReadingMinutes.
const WordsPerMinute = 200

const (
	blockElements = "br, p, div, li, h1, h2, h3, h4, h5, h6, blockquote, tr, figcaption"
	unsafeTags    = "script, style, iframe, object, embed, link, meta, base, form"
)

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// CleanText removes control characters and collapses whitespace.
func CleanText(s string) string {
	s = controlChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// PlainText returns the visible text of an HTML fragment.
func PlainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return CleanText(html.UnescapeString(fragment))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(html.UnescapeString(fragment))
	}
	doc.Find(unsafeTags).Remove()
	// Keep words of adjacent blocks apart.
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})
	return CleanText(doc.Text())
}

// Excerpt returns at most max runes of the fragment's plain text.
func Excerpt(fragment string, max int) string {
	return Truncate(PlainText(fragment), max)
}

// ReadingMinutes estimates the reading time of an HTML fragment, never less
// than one minute.
func ReadingMinutes(fragment string) int {
	words := len(strings.Fields(PlainText(fragment)))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Truncate shortens s to at most max runes, ending in an ellipsis. It prefers
// to cut at a word boundary.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max-1])
	if i := strings.LastIndex(cut, " "); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-।") + "…"
}

// Sanitize strips active content from an article body before it is embedded
// in a page: executable tags, inline event handlers and javascript: URLs.
func Sanitize(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return html.EscapeString(fragment)
	}
	doc.Find(unsafeTags).Remove()
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		var drop []string
		for _, node := range s.Nodes {
			for _, attr := range node.Attr {
				key := strings.ToLower(attr.Key)
				val := strings.ToLower(strings.TrimSpace(attr.Val))
				if strings.HasPrefix(key, "on") ||
					((key == "href" || key == "src") && strings.HasPrefix(val, "javascript:")) {
					drop = append(drop, attr.Key)
				}
			}
		}
		for _, key := range drop {
			s.RemoveAttr(key)
		}
	})
	out, err := doc.Find("body").Html()
	if err != nil {
		return html.EscapeString(fragment)
	}
	return strings.TrimSpace(out)
}
