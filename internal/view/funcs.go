package view

import (
	"errors"
	"html/template"
	"net/url"
	"time"

	"github.com/bilgisen/khobor/internal/i18n"
	"github.com/bilgisen/khobor/internal/models"
	"github.com/bilgisen/khobor/internal/richtext"
)

// Placeholder is shown for articles without a thumbnail.
const Placeholder = "/static/placeholder-news.svg"

// Funcs returns the functions available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"t":        i18n.T,
		"date":     i18n.FormatDate,
		"longDate": i18n.FormatLongDate,
		"digits":   i18n.Digits,
		"number":   i18n.Number,
		"int":      func(n int) int64 { return int64(n) },
		"catName":  i18n.CategoryName,
		"excerpt":  richtext.Excerpt,
		"minutes":  richtext.ReadingMinutes,
		"richHTML": func(s string) template.HTML {
			return template.HTML(richtext.Sanitize(s))
		},
		"thumb": ThumbFunc(""),
		"initial": func(s string) string {
			for _, r := range s {
				return string(r)
			}
			return "A"
		},
		"add":  func(a, b int) int { return a + b },
		"year": func() int { return time.Now().Year() },
		"dict": dict,
	}
}

// ThumbFunc returns the "thumb" template function. Relative thumbnail paths
// stored by the backend are resolved against base, the browser-visible API
// URL; articles without a thumbnail get the placeholder.
func ThumbFunc(base string) func(models.News) string {
	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		baseURL = nil
	}
	return func(n models.News) string {
		switch {
		case n.Thumbnail == "":
			return Placeholder
		case baseURL == nil:
			return n.Thumbnail
		}
		ref, err := url.Parse(n.Thumbnail)
		if err != nil || ref.IsAbs() || ref.Host != "" {
			return n.Thumbnail
		}
		return baseURL.ResolveReference(ref).String()
	}
}

func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict: keys must be strings")
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}
