// Package i18n holds the reader-facing strings in Bengali and English and
// formats dates and numbers for either language.
package i18n

import (
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/khobor/internal/models"
)

const (
	Bengali = "bn"
	English = "en"
)

// Default is the language used when none is requested.
const Default = Bengali

// Normalize maps a requested language to a supported one.
func Normalize(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case English:
		return English
	default:
		return Bengali
	}
}

var catalogue = map[string]map[string]string{
	Bengali: {
		"site.name":       "খবর",
		"site.tagline":    "সত্যের সন্ধানে প্রতিদিন",
		"nav.home":        "প্রচ্ছদ",
		"nav.latest":      "সর্বশেষ",
		"nav.search":      "খুঁজুন",
		"search.prompt":   "কী খুঁজছেন?",
		"search.title":    "সার্চ রেজাল্ট",
		"search.empty":    "অনুসন্ধানের জন্য কিছু লিখুন।",
		"news.latest":     "সাম্প্রতিক খবর",
		"news.popular":    "সবচেয়ে জনপ্রিয়",
		"news.all":        "সব খবর",
		"news.related":    "আরও পড়ুন",
		"news.loading":    "লোড হচ্ছে...",
		"news.load_error": "খবর লোড করতে সমস্যা হয়েছে!",
		"news.none":       "কোনো খবর পাওয়া যায়নি!",
		"news.end":        "সব খবর শেষ!",
		"news.retry":      "আবার চেষ্টা করুন",
		"sort.label":      "সাজান",
		"sort.latest":     "সর্বশেষ",
		"sort.oldest":     "পুরোনো",
		"sort.popular":    "জনপ্রিয়",
		"news.minutes":    "মিনিটে পড়ুন",
		"news.views":      "বার পড়া হয়েছে",
		"category.empty":  "এই বিভাগে বর্তমানে কোনো সংবাদ নেই।",
		"author.default":  "লেখক",
		"author.articles": "নিবন্ধসমূহ",
		"notfound.title":  "পাতাটি খুঁজে পাওয়া যায়নি",
		"notfound.body":   "আপনি যে পাতাটি খুঁজছেন সেটি সরানো হয়েছে অথবা কখনো ছিল না।",
		"notfound.back":   "প্রচ্ছদে ফিরে যান",
		"error.title":     "কিছু একটা ভুল হয়েছে",
		"footer.about":    "আমাদের সম্পর্কে",
		"footer.contact":  "যোগাযোগ",
		"footer.privacy":  "গোপনীয়তা নীতি",
		"footer.follow":   "অনুসরণ করুন",
		"footer.rights":   "সর্বস্বত্ব সংরক্ষিত",
		"lang.switch":     "English",
		"about.title":     "আমাদের সম্পর্কে",
		"about.body":      "আমরা কখনো তথ্যের সাথে আপোষ করি না। নিখুঁত সত্যই আমাদের একমাত্র অগ্রাধিকার।",
		"contact.title":   "যোগাযোগ",
		"contact.office":  "প্রধান কার্যালয়",
		"contact.email":   "ইমেইল",
		"contact.phone":   "ফোন",
		"privacy.title":   "গোপনীয়তা নীতি",
		"privacy.body":    "আমাদের সংবাদ সেবা এবং কন্টেন্ট উন্নত করতে আমরা সীমিত তথ্য সংগ্রহ করি।",
	},
	English: {
		"site.name":       "Khobor",
		"site.tagline":    "In search of the truth, every day",
		"nav.home":        "Home",
		"nav.latest":      "Latest",
		"nav.search":      "Search",
		"search.prompt":   "What are you looking for?",
		"search.title":    "Search results",
		"search.empty":    "Type something to search for.",
		"news.latest":     "Latest news",
		"news.popular":    "Most popular",
		"news.all":        "All news",
		"news.related":    "Read more",
		"news.loading":    "Loading...",
		"news.load_error": "Failed to load news!",
		"news.none":       "No news found!",
		"news.end":        "You have reached the end!",
		"news.retry":      "Try again",
		"sort.label":      "Sort by",
		"sort.latest":     "Latest",
		"sort.oldest":     "Oldest",
		"sort.popular":    "Most read",
		"news.minutes":    "min read",
		"news.views":      "views",
		"category.empty":  "There is no news in this category yet.",
		"author.default":  "Author",
		"author.articles": "Articles",
		"notfound.title":  "Page not found",
		"notfound.body":   "The page you are looking for has moved or never existed.",
		"notfound.back":   "Back to the homepage",
		"error.title":     "Something went wrong",
		"footer.about":    "About us",
		"footer.contact":  "Contact",
		"footer.privacy":  "Privacy policy",
		"footer.follow":   "Follow us",
		"footer.rights":   "All rights reserved",
		"lang.switch":     "বাংলা",
		"about.title":     "About us",
		"about.body":      "We never compromise on facts. The plain truth is our only priority.",
		"contact.title":   "Contact",
		"contact.office":  "Head office",
		"contact.email":   "Email",
		"contact.phone":   "Phone",
		"privacy.title":   "Privacy policy",
		"privacy.body":    "We collect limited information to improve our news service and content.",
	},
}

// T returns the message for key in lang, falling back to Bengali and then to
// the key itself.
func T(lang, key string) string {
	if msg, ok := catalogue[Normalize(lang)][key]; ok {
		return msg
	}
	if msg, ok := catalogue[Default][key]; ok {
		return msg
	}
	return key
}

var bengaliDigits = [10]rune{'০', '১', '২', '৩', '৪', '৫', '৬', '৭', '৮', '৯'}

// Digits rewrites the ASCII digits of s in the script of lang.
func Digits(s, lang string) string {
	if Normalize(lang) != Bengali {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 3)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(bengaliDigits[r-'0'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Number formats n with thousands separators in the script of lang.
func Number(n int64, lang string) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return Digits(out, lang)
}

var bengaliMonths = [12]string{
	"জানুয়ারি", "ফেব্রুয়ারি", "মার্চ", "এপ্রিল", "মে", "জুন",
	"জুলাই", "আগস্ট", "সেপ্টেম্বর", "অক্টোবর", "নভেম্বর", "ডিসেম্বর",
}

var bengaliWeekdays = [7]string{
	"রবিবার", "সোমবার", "মঙ্গলবার", "বুধবার", "বৃহস্পতিবার", "শুক্রবার", "শনিবার",
}

// Dhaka is the zone dates are displayed in.
var Dhaka = loadDhaka()

func loadDhaka() *time.Location {
	if loc, err := time.LoadLocation("Asia/Dhaka"); err == nil {
		return loc
	}
	return time.FixedZone("BST", 6*60*60)
}

// FormatDate renders t as "day month year", e.g. "২০ জানুয়ারি ২০২৬".
// The zero time renders as an empty string.
func FormatDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(Dhaka)
	if Normalize(lang) == English {
		return t.Format("2 January 2006")
	}
	return Digits(fmt.Sprintf("%d %s %d", t.Day(), bengaliMonths[t.Month()-1], t.Year()), Bengali)
}

// FormatLongDate prefixes FormatDate with the weekday.
func FormatLongDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	local := t.In(Dhaka)
	if Normalize(lang) == English {
		return local.Weekday().String() + ", " + FormatDate(t, lang)
	}
	return bengaliWeekdays[local.Weekday()] + ", " + FormatDate(t, lang)
}

// CategoryName picks the category name to display in lang.
func CategoryName(c models.Category, lang string) string {
	if Normalize(lang) == English && c.Name != "" {
		return c.Name
	}
	return c.DisplayName()
}
