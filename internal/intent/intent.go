// Package intent extracts shopping signals from free-text requests. It is
// deliberately isolated: nothing here touches ranking or storage.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var stopWords = map[string]bool{
	"find": true, "me": true, "the": true, "best": true, "a": true,
	"an": true, "some": true, "good": true, "great": true, "cheap": true,
	"i": true, "want": true, "need": true, "looking": true, "for": true,
	"get": true, "buy": true, "show": true, "search": true, "with": true,
	"and": true, "or": true, "under": true, "over": true, "below": true,
	"above": true, "less": true, "than": true, "more": true,
	"highest": true, "lowest": true, "deals": true, "please": true,
	"can": true, "you": true, "could": true, "would": true, "should": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"is": true, "it": true, "my": true, "that": true, "this": true,
}

var (
	nonWord = regexp.MustCompile(`[^\w\s$]`)

	// Price-ceiling phrasings, tried in order; the first match wins.
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)under\s*\$?(\d+)`),
		regexp.MustCompile(`(?i)below\s*\$?(\d+)`),
		regexp.MustCompile(`(?i)less\s+than\s*\$?(\d+)`),
	}

	cashbackPattern = regexp.MustCompile(`(?i)(highest|best)\s+cashback`)
)

// Keywords strips punctuation and stop words from a natural-language
// request, returning the space-joined product terms. Empty when nothing
// survives filtering.
func Keywords(text string) string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), "")
	var kept []string
	for _, w := range strings.Fields(cleaned) {
		if stopWords[w] || len(w) <= 1 || strings.HasPrefix(w, "$") {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// MaxPrice returns the price ceiling expressed as "under $X", "below $X",
// or "less than $X". The second return is false when no ceiling is stated.
func MaxPrice(text string) (float64, bool) {
	for _, p := range pricePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			v, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return float64(v), true
		}
	}
	return 0, false
}

// WantsCashback reports whether the request asks to optimize for cashback.
func WantsCashback(text string) bool {
	return cashbackPattern.MatchString(text)
}
