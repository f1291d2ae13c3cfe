package catalog

import (
	"sort"
	"strings"

	"github.com/fiberagent/gateway/internal/models"
)

// phraseScore is assigned when the whole query matches as a substring, so
// exact-phrase matches always outrank partial word hits.
const phraseScore = 100

// Score rates a product against a query. The haystack is title + brand +
// merchant name, lower-cased. Full-query substring match scores 100;
// otherwise the score is the number of query words present individually.
func Score(p models.Product, query string) int {
	hay := strings.ToLower(p.Title + " " + p.Brand + " " + p.Merchant.Name)
	q := strings.ToLower(query)
	if strings.Contains(hay, q) {
		return phraseScore
	}
	score := 0
	for _, w := range strings.Fields(q) {
		if strings.Contains(hay, w) {
			score++
		}
	}
	return score
}

// Rank scores products against the query, drops non-matches, stable-sorts
// by score descending (ties keep catalog order), and truncates to max.
func Rank(products []models.Product, query string, max int) []models.Product {
	type scored struct {
		p     models.Product
		score int
	}
	matched := make([]scored, 0, len(products))
	for _, p := range products {
		if s := Score(p, query); s > 0 {
			matched = append(matched, scored{p, s})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].score > matched[j].score
	})
	if max > 0 && len(matched) > max {
		matched = matched[:max]
	}
	out := make([]models.Product, len(matched))
	for i, m := range matched {
		out[i] = m.p
	}
	return out
}

// Dedupe removes repeated product ids, keeping the first occurrence.
// Guards against an upstream source returning the same product twice.
func Dedupe(products []models.Product) []models.Product {
	seen := make(map[string]bool, len(products))
	out := products[:0]
	for _, p := range products {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}
