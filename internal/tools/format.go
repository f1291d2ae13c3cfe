package tools

import (
	"fmt"
	"strings"

	"github.com/fiberagent/gateway/internal/models"
)

// formatResults renders a ranked product list as markdown.
func formatResults(products []models.Product) string {
	if len(products) == 0 {
		return "No products found."
	}
	lines := make([]string, 0, len(products))
	for i, p := range products {
		line := fmt.Sprintf("%d. **%s**\n   $%.2f at %s | %.2f%% cashback → $%.2f back",
			i+1, p.Title, p.Price, p.Merchant.Name, p.Cashback.RatePercent, p.Cashback.Amount)
		if p.AffiliateURL != "" {
			line += "\n   " + p.AffiliateURL
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n\n")
}

// formatComparison renders a per-merchant cashback table, best rate first.
func formatComparison(products []models.Product) string {
	lines := make([]string, 0, len(products))
	for i, p := range products {
		lines = append(lines, fmt.Sprintf("%d. **%s** — %.2f%% → $%.2f | %s $%.2f",
			i+1, p.Merchant.Name, p.Cashback.RatePercent, p.Cashback.Amount, p.Title, p.Price))
	}
	return strings.Join(lines, "\n")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
