package scraper

import "strings"

var categoryKeywords = map[string][]string{
	"stocks":    {"stocks", "share", "equity", "nifty", "sensex", "bse", "nse", "shareholder", "price"},
	"market":    {"market", "trading", "rally", "bearish", "bullish", "index", "indices", "trade", "rupee", "dollar", "currency", "forex", "exchange rate"},
	"economy":   {"economy", "gdp", "inflation", "growth", "fiscal", "economic", "rupee", "dollar", "currency"},
	"banking":   {"bank", "loan", "credit", "deposit", "fintech", "pnb", "sbi", "rbl"},
	"tech":      {"tech", "technology", "it", "software", "digital", "ai"},
	"policy":    {"policy", "rbi", "sebi", "regulation", "government", "ministry"},
	"corporate": {"results", "earnings", "revenue", "profit", "loss", "dividend", "quarterly", "q4"},
}

var categoryOrder = []string{"stocks", "market", "economy", "banking", "tech", "policy", "corporate"}

// Categorize tags an article by keyword matching against its title and
// content. Articles matching nothing fall into the catch-all "finance".
func Categorize(text string) []string {
	text = strings.ToLower(text)

	var categories []string
	for _, category := range categoryOrder {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(text, keyword) {
				categories = append(categories, category)
				break
			}
		}
	}

	if len(categories) == 0 {
		return []string{"finance"}
	}
	return categories
}
