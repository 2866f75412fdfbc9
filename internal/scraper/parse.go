package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/itskundan-01/Finance-News-API/internal/types"
)

const minTitleLength = 10

var (
	absoluteTimeRe = regexp.MustCompile(`\d{1,2}:\d{2}\s*[AP]M,? \d{1,2} [A-Za-z]{3} \d{4}`)
	relativeTimeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+(hours?|minutes?|days?)\s+ago`)
)

func (s *Service) parseArticles(doc *goquery.Document) []types.Article {
	now := time.Now()
	seen := make(map[string]bool)
	var articles []types.Article

	doc.Find("h1, h2, h3").Each(func(i int, heading *goquery.Selection) {
		title := strings.TrimSpace(heading.Text())
		if len(title) < minTitleLength || seen[title] {
			return
		}
		seen[title] = true

		// Walk up a few levels to find the card wrapping this headline.
		card := heading
		for depth := 0; depth < 5; depth++ {
			parent := card.Parent()
			if parent.Length() == 0 || goquery.NodeName(parent) == "body" {
				break
			}
			card = parent
			if card.Find("p, a, span, div").Length() > 3 {
				break
			}
		}

		content := extractContent(heading, card, title)
		url := extractURL(card)
		source := extractSource(card, url)
		tsText, tsISO := extractTimestamp(card, i, now)

		articles = append(articles, types.Article{
			Title:        title,
			Content:      content,
			URL:          url,
			Source:       source,
			Categories:   Categorize(title + " " + content),
			Timestamp:    tsText,
			TimestampISO: tsISO,
			ScrapedAt:    now,
		})
	})

	return articles
}

func extractContent(heading, card *goquery.Selection, title string) string {
	next := heading.NextAllFiltered("p").First()
	if next.Length() == 0 {
		next = card.Find("p").First()
	}
	if text := strings.TrimSpace(next.Text()); len(text) > 15 {
		return text
	}

	content := ""
	card.Find("div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 20 && text != title && !strings.Contains(strings.ToLower(text), "trending") {
			content = text
			return false
		}
		return true
	})
	if len(content) >= 20 {
		return content
	}
	return "Latest financial news update related to " + title
}

func extractURL(card *goquery.Selection) string {
	url := ""
	card.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if strings.HasPrefix(href, "http") && !strings.HasPrefix(href, "#") && !strings.HasPrefix(href, "/") {
			url = href
			return false
		}
		return true
	})
	return url
}

var sourcesByDomain = map[string]string{
	"economictimes":        "Economic Times",
	"moneycontrol":         "Moneycontrol",
	"livemint":             "LiveMint",
	"bloomberg":            "Bloomberg Quint",
	"ndtv":                 "NDTV",
	"thehindubusinessline": "Hindu Business",
	"business-standard":    "Business Standard",
	"financialexpress":     "Financial Express",
	"cnbctv18":             "CNBC-TV18",
	"finshots":             "Finshots",
}

func extractSource(card *goquery.Selection, url string) string {
	// Feed cards render "<timestamp> — <source>"; scan text lines for the
	// dash-separated attribution.
	source := ""
	for _, text := range strings.Split(card.Text(), "\n") {
		if strings.Contains(text, "—") {
			parts := strings.Split(text, "—")
			if candidate := strings.TrimSpace(parts[len(parts)-1]); candidate != "" {
				source = candidate
				break
			}
		}
	}
	if source != "" {
		return source
	}
	return detectSourceFromURL(url)
}

func detectSourceFromURL(url string) string {
	if url == "" {
		return "Unknown"
	}
	for domain, source := range sourcesByDomain {
		if strings.Contains(url, domain) {
			return source
		}
	}
	return "Financial News"
}

// extractTimestamp pulls a publication time out of the card's text. Cards
// without a recognizable timestamp get a synthetic relative one staggered
// by position, matching the feed's newest-first ordering.
func extractTimestamp(card *goquery.Selection, position int, now time.Time) (string, time.Time) {
	text := card.Text()

	if match := absoluteTimeRe.FindString(text); match != "" {
		return match, parseTimestampText(match, now)
	}
	if match := relativeTimeRe.FindString(text); match != "" {
		return match, parseTimestampText(match, now)
	}

	minutesAgo := 5 + position*3
	var label string
	if minutesAgo > 59 {
		hours := minutesAgo / 60
		label = fmt.Sprintf("%d hour ago", hours)
		if hours > 1 {
			label = fmt.Sprintf("%d hours ago", hours)
		}
	} else {
		label = fmt.Sprintf("%d minutes ago", minutesAgo)
	}
	return label, parseTimestampText(label, now)
}

var absoluteFormats = []string{
	"3:04 PM, 2 Jan 2006",
	"3:04 PM 2 Jan 2006",
	"15:04, 2 Jan 2006",
}

func parseTimestampText(text string, now time.Time) time.Time {
	if m := relativeTimeRe.FindStringSubmatch(text); m != nil {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return now
		}
		var delta time.Duration
		switch {
		case strings.HasPrefix(m[2], "hour"):
			delta = time.Duration(amount * float64(time.Hour))
		case strings.HasPrefix(m[2], "minute"):
			delta = time.Duration(amount * float64(time.Minute))
		case strings.HasPrefix(m[2], "day"):
			delta = time.Duration(amount * 24 * float64(time.Hour))
		}
		return now.Add(-delta)
	}

	for _, format := range absoluteFormats {
		if ts, err := time.ParseInLocation(format, text, now.Location()); err == nil {
			return ts
		}
	}
	return now
}
