package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"quant-trader/internal/logger"
)

// Fetcher retrieves article body text for a news link.
type Fetcher struct {
	timeout time.Duration
}

// NewFetcher creates a fetcher with an explicit per-article timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{timeout: timeout}
}

// bodySelectors covers the quote provider's article layout plus the common
// fallbacks for syndicated pages.
const bodySelectors = "div.caas-body, article, div.article-body, div.content-body"

// ArticleText fetches a news page and extracts its paragraph text.
func (f *Fetcher) ArticleText(ctx context.Context, articleURL string) (string, error) {
	c := colly.NewCollector(colly.MaxDepth(1))
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		r.Headers.Set("Accept", "text/html")
	})

	var body string
	c.OnHTML(bodySelectors, func(e *colly.HTMLElement) {
		if body != "" {
			return
		}
		body = extractParagraphs(e.DOM)
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(articleURL); err != nil {
		return "", fmt.Errorf("fetch article %s: %w", articleURL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fmt.Errorf("fetch article %s: %w", articleURL, fetchErr)
	}
	if body == "" {
		logger.Debug(ctx, "No article body extracted", "url", articleURL)
	}
	return body, nil
}

func extractParagraphs(sel *goquery.Selection) string {
	var paragraphs []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, " ")
}
