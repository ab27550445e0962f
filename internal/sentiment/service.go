package sentiment

import (
	"context"
	"time"

	"quant-trader/internal/interfaces"
	"quant-trader/internal/logger"
	"quant-trader/internal/types"
)

// Service fetches recent news for tickers and scores each article with the
// lexicon analyzer.
type Service struct {
	md          interfaces.MarketData
	fetcher     *Fetcher
	analyzer    *Analyzer
	maxArticles int
}

// NewService creates a sentiment service.
func NewService(md interfaces.MarketData, fetchTimeout time.Duration, maxArticles int) *Service {
	return &Service{
		md:          md,
		fetcher:     NewFetcher(fetchTimeout),
		analyzer:    NewAnalyzer(),
		maxArticles: maxArticles,
	}
}

// ScoreTicker scores up to maxArticles recent articles for one ticker.
// Individual article failures are skipped; an error is returned only when
// the news search itself fails.
func (s *Service) ScoreTicker(ctx context.Context, ticker string) (types.TickerSentiment, error) {
	refs, err := s.md.SearchNews(ctx, ticker, s.maxArticles)
	if err != nil {
		return types.TickerSentiment{Ticker: ticker}, err
	}

	out := types.TickerSentiment{Ticker: ticker}
	for _, ref := range refs {
		body, err := s.fetcher.ArticleText(ctx, ref.Link)
		if err != nil {
			logger.Warn(ctx, "Skipping unreadable article", "ticker", ticker, "url", ref.Link, "error", err)
			continue
		}
		out.Articles = append(out.Articles, types.ArticleScore{
			Title: ref.Title,
			Score: s.analyzer.Score(body),
		})
	}

	logger.Info(ctx, "Scored news sentiment", "ticker", ticker, "articles", len(out.Articles))
	return out, nil
}

// ScoreTickers scores every ticker, isolating failures: a ticker whose news
// cannot be fetched simply has no articles, which the gate treats as a zero
// score.
func (s *Service) ScoreTickers(ctx context.Context, tickers []string) map[string][]types.ArticleScore {
	scores := make(map[string][]types.ArticleScore, len(tickers))
	for _, ticker := range tickers {
		ts, err := s.ScoreTicker(ctx, ticker)
		if err != nil {
			logger.Warn(ctx, "No sentiment for ticker", "ticker", ticker, "error", err)
			continue
		}
		scores[ticker] = ts.Articles
	}
	return scores
}
