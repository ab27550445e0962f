package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"quant-trader/internal/api"
	"quant-trader/internal/types"
)

const (
	chartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	quoteURL     = "https://query1.finance.yahoo.com/v7/finance/quote"
	summaryURL   = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"
	searchURL    = "https://query1.finance.yahoo.com/v1/finance/search"
)

// Client fetches candles, quotes, fundamentals and news references from the
// quote provider.
type Client struct {
	http *api.Client

	chartURL   string
	quoteURL   string
	summaryURL string
	searchURL  string
}

// NewClient creates a quote provider client with an explicit timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: api.NewClient(
			api.WithTimeout(timeout),
			api.WithLogging(true),
		),
		chartURL:   chartBaseURL,
		quoteURL:   quoteURL,
		summaryURL: summaryURL,
		searchURL:  searchURL,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// HistoricalDaily returns daily candles for [from, to], ascending by time.
func (c *Client) HistoricalDaily(ctx context.Context, ticker string, from, to time.Time) ([]types.Candle, error) {
	u := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d",
		c.chartURL, url.PathEscape(ticker), from.Unix(), to.Unix())

	resp, err := c.http.GET(ctx, u, api.YahooFinanceHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", ticker, err)
	}

	var parsed chartResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, fmt.Errorf("parse history for %s: %w", ticker, err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("history for %s: %s", ticker, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", ticker)
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]types.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		candles = append(candles, types.Candle{
			Ts:    ts,
			Open:  at(quote.Open, i),
			High:  at(quote.High, i),
			Low:   at(quote.Low, i),
			Close: at(quote.Close, i),
			Vol:   at(quote.Volume, i),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("empty history for %s", ticker)
	}
	return candles, nil
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			RegularMarketPrice float64 `json:"regularMarketPrice"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// LatestQuote returns the current market price for a ticker.
func (c *Client) LatestQuote(ctx context.Context, ticker string) (float64, error) {
	u := fmt.Sprintf("%s?symbols=%s", c.quoteURL, url.QueryEscape(ticker))

	resp, err := c.http.GET(ctx, u, api.YahooFinanceHeaders())
	if err != nil {
		return 0, fmt.Errorf("fetch quote for %s: %w", ticker, err)
	}

	var parsed quoteResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return 0, fmt.Errorf("parse quote for %s: %w", ticker, err)
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return 0, fmt.Errorf("no quote for %s", ticker)
	}
	return parsed.QuoteResponse.Result[0].RegularMarketPrice, nil
}

// rawValue is the provider's {raw, fmt} number wrapper.
type rawValue struct {
	Raw float64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData struct {
				CurrentPrice  rawValue `json:"currentPrice"`
				TotalRevenue  rawValue `json:"totalRevenue"`
				ProfitMargins rawValue `json:"profitMargins"`
				FreeCashflow  rawValue `json:"freeCashflow"`
			} `json:"financialData"`
			SummaryDetail struct {
				DividendYield rawValue `json:"dividendYield"`
				PayoutRatio   rawValue `json:"payoutRatio"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEps rawValue `json:"trailingEps"`
				PegRatio    rawValue `json:"pegRatio"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// Fundamentals fetches the fundamental snapshot for a ticker. The P/E ratio
// is derived from current price over trailing EPS.
func (c *Client) Fundamentals(ctx context.Context, ticker string) (types.FundamentalSnapshot, error) {
	u := fmt.Sprintf("%s/%s?modules=financialData,summaryDetail,defaultKeyStatistics",
		c.summaryURL, url.PathEscape(ticker))

	resp, err := c.http.GET(ctx, u, api.YahooFinanceHeaders())
	if err != nil {
		return types.FundamentalSnapshot{}, fmt.Errorf("fetch fundamentals for %s: %w", ticker, err)
	}

	var parsed summaryResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return types.FundamentalSnapshot{}, fmt.Errorf("parse fundamentals for %s: %w", ticker, err)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return types.FundamentalSnapshot{}, fmt.Errorf("no fundamentals for %s", ticker)
	}

	r := parsed.QuoteSummary.Result[0]
	if r.DefaultKeyStatistics.TrailingEps.Raw == 0 {
		return types.FundamentalSnapshot{}, fmt.Errorf("no trailing EPS for %s", ticker)
	}

	return types.FundamentalSnapshot{
		Ticker:        ticker,
		PERatio:       r.FinancialData.CurrentPrice.Raw / r.DefaultKeyStatistics.TrailingEps.Raw,
		PEGRatio:      r.DefaultKeyStatistics.PegRatio.Raw,
		DividendYield: r.SummaryDetail.DividendYield.Raw,
		PayoutRatio:   r.SummaryDetail.PayoutRatio.Raw,
		Revenue:       r.FinancialData.TotalRevenue.Raw,
		ProfitMargin:  r.FinancialData.ProfitMargins.Raw,
		FreeCashFlow:  r.FinancialData.FreeCashflow.Raw,
	}, nil
}

type searchResponse struct {
	News []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"news"`
}

// ErrNoNews is returned when the provider has no articles for a ticker.
var ErrNoNews = errors.New("no news articles found")

// SearchNews returns up to limit headline+link references for a ticker.
func (c *Client) SearchNews(ctx context.Context, ticker string, limit int) ([]types.NewsRef, error) {
	u := fmt.Sprintf("%s?q=%s&newsCount=%d", c.searchURL, url.QueryEscape(ticker), limit)

	resp, err := c.http.GET(ctx, u, api.YahooFinanceHeaders())
	if err != nil {
		return nil, fmt.Errorf("search news for %s: %w", ticker, err)
	}

	var parsed searchResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, fmt.Errorf("parse news for %s: %w", ticker, err)
	}
	if len(parsed.News) == 0 {
		return nil, ErrNoNews
	}

	refs := make([]types.NewsRef, 0, limit)
	for _, n := range parsed.News {
		if len(refs) == limit {
			break
		}
		refs = append(refs, types.NewsRef{Title: n.Title, Link: n.Link})
	}
	return refs, nil
}
