package types

// Candle is one daily bar of a price series, ascending by Ts.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// TechnicalSnapshot holds the indicator set for one ticker, recomputed and
// upserted on every analysis cycle.
type TechnicalSnapshot struct {
	Ticker string  `json:"ticker"`
	SMA20  float64 `json:"sma20"`
	SMA50  float64 `json:"sma50"`
	EMA20  float64 `json:"ema20"`
	EMA50  float64 `json:"ema50"`
	RSI14  float64 `json:"rsi14"`
}

// FundamentalSnapshot holds the fundamental metrics for one ticker.
type FundamentalSnapshot struct {
	Ticker        string  `json:"ticker"`
	PERatio       float64 `json:"peRatio"`
	PEGRatio      float64 `json:"pegRatio"`
	DividendYield float64 `json:"dividendYield"`
	PayoutRatio   float64 `json:"payoutRatio"`
	Revenue       float64 `json:"revenue"`
	ProfitMargin  float64 `json:"profitMargin"`
	FreeCashFlow  float64 `json:"freeCashFlow"`
}

// Candidate is a ticker that passed technical + fundamental screening for a
// long or short position. Sentiment is attached by the gate; zero means no
// usable news was found.
type Candidate struct {
	Ticker        string  `json:"ticker"`
	SMA20         float64 `json:"sma20"`
	SMA50         float64 `json:"sma50"`
	EMA20         float64 `json:"ema20"`
	EMA50         float64 `json:"ema50"`
	RSI14         float64 `json:"rsi14"`
	PERatio       float64 `json:"peRatio"`
	PEGRatio      float64 `json:"pegRatio"`
	DividendYield float64 `json:"dividendYield"`
	PayoutRatio   float64 `json:"payoutRatio"`
	Revenue       float64 `json:"revenue"`
	ProfitMargin  float64 `json:"profitMargin"`
	FreeCashFlow  float64 `json:"freeCashFlow"`
	Sentiment     float64 `json:"sentiment"`
}

// Position mirrors the brokerage's open-position payload.
type Position struct {
	Symbol        string  `json:"symbol"`
	Qty           float64 `json:"qty,string"`
	AvgEntryPrice float64 `json:"avg_entry_price,string"`
	CurrentPrice  float64 `json:"current_price,string"`
	UnrealizedPL  float64 `json:"unrealized_pl,string"`
}

// OrderTicket is an ephemeral market-order intent. The brokerage is the
// system of record for order state.
type OrderTicket struct {
	Symbol string  `json:"symbol"`
	Qty    float64 `json:"qty"`
	Side   string  `json:"side"` // "buy" or "sell"
}

// OrderResult is the per-candidate outcome of a batch execution. A failed
// order never aborts the batch; callers inspect Err per entry.
type OrderResult struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Qty    float64 `json:"qty"`
	Price  float64 `json:"price,omitempty"`
	Err    error   `json:"-"`
	Reason string  `json:"reason,omitempty"`
}

// NewsRef is a headline + link returned by the quote provider's news search.
type NewsRef struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ArticleScore is the lexicon score of one fetched article.
type ArticleScore struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// TickerSentiment groups the scored articles for one ticker.
type TickerSentiment struct {
	Ticker   string         `json:"ticker"`
	Articles []ArticleScore `json:"articles"`
}
