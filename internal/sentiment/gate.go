package sentiment

import (
	"quant-trader/internal/types"
)

// Gate filters screened candidates by average article sentiment.
//
// The short threshold is an upper bound, not a mirrored negative of the
// long threshold: a short survives unless coverage is strongly positive.
// This asymmetry is deliberate and configurable.
type Gate struct {
	LongMin  float64 // long kept only if average score exceeds this
	ShortMax float64 // short kept only if average score is below this
}

// Apply attaches average sentiment to each candidate and drops those that
// fail their side's threshold. Candidates with no scored articles average
// to zero, which excludes longs and (under the defaults) retains shorts.
func (g Gate) Apply(long, short []types.Candidate, scores map[string][]types.ArticleScore) (gatedLong, gatedShort []types.Candidate) {
	for _, c := range long {
		avg := average(scores[c.Ticker])
		if avg > g.LongMin {
			c.Sentiment = avg
			gatedLong = append(gatedLong, c)
		}
	}
	for _, c := range short {
		avg := average(scores[c.Ticker])
		if avg < g.ShortMax {
			c.Sentiment = avg
			gatedShort = append(gatedShort, c)
		}
	}
	return gatedLong, gatedShort
}

func average(articles []types.ArticleScore) float64 {
	if len(articles) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range articles {
		sum += a.Score
	}
	return sum / float64(len(articles))
}
