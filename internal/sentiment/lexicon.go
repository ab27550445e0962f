package sentiment

import (
	"strings"
	"unicode"
)

// Analyzer scores text by summing the polarity weights of matched lexicon
// words. No ML: the score is a plain word-level sum, so longer articles with
// consistently positive language score higher.
type Analyzer struct {
	lexicon map[string]float64
}

// NewAnalyzer creates an analyzer with the built-in financial-news lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{lexicon: defaultLexicon}
}

// Score sums the polarity weights of every lexicon word in text.
func (a *Analyzer) Score(text string) float64 {
	score := 0.0
	for _, word := range tokenize(text) {
		if w, ok := a.lexicon[word]; ok {
			score += w
		}
	}
	return score
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// defaultLexicon is an AFINN-style word list weighted -5..+5, trimmed to
// vocabulary common in financial coverage.
var defaultLexicon = map[string]float64{
	// positive
	"gain": 2, "gains": 2, "gained": 2, "rally": 3, "rallies": 3,
	"surge": 3, "surges": 3, "surged": 3, "soar": 3, "soars": 3, "soared": 3,
	"jump": 2, "jumps": 2, "jumped": 2, "climb": 2, "climbs": 2, "climbed": 2,
	"rise": 2, "rises": 2, "rose": 2, "rising": 2,
	"beat": 3, "beats": 3, "outperform": 3, "outperforms": 3, "outperformed": 3,
	"upgrade": 3, "upgraded": 3, "upgrades": 3,
	"strong": 2, "stronger": 2, "strongest": 3, "strength": 2,
	"growth": 2, "growing": 2, "grow": 2, "grew": 2,
	"profit": 2, "profits": 2, "profitable": 3, "profitability": 2,
	"record": 2, "robust": 2, "solid": 2, "healthy": 2,
	"bullish": 3, "optimism": 2, "optimistic": 2, "confidence": 2, "confident": 2,
	"success": 2, "successful": 3, "win": 2, "wins": 2, "winner": 2, "winning": 2,
	"boost": 2, "boosts": 2, "boosted": 2, "momentum": 1,
	"exceed": 3, "exceeds": 3, "exceeded": 3, "expand": 1, "expands": 1, "expansion": 1,
	"innovative": 2, "innovation": 2, "breakthrough": 3, "opportunity": 2, "opportunities": 2,
	"dividend": 1, "buyback": 2, "improve": 2, "improved": 2, "improving": 2, "improvement": 2,
	"positive": 2, "best": 3, "top": 2, "leader": 2, "leading": 2,
	"recovery": 2, "recover": 2, "recovered": 2, "rebound": 2, "rebounds": 2, "rebounded": 2,
	"upside": 2, "attractive": 2, "resilient": 2, "accelerate": 2, "accelerating": 2,

	// negative
	"loss": -2, "losses": -2, "lose": -2, "loses": -2, "lost": -2, "losing": -2,
	"fall": -2, "falls": -2, "fell": -2, "falling": -2,
	"drop": -2, "drops": -2, "dropped": -2, "decline": -2, "declines": -2, "declined": -2,
	"plunge": -3, "plunges": -3, "plunged": -3, "crash": -4, "crashes": -4, "crashed": -4,
	"tumble": -3, "tumbles": -3, "tumbled": -3, "slump": -3, "slumps": -3, "slumped": -3,
	"miss": -3, "misses": -3, "missed": -3, "underperform": -3, "underperforms": -3,
	"downgrade": -3, "downgraded": -3, "downgrades": -3,
	"weak": -2, "weaker": -2, "weakest": -3, "weakness": -2,
	"bearish": -3, "pessimism": -2, "pessimistic": -2,
	"risk": -1, "risks": -1, "risky": -2, "warning": -2, "warn": -2, "warns": -2, "warned": -2,
	"fear": -2, "fears": -2, "concern": -2, "concerns": -2, "concerned": -2, "worry": -2, "worries": -2,
	"debt": -1, "default": -3, "bankruptcy": -4, "bankrupt": -4, "insolvent": -4,
	"lawsuit": -3, "sued": -3, "fraud": -4, "scandal": -3, "investigation": -2, "probe": -2,
	"layoff": -2, "layoffs": -2, "cuts": -1, "cut": -1, "restructuring": -1,
	"recession": -3, "downturn": -2, "crisis": -3, "collapse": -4, "collapsed": -4,
	"negative": -2, "worst": -3, "bad": -3, "poor": -2, "trouble": -2, "troubled": -2,
	"volatile": -1, "volatility": -1, "uncertainty": -2, "uncertain": -2,
	"disappointing": -2, "disappointed": -2, "disappoint": -2, "disappoints": -2,
	"struggle": -2, "struggles": -2, "struggling": -2, "slowdown": -2, "slowing": -1,
	"overvalued": -2, "selloff": -3, "downside": -2, "halt": -2, "halted": -2,
}
