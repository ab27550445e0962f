package ta

// SMA returns the mean of the last n closes, dividing by the nominal period
// even when fewer than n closes are available. Callers must supply enough
// history; a short slice under-estimates the average. Kept as a documented
// boundary behavior.
func SMA(closes []float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	start := len(closes) - n
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for _, c := range closes[start:] {
		sum += c
	}
	return sum / float64(n)
}

// EMA seeds with the SMA of the first n closes, then applies the exponential
// recurrence across the rest of the series in chronological order.
func EMA(closes []float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	k := 2.0 / float64(n+1)
	seed := closes
	if len(seed) > n {
		seed = closes[:n]
	}
	ema := SMA(seed, n)
	for i := n; i < len(closes); i++ {
		ema = closes[i]*k + ema*(1-k)
	}
	return ema
}

// RSI computes Wilder's smoothed RSI. The first n differences accumulate raw
// average gain/loss; later differences use the recursive smoothing. When the
// average loss is zero the RSI is clamped to 100.
func RSI(closes []float64, n int) float64 {
	if n <= 0 || len(closes) < n+1 {
		return 0
	}
	gains, losses := 0.0, 0.0
	for i := 1; i <= n; i++ {
		d := closes[i] - closes[i-1]
		if d >= 0 {
			gains += d
		} else {
			losses -= d
		}
	}

	avgGain := gains / float64(n)
	avgLoss := losses / float64(n)

	for i := n + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d >= 0 {
			avgGain = (avgGain*float64(n-1) + d) / float64(n)
			avgLoss = (avgLoss * float64(n-1)) / float64(n)
		} else {
			avgGain = (avgGain * float64(n-1)) / float64(n)
			avgLoss = (avgLoss*float64(n-1) - d) / float64(n)
		}
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
