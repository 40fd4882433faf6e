package ta

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MinVolatilitySamples is the fewest prices that give two returns.
const MinVolatilitySamples = 3

// MeanStd returns the population mean and standard deviation.
func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// Returns computes simple period-over-period returns. Pairs starting at a
// zero price are skipped.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			continue
		}
		out = append(out, (prices[i]-prev)/prev)
	}
	return out
}

// Volatility is the standard deviation of simple returns, in percent.
func Volatility(prices []float64) (float64, bool) {
	if len(prices) < MinVolatilitySamples {
		return 0, false
	}
	returns := Returns(prices)
	if len(returns) < 2 {
		return 0, false
	}
	_, std := MeanStd(returns)
	if math.IsNaN(std) || math.IsInf(std, 0) {
		return 0, false
	}
	return std * 100, true
}

// PercentChange is the change from first to last, in percent.
func PercentChange(first, last float64) (float64, bool) {
	if first == 0 {
		return 0, false
	}
	return (last - first) / first * 100, true
}
