package chart

import (
	"sort"
	"time"
)

// MinSamples is the smallest batch that produces a drawable chart.
const MinSamples = 2

const (
	lowerPadding = 0.95
	upperPadding = 1.05
)

// Sample is one historical price observation.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Domain bounds the plotted samples. Values are padded 5% outward, times are not.
type Domain struct {
	TimeMin  time.Time `json:"time_min"`
	TimeMax  time.Time `json:"time_max"`
	ValueMin float64   `json:"value_min"`
	ValueMax float64   `json:"value_max"`
}

// TimeSpanZero reports whether every sample shares one timestamp.
func (d Domain) TimeSpanZero() bool {
	return d.TimeMax.UnixMilli() == d.TimeMin.UnixMilli()
}

// ValueSpanZero reports whether the padded value range is empty.
func (d Domain) ValueSpanZero() bool {
	return d.ValueMax == d.ValueMin
}

// Series is a sample batch sorted ascending by timestamp together with its domain.
type Series struct {
	Samples []Sample `json:"samples"`
	Domain  Domain   `json:"domain"`
}

// Normalize sorts a copy of samples by timestamp and derives the domain.
// Batches smaller than MinSamples keep a zero Domain; callers check Insufficient.
func Normalize(samples []Sample) Series {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	series := Series{Samples: sorted}
	if len(sorted) < MinSamples {
		return series
	}

	lo, hi := series.Range()
	series.Domain = Domain{
		TimeMin:  sorted[0].Timestamp,
		TimeMax:  sorted[len(sorted)-1].Timestamp,
		ValueMin: padLow(lo),
		ValueMax: padHigh(hi),
	}
	return series
}

// Insufficient reports whether the series has too few samples to plot.
func (s Series) Insufficient() bool {
	return len(s.Samples) < MinSamples
}

// Range returns the observed minimum and maximum values before padding.
func (s Series) Range() (float64, float64) {
	if len(s.Samples) == 0 {
		return 0, 0
	}
	lo, hi := s.Samples[0].Value, s.Samples[0].Value
	for _, sample := range s.Samples[1:] {
		if sample.Value < lo {
			lo = sample.Value
		}
		if sample.Value > hi {
			hi = sample.Value
		}
	}
	return lo, hi
}

// padLow and padHigh widen the range away from the data; for negative
// extremes the factors swap so the bounds still enclose every sample.
func padLow(v float64) float64 {
	if v < 0 {
		return v * upperPadding
	}
	return v * lowerPadding
}

func padHigh(v float64) float64 {
	if v < 0 {
		return v * lowerPadding
	}
	return v * upperPadding
}
