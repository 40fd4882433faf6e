package domain

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe selects how much price history a chart shows.
type Timeframe string

const (
	Timeframe7D  Timeframe = "7D"
	Timeframe1M  Timeframe = "1M"
	Timeframe3M  Timeframe = "3M"
	Timeframe6M  Timeframe = "6M"
	Timeframe1Y  Timeframe = "1Y"
	TimeframeAll Timeframe = "All"
)

// DefaultTimeframe is used when a request does not name one.
const DefaultTimeframe = TimeframeAll

var SupportedTimeframes = []Timeframe{
	Timeframe7D,
	Timeframe1M,
	Timeframe3M,
	Timeframe6M,
	Timeframe1Y,
	TimeframeAll,
}

// ParseTimeframe accepts any casing; an empty string selects DefaultTimeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTimeframe, nil
	}
	for _, tf := range SupportedTimeframes {
		if strings.EqualFold(s, string(tf)) {
			return tf, nil
		}
	}
	return "", fmt.Errorf("unsupported timeframe: %s", s)
}

// Start returns the earliest timestamp included relative to now. Months and
// years are calendar based. The bool is false for All.
func (tf Timeframe) Start(now time.Time) (time.Time, bool) {
	switch tf {
	case Timeframe7D:
		return now.AddDate(0, 0, -7), true
	case Timeframe1M:
		return now.AddDate(0, -1, 0), true
	case Timeframe3M:
		return now.AddDate(0, -3, 0), true
	case Timeframe6M:
		return now.AddDate(0, -6, 0), true
	case Timeframe1Y:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// Filter keeps entries recorded at or after the timeframe start, preserving order.
func (tf Timeframe) Filter(history []PriceHistoryEntry, now time.Time) []PriceHistoryEntry {
	start, bounded := tf.Start(now)
	if !bounded {
		return append([]PriceHistoryEntry(nil), history...)
	}
	out := make([]PriceHistoryEntry, 0, len(history))
	for _, e := range history {
		if !e.RecordedAt.Before(start) {
			out = append(out, e)
		}
	}
	return out
}

// Next cycles through SupportedTimeframes.
func (tf Timeframe) Next() Timeframe {
	for i, candidate := range SupportedTimeframes {
		if candidate == tf {
			return SupportedTimeframes[(i+1)%len(SupportedTimeframes)]
		}
	}
	return DefaultTimeframe
}
