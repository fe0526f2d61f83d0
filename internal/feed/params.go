package feed

import (
	"strconv"
	"strings"
	"time"
)

// Strategy is a named ranking algorithm.
type Strategy string

const (
	StrategyHot           Strategy = "hot"
	StrategyNew           Strategy = "new"
	StrategyTop           Strategy = "top"
	StrategyTrending      Strategy = "trending"
	StrategyControversial Strategy = "controversial"
	StrategyRising        Strategy = "rising"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{
	StrategyHot,
	StrategyNew,
	StrategyTop,
	StrategyTrending,
	StrategyControversial,
	StrategyRising,
}

// ParseStrategy never fails: anything unrecognised is hot.
func ParseStrategy(s string) Strategy {
	for _, st := range Strategies {
		if string(st) == s {
			return st
		}
	}
	return StrategyHot
}

// TimeFrame is a lookback window applied to created_at.
type TimeFrame string

const (
	TimeFrameHour     TimeFrame = "1h"
	TimeFrameSixHours TimeFrame = "6h"
	TimeFrameDay      TimeFrame = "24h"
	TimeFrameWeek     TimeFrame = "7d"
	TimeFrameMonth    TimeFrame = "30d"
	TimeFrameAll      TimeFrame = "all"
)

var windows = map[TimeFrame]time.Duration{
	TimeFrameHour:     time.Hour,
	TimeFrameSixHours: 6 * time.Hour,
	TimeFrameDay:      24 * time.Hour,
	TimeFrameWeek:     7 * 24 * time.Hour,
	TimeFrameMonth:    30 * 24 * time.Hour,
}

// ParseTimeFrame never fails: anything unrecognised is 24h.
func ParseTimeFrame(s string) TimeFrame {
	tf := TimeFrame(s)
	if _, ok := windows[tf]; ok || tf == TimeFrameAll {
		return tf
	}
	return TimeFrameDay
}

// Cutoff returns now minus the window. ok is false for all.
func (tf TimeFrame) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	w, ok := windows[tf]
	if !ok {
		return time.Time{}, false
	}
	return now.Add(-w), true
}

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// RawParams are the feed query parameters exactly as received.
type RawParams struct {
	Strategy  string
	TimeFrame string
	Community string
	Limit     string
	Offset    string
}

type Params struct {
	Strategy  Strategy
	TimeFrame TimeFrame
	Community string
	Limit     int
	Offset    int
}

// NormalizeCommunity puts a community name in its stored, lowercase form.
func NormalizeCommunity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeParams substitutes defaults for anything unrecognised and clamps
// pagination. It cannot fail.
func NormalizeParams(raw RawParams) Params {
	limit, err := strconv.Atoi(raw.Limit)
	if err != nil {
		limit = DefaultLimit
	}
	limit = min(max(limit, 1), MaxLimit)

	offset, err := strconv.Atoi(raw.Offset)
	if err != nil || offset < 0 {
		offset = 0
	}

	return Params{
		Strategy:  ParseStrategy(raw.Strategy),
		TimeFrame: ParseTimeFrame(raw.TimeFrame),
		Community: NormalizeCommunity(raw.Community),
		Limit:     limit,
		Offset:    offset,
	}
}
