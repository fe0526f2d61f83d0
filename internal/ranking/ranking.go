// Package ranking holds the pure scoring functions used to order posts and
// comments. Nothing here touches storage or the clock; callers pass ages in.
package ranking

import (
	"math"
	"time"
)

const (
	// hotDivisor converts seconds into the hot time term.
	hotDivisor = 45000.0

	// RisingWindow is the maximum age an item may have to appear in a
	// rising feed, whatever time frame the caller asked for.
	RisingWindow = 6 * time.Hour
)

// HotScore is the Reddit-style hot value: log10 dampened net score plus a
// linear time term, rounded to six decimals.
func HotScore(upvotes, downvotes int, ageHours float64) float64 {
	score := upvotes - downvotes
	order := math.Log10(math.Max(math.Abs(float64(score)), 1))
	seconds := ageHours * 3600
	return Round(float64(sign(score))*order+seconds/hotDivisor, 6)
}

// HotRank is the hot ordering key. The time term is anchored to the Unix
// epoch rather than the item age so that, for a fixed net score, newer items
// rank higher. Feed ordering uses this; the SQL expression in package feed
// mirrors it exactly.
func HotRank(upvotes, downvotes int, createdAt time.Time) float64 {
	score := upvotes - downvotes
	order := math.Log10(math.Max(math.Abs(float64(score)), 1))
	return float64(sign(score))*order + float64(createdAt.Unix())/hotDivisor
}

// ControversyScore is highest when there are many votes split evenly.
func ControversyScore(upvotes, downvotes int) float64 {
	total := upvotes + downvotes
	if total == 0 {
		return 0
	}
	lo, hi := upvotes, downvotes
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Sqrt(float64(total)) * float64(lo) / float64(hi)
}

// TrendingScore rewards net score and comment activity and decays with age.
func TrendingScore(score int, ageHours float64, commentCount int) float64 {
	base := math.Max(float64(score), 0)
	commentBoost := math.Log10(float64(commentCount)+1) * 2
	decay := math.Pow(ageHours+2, -1.5)
	return (base + commentBoost) * decay
}

// RisingScore favours young items gaining score and comments quickly.
func RisingScore(score int, ageHours float64, commentCount int) float64 {
	return (float64(score) + float64(commentCount)*0.5) / math.Pow(ageHours+1, 0.8)
}

// VoteRatio is the share of upvotes, 0.5 when nobody has voted.
func VoteRatio(upvotes, downvotes int) float64 {
	total := upvotes + downvotes
	if total == 0 {
		return 0.5
	}
	return float64(upvotes) / float64(total)
}

// AgeHours returns the age of createdAt at now in fractional hours.
// Items from the future are treated as brand new.
func AgeHours(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt).Hours()
	if age < 0 {
		return 0
	}
	return age
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
