// Package feed plans and runs ranked post feeds.
//
// A Plan is built once per request from normalised Params. Every filter and
// the ordering key exist twice, as SQL pushed down to Postgres and as a Go
// function over Snapshot, so the same plan can be evaluated in either place.
package feed

import (
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/forum/backend/internal/ranking"
)

// Snapshot is the subset of a post the planner reads.
type Snapshot struct {
	ID           string
	Community    string
	Upvotes      int
	Downvotes    int
	Score        int
	CommentCount int
	CreatedAt    time.Time
	IsDeleted    bool
}

// Predicate is one feed filter.
type Predicate struct {
	Name  string
	SQL   string
	Args  []interface{}
	Match func(Snapshot) bool
}

// Ordering is a descending sort key. A nil Key orders by created_at only.
type Ordering struct {
	SQL  string
	Args []interface{}
	Key  func(Snapshot) float64
}

type Plan struct {
	Params     Params
	Now        time.Time
	Predicates []Predicate
	Ordering   Ordering
}

// ageSQL is the post age in hours at the bound timestamp, floored at zero.
const ageSQL = "GREATEST(CAST(EXTRACT(EPOCH FROM (CAST(? AS timestamptz) - posts.created_at)) AS double precision) / 3600.0, 0)"

type strategyDef struct {
	// usesTimeFrame reports whether the requested time frame filters results.
	usesTimeFrame bool
	filters       func(now time.Time) []Predicate
	ordering      func(now time.Time) Ordering
}

var strategyTable = map[Strategy]strategyDef{
	StrategyHot: {
		filters: func(time.Time) []Predicate {
			return []Predicate{{
				Name:  "has_votes",
				SQL:   "posts.upvotes + posts.downvotes >= 1",
				Match: func(s Snapshot) bool { return s.Upvotes+s.Downvotes >= 1 },
			}}
		},
		ordering: func(time.Time) Ordering {
			return Ordering{
				SQL: "SIGN(posts.score) * LOG(GREATEST(ABS(posts.score), 1)) + CAST(EXTRACT(EPOCH FROM posts.created_at) AS double precision) / 45000.0",
				Key: func(s Snapshot) float64 { return ranking.HotRank(s.Upvotes, s.Downvotes, s.CreatedAt) },
			}
		},
	},
	StrategyNew: {
		ordering: func(time.Time) Ordering { return Ordering{} },
	},
	StrategyTop: {
		usesTimeFrame: true,
		ordering: func(time.Time) Ordering {
			return Ordering{
				SQL: "posts.score",
				Key: func(s Snapshot) float64 { return float64(s.Score) },
			}
		},
	},
	StrategyTrending: {
		usesTimeFrame: true,
		ordering: func(now time.Time) Ordering {
			return Ordering{
				SQL:  "(GREATEST(posts.score, 0) + LOG(posts.comment_count + 1) * 2) * POWER(" + ageSQL + " + 2, -1.5)",
				Args: []interface{}{now},
				Key: func(s Snapshot) float64 {
					return ranking.TrendingScore(s.Score, ranking.AgeHours(s.CreatedAt, now), s.CommentCount)
				},
			}
		},
	},
	StrategyControversial: {
		filters: func(time.Time) []Predicate {
			return []Predicate{{
				Name:  "min_sample",
				SQL:   "posts.upvotes > 5 AND posts.downvotes > 5",
				Match: func(s Snapshot) bool { return s.Upvotes > 5 && s.Downvotes > 5 },
			}}
		},
		ordering: func(time.Time) Ordering {
			return Ordering{
				SQL: "COALESCE(SQRT(posts.upvotes + posts.downvotes) * CAST(LEAST(posts.upvotes, posts.downvotes) AS double precision) / NULLIF(GREATEST(posts.upvotes, posts.downvotes), 0), 0)",
				Key: func(s Snapshot) float64 { return ranking.ControversyScore(s.Upvotes, s.Downvotes) },
			}
		},
	},
	StrategyRising: {
		filters: func(now time.Time) []Predicate {
			since := now.Add(-ranking.RisingWindow)
			return []Predicate{createdSince("rising_window", since)}
		},
		ordering: func(now time.Time) Ordering {
			return Ordering{
				SQL:  "(posts.score + posts.comment_count * 0.5) / POWER(" + ageSQL + " + 1, 0.8)",
				Args: []interface{}{now},
				Key: func(s Snapshot) float64 {
					return ranking.RisingScore(s.Score, ranking.AgeHours(s.CreatedAt, now), s.CommentCount)
				},
			}
		},
	},
}

func createdSince(name string, since time.Time) Predicate {
	return Predicate{
		Name:  name,
		SQL:   "posts.created_at >= ?",
		Args:  []interface{}{since},
		Match: func(s Snapshot) bool { return !s.CreatedAt.Before(since) },
	}
}

// NewPlan builds the plan for p at now. p is expected to be normalised.
func NewPlan(p Params, now time.Time) Plan {
	def, ok := strategyTable[p.Strategy]
	if !ok {
		p.Strategy = StrategyHot
		def = strategyTable[StrategyHot]
	}

	preds := []Predicate{{
		Name:  "not_deleted",
		SQL:   "posts.is_deleted = ?",
		Args:  []interface{}{false},
		Match: func(s Snapshot) bool { return !s.IsDeleted },
	}}
	if p.Community != "" {
		community := p.Community
		preds = append(preds, Predicate{
			Name:  "community",
			SQL:   "communities.name = ?",
			Args:  []interface{}{community},
			Match: func(s Snapshot) bool { return s.Community == community },
		})
	}
	if def.usesTimeFrame {
		if cutoff, ok := p.TimeFrame.Cutoff(now); ok {
			preds = append(preds, createdSince("time_frame", cutoff))
		}
	}
	if def.filters != nil {
		preds = append(preds, def.filters(now)...)
	}

	return Plan{
		Params:     p,
		Now:        now,
		Predicates: preds,
		Ordering:   def.ordering(now),
	}
}

// Apply adds the plan's filters, ordering and pagination to q. q must
// select from posts joined to communities.
func (pl Plan) Apply(q *gorm.DB) *gorm.DB {
	for _, pred := range pl.Predicates {
		q = q.Where(pred.SQL, pred.Args...)
	}

	orderSQL := "posts.created_at DESC"
	if pl.Ordering.SQL != "" {
		orderSQL = pl.Ordering.SQL + " DESC, " + orderSQL
	}
	q = q.Order(clause.OrderBy{Expression: clause.Expr{
		SQL:                orderSQL,
		Vars:               pl.Ordering.Args,
		WithoutParentheses: true,
	}})

	return q.Limit(pl.Params.Limit).Offset(pl.Params.Offset)
}

// ApplyInMemory evaluates the plan over items. The input is not modified.
func (pl Plan) ApplyInMemory(items []Snapshot) []Snapshot {
	out := make([]Snapshot, 0, len(items))
	for _, it := range items {
		if pl.matches(it) {
			out = append(out, it)
		}
	}

	key := pl.Ordering.Key
	sort.SliceStable(out, func(i, j int) bool {
		if key != nil {
			ki, kj := key(out[i]), key(out[j])
			if ki != kj {
				return ki > kj
			}
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if pl.Params.Offset >= len(out) {
		return []Snapshot{}
	}
	out = out[pl.Params.Offset:]
	if len(out) > pl.Params.Limit {
		out = out[:pl.Params.Limit]
	}
	return out
}

func (pl Plan) matches(s Snapshot) bool {
	for _, pred := range pl.Predicates {
		if !pred.Match(s) {
			return false
		}
	}
	return true
}

// TimeFiltered reports whether a time frame predicate is in effect.
func (pl Plan) TimeFiltered() bool {
	for _, pred := range pl.Predicates {
		if pred.Name == "time_frame" || pred.Name == "rising_window" {
			return true
		}
	}
	return false
}
