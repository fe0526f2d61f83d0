package feed

import (
	"math"
	"time"

	"github.com/emilythestrangee/forum/backend/internal/ranking"
)

// Row is one post as selected for a feed.
type Row struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Body                 *string    `json:"body"`
	Type                 string     `json:"type"`
	URL                  *string    `json:"url"`
	Score                int        `json:"score"`
	Upvotes              int        `json:"upvotes"`
	Downvotes            int        `json:"downvotes"`
	CommentCount         int        `json:"comment_count"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at"`
	AuthorID             string     `json:"author_id"`
	CommunityName        string     `json:"community_name"`
	CommunityDisplayName string     `json:"community_display_name"`
}

func (r Row) Snapshot() Snapshot {
	return Snapshot{
		ID:           r.ID,
		Community:    r.CommunityName,
		Upvotes:      r.Upvotes,
		Downvotes:    r.Downvotes,
		Score:        r.Score,
		CommentCount: r.CommentCount,
		CreatedAt:    r.CreatedAt,
	}
}

type AgeInfo struct {
	Hours    float64 `json:"hours"`
	Days     float64 `json:"days"`
	IsFresh  bool    `json:"is_fresh"`
	IsRecent bool    `json:"is_recent"`
}

type ComputedScores struct {
	Hot         float64 `json:"hot"`
	Controversy float64 `json:"controversy"`
	Trending    float64 `json:"trending"`
}

type EngagementMetrics struct {
	VoteRatio       float64 `json:"vote_ratio"`
	TotalVotes      int     `json:"total_votes"`
	CommentsPerHour float64 `json:"comments_per_hour"`
	EngagementRate  float64 `json:"engagement_rate"`
}

// Item is a Row enriched with derived, client-facing values.
type Item struct {
	Row
	AgeHours          float64           `json:"age_hours"`
	AgeInfo           AgeInfo           `json:"age_info"`
	ComputedScores    ComputedScores    `json:"computed_scores"`
	EngagementMetrics EngagementMetrics `json:"engagement_metrics"`
}

// Enrich recomputes every scalar from the row counters at now. It never
// reads back values produced by the SQL ordering.
func Enrich(rows []Row, now time.Time) []Item {
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		age := ranking.AgeHours(r.CreatedAt, now)
		items = append(items, Item{
			Row:      r,
			AgeHours: age,
			AgeInfo: AgeInfo{
				Hours:    ranking.Round(age, 1),
				Days:     ranking.Round(age/24, 1),
				IsFresh:  age < 2,
				IsRecent: age < 24,
			},
			ComputedScores: ComputedScores{
				Hot:         ranking.HotScore(r.Upvotes, r.Downvotes, age),
				Controversy: ranking.ControversyScore(r.Upvotes, r.Downvotes),
				Trending:    ranking.TrendingScore(r.Score, age, r.CommentCount),
			},
			EngagementMetrics: EngagementMetrics{
				VoteRatio:       ranking.VoteRatio(r.Upvotes, r.Downvotes),
				TotalVotes:      r.Upvotes + r.Downvotes,
				CommentsPerHour: float64(r.CommentCount) / math.Max(age, 1),
				EngagementRate:  float64(r.CommentCount) / (age/24 + 1),
			},
		})
	}
	return items
}

type FiltersApplied struct {
	CommunityFilter bool `json:"community_filter"`
	TimeFilter      bool `json:"time_filter"`
}

type Metadata struct {
	SortType       Strategy       `json:"sort_type"`
	TimeFrame      TimeFrame      `json:"time_frame"`
	Community      string         `json:"community"`
	TotalReturned  int            `json:"total_returned"`
	HasMore        bool           `json:"has_more"`
	NextOffset     int            `json:"next_offset"`
	GeneratedAt    int64          `json:"generated_at"`
	FiltersApplied FiltersApplied `json:"filters_applied"`
}

// NewMetadata describes a page of returned items produced by pl.
func NewMetadata(pl Plan, returned int) Metadata {
	community := pl.Params.Community
	if community == "" {
		community = "all"
	}
	return Metadata{
		SortType:      pl.Params.Strategy,
		TimeFrame:     pl.Params.TimeFrame,
		Community:     community,
		TotalReturned: returned,
		HasMore:       returned == pl.Params.Limit,
		NextOffset:    pl.Params.Offset + pl.Params.Limit,
		GeneratedAt:   pl.Now.Unix(),
		FiltersApplied: FiltersApplied{
			CommunityFilter: pl.Params.Community != "",
			TimeFilter:      pl.TimeFiltered(),
		},
	}
}

// Page is the body of a feed response.
type Page struct {
	Posts    []Item   `json:"posts"`
	Metadata Metadata `json:"metadata"`
}
