package feed

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Stats summarises the posts of a time frame.
type Stats struct {
	TotalPosts             int64    `json:"total_posts"`
	AvgScore               *float64 `json:"avg_score"`
	MaxScore               *int64   `json:"max_score"`
	TotalComments          *int64   `json:"total_comments"`
	AvgComments            *float64 `json:"avg_comments"`
	PostsWithPositiveScore int64    `json:"posts_with_positive_score"`
	PostsWithComments      int64    `json:"posts_with_comments"`
	PostTypes              *string  `json:"post_types"`
}

type TrendingCommunity struct {
	CommunityName        string  `json:"community_name"`
	CommunityDisplayName string  `json:"community_display_name"`
	RecentPosts          int64   `json:"recent_posts"`
	TotalScore           int64   `json:"total_score"`
	TotalComments        int64   `json:"total_comments"`
	AvgScore             float64 `json:"avg_score"`
	TrendingScore        float64 `json:"trending_score"`
}

type Repository interface {
	Feed(ctx context.Context, pl Plan) ([]Row, error)
	CommunityExists(ctx context.Context, name string) (bool, error)
	// Stats covers posts created at or after since; a nil since means all.
	Stats(ctx context.Context, community string, since *time.Time) (Stats, error)
	TrendingCommunities(ctx context.Context, since *time.Time, now time.Time, limit int) ([]TrendingCommunity, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var _ Repository = (*GormRepository)(nil)

const feedColumns = "posts.id, posts.title, posts.body, posts.type, posts.url, posts.score, posts.upvotes, " +
	"posts.downvotes, posts.comment_count, posts.created_at, posts.updated_at, posts.author_id, " +
	"communities.name AS community_name, communities.display_name AS community_display_name"

func (r *GormRepository) postsWithCommunity(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Joins("LEFT JOIN communities ON communities.id = posts.community_id")
}

func (r *GormRepository) Feed(ctx context.Context, pl Plan) ([]Row, error) {
	rows := []Row{}
	err := pl.Apply(r.postsWithCommunity(ctx).Select(feedColumns)).Scan(&rows).Error
	return rows, err
}

func (r *GormRepository) CommunityExists(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("communities").Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (r *GormRepository) Stats(ctx context.Context, community string, since *time.Time) (Stats, error) {
	q := r.postsWithCommunity(ctx).
		Select(`COUNT(*) AS total_posts,
			CAST(AVG(posts.score) AS double precision) AS avg_score,
			MAX(posts.score) AS max_score,
			SUM(posts.comment_count) AS total_comments,
			CAST(AVG(posts.comment_count) AS double precision) AS avg_comments,
			COUNT(CASE WHEN posts.score > 0 THEN 1 END) AS posts_with_positive_score,
			COUNT(CASE WHEN posts.comment_count > 0 THEN 1 END) AS posts_with_comments,
			STRING_AGG(DISTINCT posts.type, ',' ORDER BY posts.type) AS post_types`).
		Where("posts.is_deleted = ?", false)
	if since != nil {
		q = q.Where("posts.created_at >= ?", *since)
	}
	if community != "" {
		q = q.Where("communities.name = ?", community)
	}

	var s Stats
	err := q.Scan(&s).Error
	return s, err
}

func (r *GormRepository) TrendingCommunities(ctx context.Context, since *time.Time, now time.Time, limit int) ([]TrendingCommunity, error) {
	q := r.db.WithContext(ctx).
		Table("posts").
		Select(`communities.name AS community_name,
			communities.display_name AS community_display_name,
			COUNT(posts.id) AS recent_posts,
			SUM(posts.score) AS total_score,
			SUM(posts.comment_count) AS total_comments,
			CAST(AVG(posts.score) AS double precision) AS avg_score,
			CAST((COUNT(posts.id) * 2 + SUM(posts.score) + SUM(posts.comment_count) * 0.5) AS double precision) /
				POWER(CAST(EXTRACT(EPOCH FROM (CAST(? AS timestamptz) - MIN(posts.created_at))) AS double precision) / 3600.0 + 1, 0.5) AS trending_score`, now).
		Joins("JOIN communities ON communities.id = posts.community_id").
		Where("posts.is_deleted = ?", false)
	if since != nil {
		q = q.Where("posts.created_at >= ?", *since)
	}

	out := []TrendingCommunity{}
	err := q.Group("communities.id, communities.name, communities.display_name").
		Having("COUNT(posts.id) >= ?", 2).
		Order("trending_score DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
