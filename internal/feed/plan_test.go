package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var planNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func hoursAgo(h float64) time.Time {
	return planNow.Add(-time.Duration(h * float64(time.Hour)))
}

func snap(id string, up, down, comments int, created time.Time) Snapshot {
	return Snapshot{
		ID:           id,
		Community:    "golang",
		Upvotes:      up,
		Downvotes:    down,
		Score:        up - down,
		CommentCount: comments,
		CreatedAt:    created,
	}
}

func ids(items []Snapshot) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func fixture() []Snapshot {
	deleted := snap("deleted", 50, 0, 0, hoursAgo(1))
	deleted.IsDeleted = true
	other := snap("other-community", 3, 0, 0, hoursAgo(1))
	other.Community = "rust"
	return []Snapshot{
		snap("fresh-unvoted", 0, 0, 0, hoursAgo(0.5)),
		snap("fresh-popular", 20, 2, 4, hoursAgo(1)),
		snap("old-popular", 200, 10, 40, hoursAgo(72)),
		snap("split", 12, 11, 6, hoursAgo(3)),
		snap("lopsided", 30, 6, 1, hoursAgo(5)),
		snap("week-old", 8, 1, 0, hoursAgo(24*6)),
		deleted,
		other,
	}
}

func run(raw RawParams) []string {
	return ids(NewPlan(NormalizeParams(raw), planNow).ApplyInMemory(fixture()))
}

func TestNewOrdersByCreatedAt(t *testing.T) {
	assert.Equal(t,
		[]string{"fresh-unvoted", "fresh-popular", "other-community", "split", "lopsided", "old-popular", "week-old"},
		run(RawParams{Strategy: "new"}))
}

func TestHotRequiresAVote(t *testing.T) {
	got := run(RawParams{Strategy: "hot"})
	assert.NotContains(t, got, "fresh-unvoted")
	assert.NotContains(t, got, "deleted")
	assert.Len(t, got, 6)
}

func TestHotPrefersNewerAtEqualScore(t *testing.T) {
	items := []Snapshot{
		snap("older", 10, 0, 0, hoursAgo(10)),
		snap("newer", 10, 0, 0, hoursAgo(1)),
	}
	pl := NewPlan(NormalizeParams(RawParams{Strategy: "hot"}), planNow)
	assert.Equal(t, []string{"newer", "older"}, ids(pl.ApplyInMemory(items)))
}

func TestTopRespectsTimeFrame(t *testing.T) {
	assert.Equal(t,
		[]string{"lopsided", "fresh-popular", "other-community", "split", "fresh-unvoted"},
		run(RawParams{Strategy: "top", TimeFrame: "24h"}))

	all := run(RawParams{Strategy: "top", TimeFrame: "all"})
	assert.Equal(t, "old-popular", all[0])
	assert.Contains(t, all, "week-old")
}

func TestTrendingRespectsTimeFrame(t *testing.T) {
	got := run(RawParams{Strategy: "trending", TimeFrame: "6h"})
	assert.ElementsMatch(t, []string{"fresh-unvoted", "fresh-popular", "split", "lopsided", "other-community"}, got)
	assert.Equal(t, "fresh-popular", got[0])
}

func TestControversialMinimumSample(t *testing.T) {
	assert.Equal(t, []string{"split", "lopsided", "old-popular"}, run(RawParams{Strategy: "controversial"}))
}

func TestRisingIgnoresTimeFrame(t *testing.T) {
	for _, tf := range []string{"all", "30d", "1h"} {
		got := run(RawParams{Strategy: "rising", TimeFrame: tf})
		assert.ElementsMatch(t,
			[]string{"fresh-unvoted", "fresh-popular", "split", "lopsided", "other-community"}, got, tf)
	}
}

func TestCommunityScope(t *testing.T) {
	assert.Equal(t, []string{"other-community"}, run(RawParams{Strategy: "new", Community: "rust"}))
	assert.Empty(t, run(RawParams{Strategy: "new", Community: "missing"}))
}

func TestUnknownInputsFallBack(t *testing.T) {
	assert.Equal(t, run(RawParams{Strategy: "hot"}), run(RawParams{Strategy: "foobar"}))
	assert.Equal(t,
		run(RawParams{Strategy: "top", TimeFrame: "24h"}),
		run(RawParams{Strategy: "top", TimeFrame: "foobar"}))
}

func TestTieBreakIsCreatedAtDesc(t *testing.T) {
	items := []Snapshot{
		snap("a", 5, 0, 0, hoursAgo(3)),
		snap("b", 5, 0, 0, hoursAgo(1)),
		snap("c", 5, 0, 0, hoursAgo(2)),
	}
	pl := NewPlan(NormalizeParams(RawParams{Strategy: "top", TimeFrame: "all"}), planNow)
	assert.Equal(t, []string{"b", "c", "a"}, ids(pl.ApplyInMemory(items)))
}

func TestInMemoryPagination(t *testing.T) {
	page := run(RawParams{Strategy: "new", Limit: "2", Offset: "1"})
	assert.Equal(t, []string{"fresh-popular", "other-community"}, page)

	assert.Empty(t, run(RawParams{Strategy: "new", Offset: "50"}))
}

func TestTimeFiltered(t *testing.T) {
	cases := map[string]bool{
		"hot":    false,
		"new":    false,
		"top":    true,
		"rising": true,
	}
	for s, want := range cases {
		pl := NewPlan(NormalizeParams(RawParams{Strategy: s}), planNow)
		assert.Equal(t, want, pl.TimeFiltered(), s)
	}

	pl := NewPlan(NormalizeParams(RawParams{Strategy: "top", TimeFrame: "all"}), planNow)
	assert.False(t, pl.TimeFiltered())
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=forum dbname=forum sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestApplyBuildsSQL(t *testing.T) {
	db := dryRunDB(t)

	tests := []struct {
		strategy string
		contains []string
	}{
		{"hot", []string{"posts.upvotes + posts.downvotes >= 1", "ORDER BY SIGN(posts.score)", "DESC, posts.created_at DESC"}},
		{"new", []string{"ORDER BY posts.created_at DESC"}},
		{"top", []string{"posts.created_at >= ", "ORDER BY posts.score DESC, posts.created_at DESC"}},
		{"trending", []string{"POWER(GREATEST(", "-1.5)"}},
		{"controversial", []string{"posts.upvotes > 5 AND posts.downvotes > 5", "SQRT(posts.upvotes + posts.downvotes)"}},
		{"rising", []string{"posts.created_at >= ", "0.8) DESC"}},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			pl := NewPlan(NormalizeParams(RawParams{Strategy: tt.strategy, Community: "golang", Limit: "10", Offset: "20"}), planNow)
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var rows []Row
				return pl.Apply(tx.Table("posts").Select(feedColumns).
					Joins("LEFT JOIN communities ON communities.id = posts.community_id")).Scan(&rows)
			})

			assert.Contains(t, sql, "posts.is_deleted = false")
			assert.Contains(t, sql, "communities.name = 'golang'")
			assert.Contains(t, sql, "LIMIT 10")
			assert.Contains(t, sql, "OFFSET 20")
			for _, frag := range tt.contains {
				assert.Contains(t, sql, frag)
			}
		})
	}
}
