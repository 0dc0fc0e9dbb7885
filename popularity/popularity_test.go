package popularity

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Hedredo/oc-p10/catalog"
	"github.com/Hedredo/oc-p10/core"
)

func click(userID, articleID int64, categoryID int64) core.Interaction {
	return core.Interaction{
		UserID:     userID,
		ArticleID:  articleID,
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CategoryID: categoryID,
		ClickRank:  1,
	}
}

// 6 clicks: article 10 x3, article 11 x2, article 12 x1.
// Categories: 100 holds articles 10+12 (4 clicks), 101 holds article 11 (2 clicks).
func fixtureCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	interactions := []core.Interaction{
		click(1, 10, 100),
		click(2, 10, 100),
		click(3, 10, 100),
		click(1, 11, 101),
		click(2, 11, 101),
		click(3, 12, 100),
	}
	c, err := catalog.Build(interactions, map[int64]core.Vector{10: {1, 0}}, time.Time{})
	if err != nil {
		t.Fatalf("catalog.Build() error = %v", err)
	}
	return c
}

func TestTopKBeforeFit(t *testing.T) {
	r := NewRanker(fixtureCatalog(t))
	_, err := r.TopK(3, nil)
	if !core.IsNotFitted(err) {
		t.Fatalf("TopK() before Fit error = %v, want NOT_FITTED", err)
	}
}

func TestFitNormalization(t *testing.T) {
	r := NewRanker(fixtureCatalog(t))
	if err := r.Fit(context.Background()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	table := r.Table()
	wantArticles := map[int64]float64{10: 0.5, 11: 1.0 / 3, 12: 1.0 / 6}
	for id, want := range wantArticles {
		if got := table.Articles[id]; math.Abs(got-want) > 1e-12 {
			t.Errorf("Articles[%d] = %v, want %v", id, got, want)
		}
	}
	wantCategories := map[int64]float64{100: 2.0 / 3, 101: 1.0 / 3}
	for id, want := range wantCategories {
		if got := table.Categories[id]; math.Abs(got-want) > 1e-12 {
			t.Errorf("Categories[%d] = %v, want %v", id, got, want)
		}
	}
}

func TestTopK(t *testing.T) {
	r := NewRanker(fixtureCatalog(t))
	if err := r.Fit(context.Background()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	tests := []struct {
		name      string
		k         int
		excluding map[int64]struct{}
		want      []int64
	}{
		{name: "top 2 by click share", k: 2, want: []int64{10, 11}},
		{name: "k larger than catalog", k: 10, want: []int64{10, 11, 12}},
		{name: "excluding removes the leader", k: 2, excluding: map[int64]struct{}{10: {}}, want: []int64{11, 12}},
		{name: "excluding everything yields empty", k: 3, excluding: map[int64]struct{}{10: {}, 11: {}, 12: {}}, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.TopK(tt.k, tt.excluding)
			if err != nil {
				t.Fatalf("TopK() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("TopK() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("TopK()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTopKInvalidK(t *testing.T) {
	r := NewRanker(fixtureCatalog(t))
	if err := r.Fit(context.Background()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	for _, k := range []int{0, -1} {
		if _, err := r.TopK(k, nil); !core.IsInvalidInput(err) {
			t.Errorf("TopK(%d) error = %v, want INVALID_INPUT", k, err)
		}
	}
}

func TestTopKTieBreaksByArticleID(t *testing.T) {
	// Every article clicked exactly once: scores all tie, order must be ascending ID.
	interactions := []core.Interaction{
		click(1, 30, 100),
		click(2, 12, 100),
		click(3, 25, 101),
	}
	c, err := catalog.Build(interactions, map[int64]core.Vector{}, time.Time{})
	if err != nil {
		t.Fatalf("catalog.Build() error = %v", err)
	}
	r := NewRanker(c)
	if err := r.Fit(context.Background()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	got, err := r.TopK(3, nil)
	if err != nil {
		t.Fatalf("TopK() error = %v", err)
	}
	want := []int64{12, 25, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TopK() = %v, want %v", got, want)
		}
	}
}

func TestAugmentBackfillsFromCategory(t *testing.T) {
	r := NewRanker(fixtureCatalog(t))
	if err := r.Fit(context.Background()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	test := []core.Interaction{
		click(9, 50, 100), // unseen article, known category 100
		click(9, 51, 999), // unseen article, unknown category: excluded
		click(9, 10, 100), // already in the table: untouched
	}
	r.Augment(test)

	table := r.Table()
	if got, want := table.Articles[50], 2.0/3; math.Abs(got-want) > 1e-12 {
		t.Errorf("Articles[50] = %v, want category popularity %v", got, want)
	}
	if _, ok := table.Articles[51]; ok {
		t.Error("Articles[51] should be excluded: category unknown to the training set")
	}
	if got, want := table.Articles[10], 0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("Articles[10] = %v, want unchanged %v", got, want)
	}

	// Backfilled article 50 (score 2/3) now outranks article 10 (score 1/2).
	got, err := r.TopK(2, nil)
	if err != nil {
		t.Fatalf("TopK() error = %v", err)
	}
	if got[0] != 50 || got[1] != 10 {
		t.Errorf("TopK() after Augment = %v, want [50 10]", got)
	}
}

func TestAugmentBeforeFitIsNoop(t *testing.T) {
	r := NewRanker(fixtureCatalog(t))
	r.Augment([]core.Interaction{click(9, 50, 100)})
	if r.Table() != nil {
		t.Error("Augment() before Fit must not build a table")
	}
}

func TestRecommend(t *testing.T) {
	r := NewRanker(fixtureCatalog(t))
	if err := r.Fit(context.Background()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// Known user 1 has read 10 and 11.
	res, err := r.Recommend(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Method != core.MethodPopularity {
		t.Errorf("Method = %q, want %q", res.Method, core.MethodPopularity)
	}
	if len(res.Recommendations) != 1 || res.Recommendations[0] != 12 {
		t.Errorf("Recommendations = %v, want [12]", res.Recommendations)
	}
	if res.Count != 1 {
		t.Errorf("Count = %d, want 1", res.Count)
	}

	// Unknown user gets the unfiltered global ranking.
	res, err = r.Recommend(context.Background(), 999, 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := []int64{10, 11, 12}
	if len(res.Recommendations) != len(want) {
		t.Fatalf("Recommendations = %v, want %v", res.Recommendations, want)
	}
	for i := range want {
		if res.Recommendations[i] != want[i] {
			t.Errorf("Recommendations[%d] = %d, want %d", i, res.Recommendations[i], want[i])
		}
	}
}
