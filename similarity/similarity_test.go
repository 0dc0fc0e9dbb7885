package similarity

import (
	"testing"
	"time"

	"github.com/Hedredo/oc-p10/catalog"
	"github.com/Hedredo/oc-p10/core"
)

func fixtureCatalog(t *testing.T, embeddings map[int64]core.Vector) *catalog.Catalog {
	t.Helper()
	interactions := make([]core.Interaction, 0, len(embeddings))
	for id := range embeddings {
		interactions = append(interactions, core.Interaction{
			UserID:     1,
			ArticleID:  id,
			Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			CategoryID: 100,
			ClickRank:  1,
		})
	}
	c, err := catalog.Build(interactions, embeddings, time.Time{})
	if err != nil {
		t.Fatalf("catalog.Build() error = %v", err)
	}
	return c
}

func TestRankOrdersByCosine(t *testing.T) {
	c := fixtureCatalog(t, map[int64]core.Vector{
		10: {1, 0},  // cosine 1 with profile (1,0)
		11: {1, 1},  // cosine ~0.707
		12: {0, 1},  // cosine 0
		13: {-1, 0}, // cosine -1
	})
	r := NewRanker(c)

	got, err := r.Rank(core.Vector{1, 0}, nil, 4)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	want := []int64{10, 11, 12, 13}
	if len(got) != len(want) {
		t.Fatalf("Rank() returned %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ArticleID != want[i] {
			t.Errorf("Rank()[%d].ArticleID = %d, want %d", i, got[i].ArticleID, want[i])
		}
	}
	if got[0].Score <= got[1].Score {
		t.Error("scores must be strictly descending for this fixture")
	}
}

func TestRankTieBreaksByArticleID(t *testing.T) {
	// Articles 20 and 11 are parallel vectors: identical cosine, ascending ID wins.
	c := fixtureCatalog(t, map[int64]core.Vector{
		20: {2, 0},
		11: {1, 0},
		12: {0, 1},
	})
	r := NewRanker(c)

	got, err := r.Rank(core.Vector{1, 0}, nil, 2)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if got[0].ArticleID != 11 || got[1].ArticleID != 20 {
		t.Errorf("Rank() = [%d %d], want ties broken ascending [11 20]", got[0].ArticleID, got[1].ArticleID)
	}
}

func TestRankExcludingAndTruncation(t *testing.T) {
	c := fixtureCatalog(t, map[int64]core.Vector{
		10: {1, 0},
		11: {1, 1},
		12: {0, 1},
	})
	r := NewRanker(c)

	got, err := r.Rank(core.Vector{1, 0}, map[int64]struct{}{10: {}}, 1)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(got) != 1 || got[0].ArticleID != 11 {
		t.Errorf("Rank() = %v, want single result [11]", got)
	}

	// Excluding the whole pool yields an empty, non-error result.
	got, err = r.Rank(core.Vector{1, 0}, map[int64]struct{}{10: {}, 11: {}, 12: {}}, 3)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Rank() = %v, want empty", got)
	}
}

func TestRankRejectsZeroProfile(t *testing.T) {
	c := fixtureCatalog(t, map[int64]core.Vector{10: {1, 0}})
	r := NewRanker(c)

	_, err := r.Rank(core.Vector{0, 0}, nil, 1)
	if !core.IsInvalidInput(err) {
		t.Fatalf("Rank() error = %v, want INVALID_INPUT for zero profile", err)
	}
}

func TestRankRejectsNonPositiveK(t *testing.T) {
	c := fixtureCatalog(t, map[int64]core.Vector{10: {1, 0}})
	r := NewRanker(c)

	for _, k := range []int{0, -5} {
		if _, err := r.Rank(core.Vector{1, 0}, nil, k); !core.IsInvalidInput(err) {
			t.Errorf("Rank(k=%d) error = %v, want INVALID_INPUT", k, err)
		}
	}
}
