// Package similarity 用余弦相似度对未读候选打分并返回 Top-K。
package similarity

import (
	"fmt"
	"sort"

	"github.com/Hedredo/oc-p10/catalog"
	"github.com/Hedredo/oc-p10/core"
)

// Scored 是一个带分数的候选文章。
type Scored struct {
	ArticleID int64
	Score     float64
}

// Ranker 对目录中所有带 embedding 的候选做相似度排名。
type Ranker struct {
	catalog *catalog.Catalog
}

func NewRanker(c *catalog.Catalog) *Ranker {
	return &Ranker{catalog: c}
}

// Rank 对画像向量与每个候选的 embedding 计算余弦相似度，
// 返回 score 降序（同分按文章 ID 升序）的至多 k 个候选。
//
// 候选池 = 目录中所有带 embedding 的文章 - excluding（已读 + 规则过滤）。
// 候选不足 k 时返回更短的列表，没有候选时返回空列表。
//
// 零向量画像的余弦相似度未定义（0/0），调用方必须在进入本方法前
// 把零画像用户路由到流行度回退；此处返回 INVALID_INPUT 作为最后防线。
func (r *Ranker) Rank(profile core.Vector, excluding map[int64]struct{}, k int) ([]Scored, error) {
	if profile.IsZero() {
		return nil, core.NewDomainError(core.ModuleSimilarity, core.ErrorCodeInvalidInput, "similarity: zero profile vector, caller must route to popularity fallback")
	}
	if k <= 0 {
		return nil, core.NewDomainError(core.ModuleSimilarity, core.ErrorCodeInvalidInput, fmt.Sprintf("similarity: k must be positive, got %d", k))
	}

	scored := make([]Scored, 0, len(r.catalog.EmbeddedArticleIDs()))
	for _, id := range r.catalog.EmbeddedArticleIDs() {
		if _, skip := excluding[id]; skip {
			continue
		}
		embedding, ok := r.catalog.Embedding(id)
		if !ok {
			continue
		}
		score, err := core.Cosine(profile, embedding)
		if err != nil {
			return nil, err
		}
		scored = append(scored, Scored{ArticleID: id, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ArticleID < scored[j].ArticleID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
