// Package popularity 实现全局流行度排名：冷启动兜底与画像退化时的回退路径。
package popularity

import (
	"context"
	"fmt"
	"sort"

	"github.com/Hedredo/oc-p10/catalog"
	"github.com/Hedredo/oc-p10/core"
)

// Table 是流行度表：文章 / 类别 -> 归一化点击频率（点击数 / 总点击数）。
// Fit 之后只读，可被并发请求共享。
type Table struct {
	Articles   map[int64]float64
	Categories map[int64]float64
}

type entry struct {
	articleID int64
	score     float64
}

// Ranker 计算并持有流行度排名。
//
// 生命周期：NewRanker -> Fit ->（可选 Augment）-> TopK / Recommend。
// Fit 之前调用 TopK 返回 NOT_FITTED 错误。
type Ranker struct {
	catalog *catalog.Catalog
	table   *Table
	ranking []entry // score 降序，同分按文章 ID 升序，保证确定性
	fitted  bool
}

func NewRanker(c *catalog.Catalog) *Ranker {
	return &Ranker{catalog: c}
}

func (r *Ranker) Name() string { return "popularity" }

// Fit 基于训练交互集合构建流行度表并预排序。
func (r *Ranker) Fit(ctx context.Context) error {
	interactions := r.catalog.Interactions()
	total := float64(len(interactions))
	if total == 0 {
		return core.NewDomainError(core.ModulePopularity, core.ErrorCodeInvalidInput, "popularity: empty interaction set")
	}

	articleClicks := make(map[int64]float64)
	categoryClicks := make(map[int64]float64)
	for _, it := range interactions {
		articleClicks[it.ArticleID]++
		categoryClicks[it.CategoryID]++
	}
	for id := range articleClicks {
		articleClicks[id] /= total
	}
	for id := range categoryClicks {
		categoryClicks[id] /= total
	}

	r.table = &Table{Articles: articleClicks, Categories: categoryClicks}
	r.rebuildRanking()
	r.fitted = true
	return nil
}

// Augment 用 held-out 集合扩展流行度表：训练集中没出现过的文章，
// 继承其类别在训练集中的流行度；类别也未知的文章被排除。
// 仅在评估协议中使用（对应训练/测试切分的 fit_transform 语义）。
func (r *Ranker) Augment(test []core.Interaction) {
	if !r.fitted {
		return
	}
	for _, it := range test {
		if _, ok := r.table.Articles[it.ArticleID]; ok {
			continue
		}
		if pop, ok := r.table.Categories[it.CategoryID]; ok {
			r.table.Articles[it.ArticleID] = pop
		}
	}
	r.rebuildRanking()
}

func (r *Ranker) rebuildRanking() {
	r.ranking = make([]entry, 0, len(r.table.Articles))
	for id, score := range r.table.Articles {
		r.ranking = append(r.ranking, entry{articleID: id, score: score})
	}
	sort.Slice(r.ranking, func(i, j int) bool {
		if r.ranking[i].score != r.ranking[j].score {
			return r.ranking[i].score > r.ranking[j].score
		}
		return r.ranking[i].articleID < r.ranking[j].articleID
	})
}

// Table 返回拟合后的流行度表；未拟合时为 nil。
func (r *Ranker) Table() *Table {
	return r.table
}

// TopK 返回流行度最高的至多 k 篇文章，剔除 excluding 中的已读文章。
// 候选不足 k 时返回更短的列表。
func (r *Ranker) TopK(k int, excluding map[int64]struct{}) ([]int64, error) {
	if !r.fitted {
		return nil, core.NewDomainError(core.ModulePopularity, core.ErrorCodeNotFitted, "popularity: TopK called before Fit")
	}
	if k <= 0 {
		return nil, core.NewDomainError(core.ModulePopularity, core.ErrorCodeInvalidInput, fmt.Sprintf("popularity: k must be positive, got %d", k))
	}

	out := make([]int64, 0, k)
	for _, e := range r.ranking {
		if _, skip := excluding[e.articleID]; skip {
			continue
		}
		out = append(out, e.articleID)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// Recommend 实现 engine.Strategy：对已知用户剔除已读后取 TopK，
// 未知用户不剔除（冷启动时没有任何历史可剔除）。
func (r *Ranker) Recommend(ctx context.Context, userID int64, k int) (*core.Result, error) {
	var excluding map[int64]struct{}
	if r.catalog.UserKnown(userID) {
		excluding = r.catalog.ReadSet(userID)
	}
	articles, err := r.TopK(k, excluding)
	if err != nil {
		return nil, err
	}
	return core.NewResult(userID, articles, core.MethodPopularity), nil
}
