package engine

import (
	"context"
	"fmt"

	"github.com/Hedredo/oc-p10/catalog"
	"github.com/Hedredo/oc-p10/core"
	"github.com/Hedredo/oc-p10/filter"
	"github.com/Hedredo/oc-p10/popularity"
	"github.com/Hedredo/oc-p10/profile"
	"github.com/Hedredo/oc-p10/similarity"
)

// WeightedContentBased 是加权内容推荐策略，按请求执行状态机：
//
//	未知用户                -> popularity（全局 TopK，不剔除）
//	已知用户，无未读候选    -> no_new_articles（空列表）
//	已知用户，画像为零向量  -> popularity_fallback（剔除已读的 TopK）
//	已知用户，画像有效      -> weighted_content_based（余弦相似度 TopK）
//
// 除共享的只读目录外不携带请求间状态，可并发调用。
type WeightedContentBased struct {
	catalog  *catalog.Catalog
	popular  *popularity.Ranker
	profiles *profile.Builder
	sim      *similarity.Ranker
	filters  []filter.Filter
}

// NewWeightedContentBased 组装策略。filters 可选（规则过滤等），
// 只作用于已知用户的候选选择，不改变冷启动契约。
func NewWeightedContentBased(c *catalog.Catalog, pop *popularity.Ranker, weights profile.Weights, filters ...filter.Filter) *WeightedContentBased {
	return &WeightedContentBased{
		catalog:  c,
		popular:  pop,
		profiles: profile.NewBuilder(c, weights),
		sim:      similarity.NewRanker(c),
		filters:  filters,
	}
}

func (s *WeightedContentBased) Name() string { return "weighted_content_based" }

// Fit 拟合流行度兜底。画像与相似度本身无拟合状态（逐请求计算）。
func (s *WeightedContentBased) Fit(ctx context.Context) error {
	return s.popular.Fit(ctx)
}

// Augment 透传给流行度表（评估协议的类别回填）。
func (s *WeightedContentBased) Augment(test []core.Interaction) {
	s.popular.Augment(test)
}

// Recommend 执行状态机。返回的 error 只应是生命周期或参数 bug
// （NOT_FITTED / INVALID_INPUT）与向量计算故障，由上层 Engine 兜底。
func (s *WeightedContentBased) Recommend(ctx context.Context, userID int64, k int) (*core.Result, error) {
	if k <= 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, fmt.Sprintf("engine: k must be positive, got %d", k))
	}

	// 冷启动：目录中不存在该用户
	if !s.catalog.UserKnown(userID) {
		articles, err := s.popular.TopK(k, nil)
		if err != nil {
			return nil, err
		}
		return core.NewResult(userID, articles, core.MethodPopularity), nil
	}

	read := s.catalog.ReadSet(userID)

	// 内容路径候选 = 带 embedding 的文章 - 已读 - 规则命中
	excluding, err := s.contentExcluding(ctx, userID, read)
	if err != nil {
		return nil, err
	}
	if len(excluding) >= len(s.catalog.EmbeddedArticleIDs()) {
		remaining := 0
		for _, id := range s.catalog.EmbeddedArticleIDs() {
			if _, skip := excluding[id]; !skip {
				remaining++
			}
		}
		if remaining == 0 {
			return core.NewResult(userID, nil, core.MethodNoNewArticles), nil
		}
	}

	userProfile, err := s.profiles.Build(userID)
	if err != nil {
		return nil, err
	}

	// 画像退化为零向量（如用户点击的文章都没有 embedding）：
	// 绝不把零向量送进余弦相似度，回退到剔除已读的流行度排名。
	if userProfile.IsZero() {
		fallbackExcluding, err := s.popularityExcluding(ctx, userID, read)
		if err != nil {
			return nil, err
		}
		articles, err := s.popular.TopK(k, fallbackExcluding)
		if err != nil {
			return nil, err
		}
		return core.NewResult(userID, articles, core.MethodPopularityFallback), nil
	}

	scored, err := s.sim.Rank(userProfile, excluding, k)
	if err != nil {
		return nil, err
	}
	articles := make([]int64, 0, len(scored))
	for _, sc := range scored {
		articles = append(articles, sc.ArticleID)
	}
	return core.NewResult(userID, articles, core.MethodWeightedContentBased), nil
}

// contentExcluding 构建内容路径的排除集合：已读 + 规则命中的带 embedding 候选。
func (s *WeightedContentBased) contentExcluding(ctx context.Context, userID int64, read map[int64]struct{}) (map[int64]struct{}, error) {
	excluding := make(map[int64]struct{}, len(read))
	for id := range read {
		excluding[id] = struct{}{}
	}
	if len(s.filters) == 0 {
		return excluding, nil
	}
	for _, id := range s.catalog.EmbeddedArticleIDs() {
		if _, skip := excluding[id]; skip {
			continue
		}
		hit, err := s.applyFilters(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if hit {
			excluding[id] = struct{}{}
		}
	}
	return excluding, nil
}

// popularityExcluding 构建回退路径的排除集合：已读 + 规则命中的流行度表文章。
func (s *WeightedContentBased) popularityExcluding(ctx context.Context, userID int64, read map[int64]struct{}) (map[int64]struct{}, error) {
	excluding := make(map[int64]struct{}, len(read))
	for id := range read {
		excluding[id] = struct{}{}
	}
	if len(s.filters) == 0 || s.popular.Table() == nil {
		return excluding, nil
	}
	for id := range s.popular.Table().Articles {
		if _, skip := excluding[id]; skip {
			continue
		}
		hit, err := s.applyFilters(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if hit {
			excluding[id] = struct{}{}
		}
	}
	return excluding, nil
}

func (s *WeightedContentBased) applyFilters(ctx context.Context, userID, articleID int64) (bool, error) {
	c := filter.Candidate{ArticleID: articleID}
	if cat, ok := s.catalog.ArticleCategory(articleID); ok {
		c.CategoryID = cat
	}
	if table := s.popular.Table(); table != nil {
		c.Popularity = table.Articles[articleID]
	}
	for _, f := range s.filters {
		hit, err := f.ShouldFilter(ctx, userID, c)
		if err != nil {
			return false, fmt.Errorf("engine: filter %s: %w", f.Name(), err)
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}
