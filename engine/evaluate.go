package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/Hedredo/oc-p10/core"
)

// Metrics 是 Top-K 评估指标：所有参评用户的算术平均，保留 4 位小数。
type Metrics struct {
	K         int     `json:"k"`
	Users     int     `json:"users"`
	Hit       float64 `json:"hit"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Evaluate 用 held-out 交互集合评估任意策略。
//
// 协议（对所有策略一致）：
//   - 先 Fit；策略实现 Augmenter 时再用 test 扩展（流行度表的类别回填）
//   - 对每个至少有一条 held-out 真实文章的用户：
//     取 Top-K 推荐与真实集合求交，hit = 交集非空，
//     precision = |交集| / k，recall = |交集| / |真实集合|，
//     F1 = precision 与 recall 的调和平均（两者皆 0 时为 0）
//   - 没有真实文章的用户跳过，不计入均值分母
func Evaluate(ctx context.Context, s Strategy, test []core.Interaction, k int) (*Metrics, error) {
	if k <= 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, fmt.Sprintf("evaluate: k must be positive, got %d", k))
	}
	if err := s.Fit(ctx); err != nil {
		return nil, fmt.Errorf("evaluate: fit %s: %w", s.Name(), err)
	}
	if a, ok := s.(Augmenter); ok {
		a.Augment(test)
	}

	// 按首次出现顺序收集用户的真实文章集合
	users := make([]int64, 0)
	trueItems := make(map[int64]map[int64]struct{})
	for _, it := range test {
		if trueItems[it.UserID] == nil {
			trueItems[it.UserID] = make(map[int64]struct{})
			users = append(users, it.UserID)
		}
		trueItems[it.UserID][it.ArticleID] = struct{}{}
	}

	var hits, precisions, recalls, f1s float64
	evaluated := 0
	for _, userID := range users {
		truth := trueItems[userID]
		if len(truth) == 0 {
			continue
		}

		res, err := s.Recommend(ctx, userID, k)
		if err != nil {
			return nil, fmt.Errorf("evaluate: recommend user %d: %w", userID, err)
		}

		topK := res.Recommendations
		if len(topK) > k {
			topK = topK[:k]
		}
		nHit := 0
		for _, id := range topK {
			if _, ok := truth[id]; ok {
				nHit++
			}
		}

		precision := float64(nHit) / float64(k)
		recall := float64(nHit) / float64(len(truth))
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		if nHit > 0 {
			hits++
		}
		precisions += precision
		recalls += recall
		f1s += f1
		evaluated++
	}

	if evaluated == 0 {
		return &Metrics{K: k}, nil
	}
	n := float64(evaluated)
	return &Metrics{
		K:         k,
		Users:     evaluated,
		Hit:       round4(hits / n),
		Precision: round4(precisions / n),
		Recall:    round4(recalls / n),
		F1:        round4(f1s / n),
	}, nil
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
