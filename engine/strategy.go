// Package engine 编排推荐策略：冷启动路由、错误兜底与评估协议。
package engine

import (
	"context"

	"github.com/Hedredo/oc-p10/core"
)

// Strategy 是可评估的推荐策略的统一能力接口。
// 显式的策略接口 + 组合，不做继承层次；评估协议（Evaluate）
// 是独立的自由函数，对任意 Strategy 参数化。
//
// 实现：popularity.Ranker（流行度）、engine.WeightedContentBased（加权内容）。
type Strategy interface {
	Name() string

	// Fit 基于目录中的训练交互拟合策略。必须在 Recommend 之前调用。
	Fit(ctx context.Context) error

	// Recommend 为用户生成至多 k 条推荐。
	// 用户不在目录中不是错误；k 必须为正。
	Recommend(ctx context.Context, userID int64, k int) (*core.Result, error)
}

// Augmenter 是可选扩展：用 held-out 集合扩展策略的内部状态
// （如流行度表的类别回填）。仅评估协议使用。
type Augmenter interface {
	Augment(test []core.Interaction)
}
