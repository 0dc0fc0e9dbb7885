package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Hedredo/oc-p10/core"
)

// Engine 是推荐的服务边界：参数校验、panic 兜底、错误到结构化结果的转换。
// Recommend 永不向调用方抛错——任何内部失败都转换为 error 结果，
// 且不影响其他并发请求与共享目录状态。
type Engine struct {
	strategy Strategy
	log      zerolog.Logger
}

func New(strategy Strategy, log zerolog.Logger) *Engine {
	return &Engine{strategy: strategy, log: log}
}

// Fit 拟合底层策略。加载期错误是致命的：拟合失败时进程不应进入服务状态。
func (e *Engine) Fit(ctx context.Context) error {
	if err := e.strategy.Fit(ctx); err != nil {
		return fmt.Errorf("engine: fit %s: %w", e.strategy.Name(), err)
	}
	return nil
}

// Recommend 为用户生成推荐。核心接受任意正整数 k 并优雅降级
// （候选不足时返回更短的列表）；k 的业务上界（如 1-50）由服务层裁决。
func (e *Engine) Recommend(ctx context.Context, userID int64, k int) (result *core.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Int64("user_id", userID).Interface("panic", r).Msg("recommend panic recovered")
			result = core.NewErrorResult(userID, fmt.Sprintf("internal scoring error: %v", r))
		}
	}()

	if k <= 0 {
		return core.NewErrorResult(userID, fmt.Sprintf("k must be a positive integer, got %d", k))
	}

	res, err := e.strategy.Recommend(ctx, userID, k)
	if err != nil {
		e.log.Warn().Int64("user_id", userID).Int("k", k).Err(err).Msg("recommend failed")
		return core.NewErrorResult(userID, err.Error())
	}
	return res
}
