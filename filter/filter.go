// Package filter 提供候选排除过滤器。
//
// 过滤器只作用于引擎的候选选择（内容路径候选池与已知用户的流行度回退）；
// 未知用户的冷启动路径保持 "全局 TopK、不剔除" 的契约不变。
package filter

import "context"

// Candidate 是过滤器看到的候选文章视图。
type Candidate struct {
	ArticleID  int64
	CategoryID int64
	// Popularity 是训练集中的归一化点击频率；流行度表中不存在时为 0。
	Popularity float64
}

// Filter 判定单个候选是否应被排除。
// 返回 true 表示排除。实现必须可被并发调用。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, userID int64, c Candidate) (bool, error)
}
