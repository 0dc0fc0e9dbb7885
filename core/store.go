package core

import "context"

// Store 是服务层使用的通用 KV 存储抽象（结果缓存等）。
// 接口定义在 core，实现在 store 包（memory / redis）。
type Store interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 写入 value；ttl 为可选的过期秒数，0 或省略表示不过期。
	Set(ctx context.Context, key string, value []byte, ttl ...int) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// KeyValueStore 在 Store 之上扩展有序集合操作，
// 用于导出流行度快照（member=文章 ID，score=归一化点击频率）。
type KeyValueStore interface {
	Store
	ZAdd(ctx context.Context, key string, score float64, member string) error
	// ZRange 按 score 降序返回 [start, stop] 区间的 member。
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZScore(ctx context.Context, key string, member string) (float64, error)
}
