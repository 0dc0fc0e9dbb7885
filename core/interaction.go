package core

import "time"

// Interaction 表示点击日志中的一次用户-文章交互。
// 加载完成后不可变；完整的交互集合即为训练语料。
//
// 不变量：同一用户同一会话内，ClickRank 唯一且随 Timestamp 单调递增。
// 该不变量由上游 ETL 保证，核心只消费。
type Interaction struct {
	UserID     int64
	ArticleID  int64
	Timestamp  time.Time
	CategoryID int64

	// ClickRank 是该次点击在会话内的排名（1-based，首次点击为 1）。
	ClickRank int
}
