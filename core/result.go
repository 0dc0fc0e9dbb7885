package core

// Method 标记一次推荐结果的产生路径，用于 explain / 观测 / 评估。
type Method string

const (
	// MethodPopularity 冷启动：目录中不存在该用户，走全局流行度排名。
	MethodPopularity Method = "popularity"

	// MethodPopularityFallback 已知用户但画像退化为零向量
	// （例如其点击的文章都没有 embedding），回退到流行度排名并剔除已读。
	MethodPopularityFallback Method = "popularity_fallback"

	// MethodWeightedContentBased 加权内容推荐的正常路径。
	MethodWeightedContentBased Method = "weighted_content_based"

	// MethodNoNewArticles 已知用户但没有任何未读候选，返回空列表。
	MethodNoNewArticles Method = "no_new_articles"

	// MethodError 请求内部失败，结果携带可读的错误信息，绝不向上抛异常。
	MethodError Method = "error"
)

// Result 是一次推荐请求的结构化输出。
type Result struct {
	UserID          int64   `json:"user_id"`
	Recommendations []int64 `json:"recommendations"`
	Method          Method  `json:"method"`
	Count           int     `json:"count"`
	Error           string  `json:"error,omitempty"`
}

// NewResult 构造一个正常结果，Count 与推荐列表长度保持一致。
func NewResult(userID int64, articles []int64, method Method) *Result {
	if articles == nil {
		articles = []int64{}
	}
	return &Result{
		UserID:          userID,
		Recommendations: articles,
		Method:          method,
		Count:           len(articles),
	}
}

// NewErrorResult 构造一个 error 结果：空列表 + 可读信息。
func NewErrorResult(userID int64, msg string) *Result {
	return &Result{
		UserID:          userID,
		Recommendations: []int64{},
		Method:          MethodError,
		Count:           0,
		Error:           msg,
	}
}
