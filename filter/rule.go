package filter

import (
	"context"

	"github.com/Hedredo/oc-p10/pkg/dsl"
)

// RuleFilter 用一条 CEL 表达式排除候选，表达式来自配置（exclude_rule）。
// 求值错误向上传播：规则在启动时已编译通过，运行期错误意味着数据异常。
type RuleFilter struct {
	rule *dsl.Rule
}

// NewRuleFilter 编译表达式并构建过滤器。表达式为空时返回 (nil, nil)，
// 表示不启用规则过滤。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	if expr == "" {
		return nil, nil
	}
	rule, err := dsl.NewRule(expr)
	if err != nil {
		return nil, err
	}
	return &RuleFilter{rule: rule}, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(ctx context.Context, userID int64, c Candidate) (bool, error) {
	hit, err := f.rule.Eval(map[string]any{
		"id":          c.ArticleID,
		"category_id": c.CategoryID,
		"popularity":  c.Popularity,
	})
	if err != nil {
		return false, err
	}
	return hit, nil
}
