// Package dsl 是候选规则的 CEL (Common Expression Language) 求值器。
// CEL 是 Google 开发的表达式语言，类型安全、高性能、线程安全。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：article.category_id == 281 / article.id != 12345
//   - 数值：article.popularity < 0.0001
//   - 逻辑：article.category_id == 281 && article.popularity < 0.001
//
// 返回 true 表示候选命中规则（将被排除）。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("article", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Rule 是编译后的排除规则。表达式在 NewRule 时编译一次，
// Eval 可被多个请求并发调用。
type Rule struct {
	expr string
	prg  cel.Program
}

// NewRule 编译一条规则表达式。空表达式非法（调用方应直接不构建规则）。
func NewRule(expr string) (*Rule, error) {
	if expr == "" {
		return nil, fmt.Errorf("dsl: empty rule expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: init env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("dsl: compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("dsl: program %q: %w", expr, err)
	}
	return &Rule{expr: expr, prg: prg}, nil
}

// Expr 返回规则的原始表达式（用于日志与错误提示）。
func (r *Rule) Expr() string { return r.expr }

// Eval 对单个候选求值，article 是候选文章的属性 map。
// 表达式必须返回布尔值，否则报错。
func (r *Rule) Eval(article map[string]any) (bool, error) {
	out, _, err := r.prg.Eval(map[string]any{"article": article})
	if err != nil {
		return false, fmt.Errorf("dsl: eval %q: %w", r.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: expression %q must return boolean, got %T", r.expr, out.Value())
	}
	return result, nil
}
