// Package ocp10 是一个新闻文章推荐引擎。
//
// 设计要点：
// - Strategy-first: 推荐逻辑实现 engine.Strategy（Fit → Recommend），统一参与离线评估
// - 冷启动回退: 未知用户 / 零画像用户自动回退到流行度排名，Result.Method 标明路径
// - 确定性: 所有排序在分数相同处按文章 ID 升序打破平局，同一输入永远同一输出
package ocp10

import (
	"github.com/Hedredo/oc-p10/core"
	"github.com/Hedredo/oc-p10/engine"
)

// 轻量 facade：便于用户直接 import 根包使用核心抽象。
type Engine = engine.Engine
type Strategy = engine.Strategy
type Result = core.Result
type Interaction = core.Interaction

const (
	MethodPopularity           = core.MethodPopularity
	MethodPopularityFallback   = core.MethodPopularityFallback
	MethodWeightedContentBased = core.MethodWeightedContentBased
	MethodNoNewArticles        = core.MethodNoNewArticles
	MethodError                = core.MethodError
)
