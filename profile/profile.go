// Package profile 把单个用户的交互历史聚合成 embedding 空间中的加权画像向量。
//
// 画像是请求级的临时对象：每次推荐调用重新计算，调用结束即丢弃，
// 不跨请求共享或缓存（算法对目录状态是确定性的，陈旧窗口为零）。
package profile

import (
	"math"
	"time"

	"github.com/Hedredo/oc-p10/catalog"
	"github.com/Hedredo/oc-p10/core"
)

// Weights 是画像聚合的三组权重开关。
type Weights struct {
	// Recency 时近权重系数（>= 0）：exp(-Recency * 天数差)
	Recency float64
	// Position 点击位置权重系数（>= 0）：exp(-Position * (位置 - 1))
	Position float64
	// Category 是否启用类别亲和权重
	Category bool
}

// Builder 基于目录构建用户画像向量。
type Builder struct {
	catalog *catalog.Catalog
	weights Weights
}

func NewBuilder(c *catalog.Catalog, w Weights) *Builder {
	return &Builder{catalog: c, weights: w}
}

// RecencyWeight 计算时近权重：exp(-w_recency * floorDays(split - t))。
// t == split 时恒为 1；split 之后的交互权重 > 1（越新权重越高）。
// 按日历天粒度计算，截断不足一天的部分（向下取整，与天数差的符号无关）。
func (b *Builder) RecencyWeight(t time.Time) float64 {
	days := math.Floor(b.catalog.SplitDate().Sub(t).Hours() / 24)
	return math.Exp(-b.weights.Recency * days)
}

// RankingWeight 计算点击位置权重：exp(-w_position * (pos - 1))。
// 会话内首次点击（pos=1）恒为 1，随位置指数衰减。
func (b *Builder) RankingWeight(pos int) float64 {
	return math.Exp(-b.weights.Position * float64(pos-1))
}

// categoryWeights 统计用户自身的类别偏好：类别 -> 归一化频率。
// 基于该用户的全部交互计算（包括没有 embedding 的文章）。
func (b *Builder) categoryWeights(interactions []core.Interaction) map[int64]float64 {
	weights := make(map[int64]float64, 8)
	for _, it := range interactions {
		weights[it.CategoryID]++
	}
	total := float64(len(interactions))
	for cat := range weights {
		weights[cat] /= total
	}
	return weights
}

// Build 构建用户画像向量。
//
// 规则：
//   - 无交互的用户返回零向量（"无画像"信号，调用方必须按冷启动处理）
//   - 文章没有 embedding 的交互整体跳过（不计入和，也不计入分母）
//   - 组合权重 = 时近权重 * 位置权重 *（可选）类别权重
//   - 画像 = 加权向量之和 / 有贡献的交互数
//
// 注意：分母是交互数而不是权重和——这不是加权平均的归一化，
// 是有意保留的设计（见 DESIGN.md 的 open question 记录）。
func (b *Builder) Build(userID int64) (core.Vector, error) {
	zero := make(core.Vector, b.catalog.Dim())

	interactions := b.catalog.UserInteractions(userID)
	if len(interactions) == 0 {
		return zero, nil
	}

	var categoryWeights map[int64]float64
	if b.weights.Category {
		categoryWeights = b.categoryWeights(interactions)
	}

	sum := make(core.Vector, b.catalog.Dim())
	count := 0
	for _, it := range interactions {
		embedding, ok := b.catalog.Embedding(it.ArticleID)
		if !ok {
			continue // 软缺失：静默跳过，不向调用方暴露
		}

		weight := b.RecencyWeight(it.Timestamp) * b.RankingWeight(it.ClickRank)
		if b.weights.Category {
			cw, ok := categoryWeights[it.CategoryID]
			if !ok {
				// 结构上不可达（权重表由同一批交互构建），
				// 保留以防御类别 key 不一致的边界情况。
				cw = 1.0 / float64(len(categoryWeights))
			}
			weight *= cw
		}

		if err := sum.AddScaled(embedding, weight); err != nil {
			return nil, err
		}
		count++
	}

	if count == 0 {
		return zero, nil
	}
	sum.Scale(1 / float64(count))
	return sum, nil
}
