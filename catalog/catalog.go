// Package catalog 提供点击交互与文章 embedding 的只读索引。
// Catalog 在进程启动时构建一次，之后被所有并发请求以只读方式共享；
// 数据集刷新（外部触发）时整体重建，绝不原地修改。
package catalog

import (
	"sort"
	"time"

	"github.com/Hedredo/oc-p10/core"
)

// Catalog 是一次打分会话的数据底座：
//   - 按用户索引的交互列表与已读集合
//   - 文章 -> 类别 映射
//   - 文章 -> embedding 查找表（inner join：只保留交互日志中出现过的文章）
//   - SplitDate：时近权重的时间分界（缺省取训练集最大时间戳）
type Catalog struct {
	interactions []core.Interaction
	byUser       map[int64][]core.Interaction
	read         map[int64]map[int64]struct{}
	category     map[int64]int64
	embeddings   map[int64]core.Vector
	embeddedIDs  []int64 // 有 embedding 的文章 ID，升序，保证候选遍历确定性
	dim          int
	splitDate    time.Time
}

// Build 从交互日志和 embedding 表构建目录。
//
// 校验：
//   - 交互集合不能为空
//   - 所有 embedding 维度必须一致（维度漂移视为数据损坏，启动失败）
//
// 没有 embedding 的文章仍保留在交互索引中：它们不参与内容路径，
// 但在流行度路径中依旧可推荐。
func Build(interactions []core.Interaction, embeddings map[int64]core.Vector, splitDate time.Time) (*Catalog, error) {
	if len(interactions) == 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: empty interaction set")
	}

	c := &Catalog{
		interactions: interactions,
		byUser:       make(map[int64][]core.Interaction),
		read:         make(map[int64]map[int64]struct{}),
		category:     make(map[int64]int64),
		embeddings:   make(map[int64]core.Vector),
		splitDate:    splitDate,
	}

	var maxTS time.Time
	for _, it := range interactions {
		c.byUser[it.UserID] = append(c.byUser[it.UserID], it)
		if c.read[it.UserID] == nil {
			c.read[it.UserID] = make(map[int64]struct{})
		}
		c.read[it.UserID][it.ArticleID] = struct{}{}
		c.category[it.ArticleID] = it.CategoryID
		if it.Timestamp.After(maxTS) {
			maxTS = it.Timestamp
		}
	}

	// inner join：只保留交互日志中出现过的文章的 embedding
	for id, vec := range embeddings {
		if _, ok := c.category[id]; !ok {
			continue
		}
		if c.dim == 0 {
			c.dim = len(vec)
		} else if len(vec) != c.dim {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeDimensionMismatch, "catalog: embedding dimensionality is not constant")
		}
		c.embeddings[id] = vec
		c.embeddedIDs = append(c.embeddedIDs, id)
	}
	sort.Slice(c.embeddedIDs, func(i, j int) bool { return c.embeddedIDs[i] < c.embeddedIDs[j] })

	if c.splitDate.IsZero() {
		c.splitDate = maxTS
	}
	return c, nil
}

// Interactions 返回完整的训练交互集合（只读）。
func (c *Catalog) Interactions() []core.Interaction {
	return c.interactions
}

// UserKnown 判断用户是否在目录中（不在即冷启动）。
func (c *Catalog) UserKnown(userID int64) bool {
	_, ok := c.byUser[userID]
	return ok
}

// UserInteractions 返回某个用户的全部交互（按加载顺序）。
func (c *Catalog) UserInteractions(userID int64) []core.Interaction {
	return c.byUser[userID]
}

// ReadSet 返回用户已读文章集合；未知用户返回 nil。
func (c *Catalog) ReadSet(userID int64) map[int64]struct{} {
	return c.read[userID]
}

// Embedding 查找文章的 embedding；没有则 ok=false（软缺失，调用方跳过）。
func (c *Catalog) Embedding(articleID int64) (core.Vector, bool) {
	vec, ok := c.embeddings[articleID]
	return vec, ok
}

// EmbeddedArticleIDs 返回所有带 embedding 的文章 ID（升序）。
// 内容路径的候选池 = 该集合减去用户已读。
func (c *Catalog) EmbeddedArticleIDs() []int64 {
	return c.embeddedIDs
}

// ArticleCategory 返回文章的类别；未知文章返回 ok=false。
func (c *Catalog) ArticleCategory(articleID int64) (int64, bool) {
	cat, ok := c.category[articleID]
	return cat, ok
}

// Dim 返回 embedding 维度；目录中没有任何 embedding 时为 0。
func (c *Catalog) Dim() int {
	return c.dim
}

// SplitDate 返回时近权重的时间分界。
func (c *Catalog) SplitDate() time.Time {
	return c.splitDate
}

// UserCount 返回目录中的用户数。
func (c *Catalog) UserCount() int {
	return len(c.byUser)
}
