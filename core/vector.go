package core

import "math"

// Vector 是文章内容的 embedding 向量，由外部离线管道（PCA 压缩后）产出。
// 整个目录中所有向量的维度必须一致。
type Vector []float64

// IsZero 判断是否为零向量（无有效画像的信号）。
// 零向量的余弦相似度未定义（0/0），调用方必须在进入相似度计算前拦截。
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// AddScaled 将 src*w 累加到 v（原地修改），用于画像的加权求和。
// 维度不一致时返回 DIMENSION_MISMATCH 错误。
func (v Vector) AddScaled(src Vector, w float64) error {
	if len(v) != len(src) {
		return NewDomainError(ModuleProfile, ErrorCodeDimensionMismatch, "vector: dimension mismatch")
	}
	for i, x := range src {
		v[i] += x * w
	}
	return nil
}

// Scale 将 v 整体乘以 w（原地修改）。
func (v Vector) Scale(w float64) {
	for i := range v {
		v[i] *= w
	}
}

// Cosine 计算两个向量的余弦相似度。
// 维度不一致时返回 DIMENSION_MISMATCH 错误；任一向量为零向量时返回 0。
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, NewDomainError(ModuleSimilarity, ErrorCodeDimensionMismatch, "vector: dimension mismatch")
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
