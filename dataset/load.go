// Package dataset 加载外部 ETL 管道产出的数据文件：
// 点击日志 CSV 与文章 embedding CSV。
//
// 加载是服务前的一次性阻塞操作：任何坏行、缺列、维度漂移都是致命错误，
// 加载失败时进程不得进入服务状态（fail fast）。
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Hedredo/oc-p10/core"
)

// Data 是加载完成的数据集：交互全量在内存中物化，embedding 按文章 ID 索引。
type Data struct {
	Interactions []core.Interaction
	Embeddings   map[int64]core.Vector
}

// Load 并发加载点击日志与 embedding 表，任一失败即整体失败。
func Load(ctx context.Context, clicksPath, embeddingsPath string) (*Data, error) {
	data := &Data{}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		interactions, err := LoadClicks(ctx, clicksPath)
		if err != nil {
			return err
		}
		data.Interactions = interactions
		return nil
	})
	eg.Go(func() error {
		embeddings, err := LoadEmbeddings(ctx, embeddingsPath)
		if err != nil {
			return err
		}
		data.Embeddings = embeddings
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// LoadClicks 读取点击日志 CSV。
// 必需列（按表头定位）：user_id, click_article_id, click_timestamp,
// click_ranking, category_id。
func LoadClicks(ctx context.Context, path string) ([]core.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open clicks: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read clicks header: %w", err)
	}
	col, err := columnIndex(header, "user_id", "click_article_id", "click_timestamp", "click_ranking", "category_id")
	if err != nil {
		return nil, err
	}

	var interactions []core.Interaction
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read clicks line %d: %w", line+1, err)
		}
		line++

		userID, err := strconv.ParseInt(record[col["user_id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: clicks line %d: bad user_id %q", line, record[col["user_id"]])
		}
		articleID, err := strconv.ParseInt(record[col["click_article_id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: clicks line %d: bad click_article_id %q", line, record[col["click_article_id"]])
		}
		ts, err := parseTimestamp(record[col["click_timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("dataset: clicks line %d: bad click_timestamp %q: %w", line, record[col["click_timestamp"]], err)
		}
		rank, err := strconv.Atoi(record[col["click_ranking"]])
		if err != nil || rank < 1 {
			return nil, fmt.Errorf("dataset: clicks line %d: bad click_ranking %q (must be positive integer)", line, record[col["click_ranking"]])
		}
		categoryID, err := strconv.ParseInt(record[col["category_id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: clicks line %d: bad category_id %q", line, record[col["category_id"]])
		}

		interactions = append(interactions, core.Interaction{
			UserID:     userID,
			ArticleID:  articleID,
			Timestamp:  ts,
			CategoryID: categoryID,
			ClickRank:  rank,
		})
	}
	if len(interactions) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "dataset: clicks file contains no interactions")
	}
	return interactions, nil
}

// LoadEmbeddings 读取 embedding CSV：首列 article_id，其余列为向量分量。
// 所有行的维度必须一致。
func LoadEmbeddings(ctx context.Context, path string) (map[int64]core.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open embeddings: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read embeddings header: %w", err)
	}
	if len(header) < 2 || strings.TrimSpace(header[0]) != "article_id" {
		return nil, fmt.Errorf("dataset: embeddings header must start with article_id, got %v", header)
	}
	dim := len(header) - 1

	embeddings := make(map[int64]core.Vector)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read embeddings line %d: %w", line+1, err)
		}
		line++

		if len(record) != dim+1 {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("dataset: embeddings line %d: expected %d components, got %d", line, dim, len(record)-1))
		}
		articleID, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: embeddings line %d: bad article_id %q", line, record[0])
		}
		vec := make(core.Vector, dim)
		for i := 0; i < dim; i++ {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: embeddings line %d: bad component %d: %q", line, i, record[i+1])
			}
			vec[i] = v
		}
		embeddings[articleID] = vec
	}
	if len(embeddings) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "dataset: embeddings file contains no vectors")
	}
	return embeddings, nil
}

// MaxTimestamp 返回交互集合中的最大时间戳（SplitDate 的缺省值）。
func MaxTimestamp(interactions []core.Interaction) time.Time {
	var max time.Time
	for _, it := range interactions {
		if it.Timestamp.After(max) {
			max = it.Timestamp
		}
	}
	return max
}

func columnIndex(header []string, required ...string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("dataset: missing required column %q in header %v", name, header)
		}
	}
	return col, nil
}

// parseTimestamp 兼容上游 ETL 的几种时间格式：
// unix 毫秒整数、RFC3339、"2006-01-02 15:04:05"、"2006-01-02"。
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}
