// receval 是离线评估工具：用 held-out 点击集合评估推荐策略，
// 输出 Hit/Precision/Recall/F1 @K 的 JSON。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Hedredo/oc-p10/catalog"
	"github.com/Hedredo/oc-p10/dataset"
	"github.com/Hedredo/oc-p10/engine"
	"github.com/Hedredo/oc-p10/popularity"
	"github.com/Hedredo/oc-p10/profile"
)

func main() {
	trainPath := flag.String("train", "", "training clicks CSV")
	testPath := flag.String("test", "", "held-out clicks CSV")
	embeddingsPath := flag.String("embeddings", "", "article embeddings CSV")
	k := flag.Int("k", 5, "number of recommendations per user")
	wRecency := flag.Float64("w-recency", 0.25, "recency decay weight")
	wPosition := flag.Float64("w-position", 0.5, "click position decay weight")
	wCategory := flag.Bool("w-category", true, "enable category preference weighting")
	baseline := flag.Bool("baseline", false, "evaluate the popularity baseline instead")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if *trainPath == "" || *testPath == "" || *embeddingsPath == "" {
		log.Fatal().Msg("-train, -test and -embeddings are required")
	}

	if err := run(log, *trainPath, *testPath, *embeddingsPath, *k, profile.Weights{
		Recency:  *wRecency,
		Position: *wPosition,
		Category: *wCategory,
	}, *baseline); err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}
}

func run(log zerolog.Logger, trainPath, testPath, embeddingsPath string, k int, weights profile.Weights, baseline bool) error {
	ctx := context.Background()

	data, err := dataset.Load(ctx, trainPath, embeddingsPath)
	if err != nil {
		return err
	}
	test, err := dataset.LoadClicks(ctx, testPath)
	if err != nil {
		return err
	}
	log.Info().Int("train", len(data.Interactions)).Int("test", len(test)).Msg("datasets loaded")

	cat, err := catalog.Build(data.Interactions, data.Embeddings, dataset.MaxTimestamp(data.Interactions))
	if err != nil {
		return err
	}

	var strategy engine.Strategy
	pop := popularity.NewRanker(cat)
	if baseline {
		strategy = pop
	} else {
		strategy = engine.NewWeightedContentBased(cat, pop, weights)
	}

	metrics, err := engine.Evaluate(ctx, strategy, test, k)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{
		"strategy": strategy.Name(),
		"metrics":  metrics,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
