// recserver 是推荐服务进程：加载数据、训练模型、提供 HTTP 接口。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hedredo/oc-p10/catalog"
	"github.com/Hedredo/oc-p10/config"
	"github.com/Hedredo/oc-p10/core"
	"github.com/Hedredo/oc-p10/dataset"
	"github.com/Hedredo/oc-p10/engine"
	"github.com/Hedredo/oc-p10/filter"
	"github.com/Hedredo/oc-p10/popularity"
	"github.com/Hedredo/oc-p10/profile"
	"github.com/Hedredo/oc-p10/server"
	"github.com/Hedredo/oc-p10/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if err := run(log, *configPath); err != nil {
		log.Fatal().Err(err).Msg("recserver exited")
	}
}

func run(log zerolog.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("clicks", cfg.Data.ClicksPath).Str("embeddings", cfg.Data.EmbeddingsPath).Msg("loading datasets")
	start := time.Now()
	data, err := dataset.Load(ctx, cfg.Data.ClicksPath, cfg.Data.EmbeddingsPath)
	if err != nil {
		return err
	}
	log.Info().
		Int("interactions", len(data.Interactions)).
		Int("embeddings", len(data.Embeddings)).
		Dur("elapsed", time.Since(start)).
		Msg("datasets loaded")

	splitDate, err := cfg.ParseSplitDate()
	if err != nil {
		return err
	}
	if splitDate.IsZero() {
		splitDate = dataset.MaxTimestamp(data.Interactions)
	}

	cat, err := catalog.Build(data.Interactions, data.Embeddings, splitDate)
	if err != nil {
		return err
	}
	log.Info().Int("users", cat.UserCount()).Int("dim", cat.Dim()).Time("split_date", cat.SplitDate()).Msg("catalog built")

	var filters []filter.Filter
	if cfg.Model.ExcludeRule != "" {
		rf, err := filter.NewRuleFilter(cfg.Model.ExcludeRule)
		if err != nil {
			return fmt.Errorf("compile exclude_rule: %w", err)
		}
		filters = append(filters, rf)
		log.Info().Str("rule", cfg.Model.ExcludeRule).Msg("exclude rule enabled")
	}

	pop := popularity.NewRanker(cat)
	weights := profile.Weights{
		Recency:  cfg.Model.WRecency,
		Position: cfg.Model.WPosition,
		Category: cfg.Model.WCategory,
	}
	strategy := engine.NewWeightedContentBased(cat, pop, weights, filters...)
	eng := engine.New(strategy, log)

	cache, err := newCache(cfg)
	if err != nil {
		return err
	}
	defer cache.Close()

	srv := server.New(eng,
		server.WithLogger(log),
		server.WithCache(cache, cfg.Cache.TTL),
		server.WithKBounds(cfg.Model.K, cfg.Model.MaxK),
	)

	start = time.Now()
	if err := eng.Fit(ctx); err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("model fitted")

	if err := exportPopularity(ctx, cache, pop); err != nil {
		log.Warn().Err(err).Msg("popularity snapshot export failed")
	}

	srv.SetReady(true)
	return srv.Serve(ctx, cfg.Server.Addr,
		time.Duration(cfg.Server.ReadTimeout)*time.Second,
		time.Duration(cfg.Server.WriteTimeout)*time.Second,
	)
}

func newCache(cfg *config.Config) (core.KeyValueStore, error) {
	if cfg.Cache.Backend == "redis" {
		return store.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	}
	return store.NewMemoryStore(), nil
}

// exportPopularity 把流行度表写入 zset popular:articles，
// 供运维脚本与离线分析直接读取。
func exportPopularity(ctx context.Context, cache core.KeyValueStore, pop *popularity.Ranker) error {
	for articleID, score := range pop.Table().Articles {
		if err := cache.ZAdd(ctx, "popular:articles", score, strconv.FormatInt(articleID, 10)); err != nil {
			return err
		}
	}
	return nil
}
