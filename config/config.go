// Package config 加载服务配置：YAML 文件 + 环境变量覆盖 + 结构校验。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config 是进程级配置，启动时构建一次，显式传递给各组件
// （不做全局可变状态，不做惰性初始化）。
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Model  ModelConfig  `yaml:"model"`
	Cache  CacheConfig  `yaml:"cache"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// ReadTimeout / WriteTimeout 单位秒
	ReadTimeout  int `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout int `yaml:"write_timeout" validate:"gte=0"`
}

type DataConfig struct {
	ClicksPath     string `yaml:"clicks_path" validate:"required"`
	EmbeddingsPath string `yaml:"embeddings_path" validate:"required"`
	// SplitDate 可选；为空时取训练集最大时间戳
	SplitDate string `yaml:"split_date"`
}

// ModelConfig 是算法直接消费的旋钮。
type ModelConfig struct {
	// K 缺省结果数；MaxK 服务层接受的上界（算法本身接受任意正 k）
	K    int `yaml:"k" validate:"min=1"`
	MaxK int `yaml:"max_k" validate:"min=1"`

	WRecency  float64 `yaml:"w_recency" validate:"gte=0"`
	WPosition float64 `yaml:"w_position" validate:"gte=0"`
	WCategory bool    `yaml:"w_category"`

	// ExcludeRule 可选的候选排除规则（CEL 表达式），空表示不启用
	ExcludeRule string `yaml:"exclude_rule"`
}

type CacheConfig struct {
	Backend   string `yaml:"backend" validate:"oneof=memory redis"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db" validate:"gte=0"`
	// TTL 结果缓存的过期秒数
	TTL int `yaml:"ttl" validate:"gte=0"`
}

// Default 返回内置缺省值（与离线实验使用的默认一致：
// k=5, w_recency=0.25, w_position=0.5, w_category=true）。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10,
			WriteTimeout: 30,
		},
		Model: ModelConfig{
			K:         5,
			MaxK:      50,
			WRecency:  0.25,
			WPosition: 0.5,
			WCategory: true,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     300,
		},
	}
}

// Load 按 缺省值 -> YAML -> 环境变量 的顺序叠加，最后整体校验。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	if cfg.Cache.Backend == "redis" && cfg.Cache.RedisAddr == "" {
		return nil, fmt.Errorf("config: cache.redis_addr is required when cache.backend is redis")
	}
	if cfg.Model.K > cfg.Model.MaxK {
		return nil, fmt.Errorf("config: model.k (%d) exceeds model.max_k (%d)", cfg.Model.K, cfg.Model.MaxK)
	}
	if _, err := cfg.ParseSplitDate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 环境变量覆盖（部署旋钮，不覆盖算法权重）
func applyEnv(cfg *Config) {
	if v := os.Getenv("RECO_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("RECO_CLICKS_PATH"); v != "" {
		cfg.Data.ClicksPath = v
	}
	if v := os.Getenv("RECO_EMBEDDINGS_PATH"); v != "" {
		cfg.Data.EmbeddingsPath = v
	}
	if v := os.Getenv("RECO_SPLIT_DATE"); v != "" {
		cfg.Data.SplitDate = v
	}
	if v := os.Getenv("RECO_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("RECO_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("RECO_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = db
		}
	}
}

// ParseSplitDate 解析 SplitDate；为空时返回零值（调用方取最大时间戳）。
func (c *Config) ParseSplitDate() (time.Time, error) {
	if c.Data.SplitDate == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, c.Data.SplitDate); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("config: bad data.split_date %q (want YYYY-MM-DD or RFC3339)", c.Data.SplitDate)
}
