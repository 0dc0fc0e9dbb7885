// Package server 暴露推荐引擎的 HTTP 接口。
//
// 路由：
//
//	GET/POST /api/recommend  推荐接口（query 或 JSON body 传参）
//	GET      /healthz        就绪探针（模型 Fit 完成前返回 503）
//	GET      /metrics        Prometheus 指标
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Hedredo/oc-p10/core"
	"github.com/Hedredo/oc-p10/engine"
)

// Server 组合引擎、结果缓存与指标，对外提供 HTTP 服务。
type Server struct {
	engine   *engine.Engine
	cache    core.KeyValueStore
	metrics  *Metrics
	registry *prometheus.Registry
	log      zerolog.Logger

	defaultK int
	maxK     int
	cacheTTL int

	ready atomic.Bool
}

type Option func(*Server)

// WithCache 启用结果缓存，ttl 为缓存秒数。
func WithCache(cache core.KeyValueStore, ttl int) Option {
	return func(s *Server) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithKBounds 设置缺省与最大结果数。
func WithKBounds(defaultK, maxK int) Option {
	return func(s *Server) {
		s.defaultK = defaultK
		s.maxK = maxK
	}
}

func New(e *engine.Engine, opts ...Option) *Server {
	s := &Server{
		engine:   e,
		log:      zerolog.Nop(),
		defaultK: 5,
		maxK:     50,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = prometheus.NewRegistry()
	s.metrics = NewMetrics(s.registry)
	return s
}

// SetReady 标记模型已完成训练，就绪探针开始返回 200。
func (s *Server) SetReady(ready bool) { s.ready.Store(ready) }

// Handler 构建路由。中间件顺序：请求 ID -> 访问日志 -> panic 恢复。
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.log))
	r.Use(recoverer(s.log))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/api/recommend", s.handleRecommend)
	r.Post("/api/recommend", s.handleRecommend)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recommendRequest 是 POST body 的参数形式；GET 用同名 query 参数。
type recommendRequest struct {
	UserID *int64 `json:"user_id"`
	K      *int   `json:"k"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "model not ready"})
		return
	}

	userID, k, err := s.parseParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx := r.Context()
	cacheKey := fmt.Sprintf("rec:%d:%d", userID, k)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			s.metrics.CacheHit.WithLabelValues("hit").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
		s.metrics.CacheHit.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	result := s.engine.Recommend(ctx, userID, k)
	method := string(result.Method)
	s.metrics.Requests.WithLabelValues(method).Inc()
	s.metrics.Latency.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if result.Method == core.MethodError {
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "encode result"})
		return
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, body, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("key", cacheKey).Msg("cache set failed")
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// parseParams 解析 user_id 与 k：GET 从 query，POST 从 JSON body。
// user_id 必填整数；k 可选，缺省 defaultK，必须落在 [1, maxK]。
func (s *Server) parseParams(r *http.Request) (int64, int, error) {
	var userID int64
	k := s.defaultK

	switch r.Method {
	case http.MethodPost:
		var req recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return 0, 0, fmt.Errorf("invalid JSON body: %w", err)
		}
		if req.UserID == nil {
			return 0, 0, fmt.Errorf("user_id is required")
		}
		userID = *req.UserID
		if req.K != nil {
			k = *req.K
		}
	default:
		raw := r.URL.Query().Get("user_id")
		if raw == "" {
			return 0, 0, fmt.Errorf("user_id is required")
		}
		var err error
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("user_id must be an integer, got %q", raw)
		}
		if rawK := r.URL.Query().Get("k"); rawK != "" {
			k, err = strconv.Atoi(rawK)
			if err != nil {
				return 0, 0, fmt.Errorf("k must be an integer, got %q", rawK)
			}
		}
	}

	if k < 1 || k > s.maxK {
		return 0, 0, fmt.Errorf("k must be in [1, %d], got %d", s.maxK, k)
	}
	return userID, k, nil
}

// Serve 启动 HTTP 服务并在 ctx 取消时优雅退出。
func (s *Server) Serve(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
