package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Hedredo/oc-p10/core"
)

// stubStrategy 可编程行为，用于验证 Engine 的兜底语义。
type stubStrategy struct {
	fitErr    error
	recommend func(ctx context.Context, userID int64, k int) (*core.Result, error)
}

func (s *stubStrategy) Name() string                { return "stub" }
func (s *stubStrategy) Fit(ctx context.Context) error { return s.fitErr }
func (s *stubStrategy) Recommend(ctx context.Context, userID int64, k int) (*core.Result, error) {
	return s.recommend(ctx, userID, k)
}

func TestEngineFitPropagatesError(t *testing.T) {
	e := New(&stubStrategy{fitErr: errors.New("boom")}, zerolog.Nop())
	err := e.Fit(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Fit() error = %v, want wrapped boom", err)
	}
}

func TestEngineRecommendInvalidK(t *testing.T) {
	e := New(&stubStrategy{recommend: func(ctx context.Context, userID int64, k int) (*core.Result, error) {
		t.Fatal("strategy must not be called for invalid k")
		return nil, nil
	}}, zerolog.Nop())

	for _, k := range []int{0, -3} {
		res := e.Recommend(context.Background(), 42, k)
		if res.Method != core.MethodError {
			t.Errorf("Recommend(k=%d).Method = %q, want %q", k, res.Method, core.MethodError)
		}
		if !strings.Contains(res.Error, "positive integer") {
			t.Errorf("Recommend(k=%d).Error = %q, want mention of positive integer", k, res.Error)
		}
		if res.UserID != 42 || len(res.Recommendations) != 0 || res.Count != 0 {
			t.Errorf("error result malformed: %+v", res)
		}
	}
}

func TestEngineRecommendConvertsStrategyError(t *testing.T) {
	e := New(&stubStrategy{recommend: func(ctx context.Context, userID int64, k int) (*core.Result, error) {
		return nil, errors.New("scoring exploded")
	}}, zerolog.Nop())

	res := e.Recommend(context.Background(), 7, 5)
	if res.Method != core.MethodError {
		t.Fatalf("Method = %q, want %q", res.Method, core.MethodError)
	}
	if !strings.Contains(res.Error, "scoring exploded") {
		t.Errorf("Error = %q, want strategy message", res.Error)
	}
}

func TestEngineRecommendRecoversPanic(t *testing.T) {
	e := New(&stubStrategy{recommend: func(ctx context.Context, userID int64, k int) (*core.Result, error) {
		panic("index out of range")
	}}, zerolog.Nop())

	res := e.Recommend(context.Background(), 7, 5)
	if res.Method != core.MethodError {
		t.Fatalf("Method = %q, want %q", res.Method, core.MethodError)
	}
	if !strings.Contains(res.Error, "index out of range") {
		t.Errorf("Error = %q, want panic payload", res.Error)
	}
}

func TestEngineRecommendPassesThroughResult(t *testing.T) {
	want := core.NewResult(7, []int64{1, 2}, core.MethodPopularity)
	e := New(&stubStrategy{recommend: func(ctx context.Context, userID int64, k int) (*core.Result, error) {
		return want, nil
	}}, zerolog.Nop())

	res := e.Recommend(context.Background(), 7, 2)
	if res != want {
		t.Errorf("Recommend() = %+v, want passthrough of strategy result", res)
	}
}
