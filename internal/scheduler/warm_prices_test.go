package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubSource struct {
	tickers []string
	err     error
}

func (s *stubSource) ActiveTickers(_ context.Context) ([]string, error) {
	return s.tickers, s.err
}

type stubWarmer struct {
	warmed [][]string
	err    error
}

func (s *stubWarmer) Warm(_ context.Context, tickers []string) error {
	s.warmed = append(s.warmed, tickers)
	return s.err
}

func TestWarmPricesJob(t *testing.T) {
	t.Run("warms the active tickers", func(t *testing.T) {
		warmer := &stubWarmer{}
		job := NewWarmPricesJob(&stubSource{tickers: []string{"SPY", "BND"}}, warmer, time.Minute)

		if err := job.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(warmer.warmed) != 1 || len(warmer.warmed[0]) != 2 {
			t.Errorf("warmed = %v, want one batch of two tickers", warmer.warmed)
		}
	})

	t.Run("skips the warm call when nothing is held", func(t *testing.T) {
		warmer := &stubWarmer{}
		job := NewWarmPricesJob(&stubSource{}, warmer, time.Minute)

		if err := job.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(warmer.warmed) != 0 {
			t.Errorf("warmed = %v, want no calls", warmer.warmed)
		}
	})

	t.Run("propagates source failures", func(t *testing.T) {
		job := NewWarmPricesJob(&stubSource{err: errors.New("db closed")}, &stubWarmer{}, time.Minute)

		if err := job.Run(); err == nil {
			t.Error("expected an error")
		}
	})
}
