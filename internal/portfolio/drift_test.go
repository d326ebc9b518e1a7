package portfolio

import (
	"errors"
	"testing"

	"github.com/advisorhq/portfolio-advisor/internal/apperrors"
)

// valuationWith builds a valuation directly from bucket totals.
func valuationWith(totals map[Bucket]float64) Valuation {
	v := Valuation{BucketTotals: make(map[Bucket]float64, len(Buckets))}
	for _, bucket := range Buckets {
		v.BucketTotals[bucket] = totals[bucket]
		v.Total += totals[bucket]
	}
	return v
}

func TestAnalyzeDrift(t *testing.T) {
	t.Run("moderate portfolio drift", func(t *testing.T) {
		v := valuationWith(map[Bucket]float64{
			BucketUSEquity: 5000,
			BucketBonds:    3000,
			BucketCash:     2000,
		})

		report, err := AnalyzeDrift(v, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantDiffs := map[Bucket]float64{
			BucketUSEquity:   10,
			BucketIntlEquity: -12,
			BucketEmerging:   -3,
			BucketBonds:      -5,
			BucketRealEstate: -5,
			BucketCash:       15,
		}
		for _, bd := range report.Buckets {
			if !almostEqual(bd.Diff, wantDiffs[bd.Bucket]) {
				t.Errorf("%s diff = %v, want %v", bd.Bucket, bd.Diff, wantDiffs[bd.Bucket])
			}
		}

		if !almostEqual(report.TotalAbsDrift, 50) {
			t.Errorf("total abs drift = %v, want 50", report.TotalAbsDrift)
		}
		if !report.Rebalance {
			t.Error("drift of 50 points should recommend a rebalance")
		}
	})

	t.Run("rebalance threshold boundary", func(t *testing.T) {
		tests := []struct {
			name      string
			usEquity  float64
			rebalance bool
		}{
			// Risk 3 targets 40% US equity; shifting weight between US
			// equity and bonds moves drift by twice the shift.
			{"just under threshold", 44.95, false},
			{"exactly at threshold", 45.0, true},
			{"just over threshold", 45.05, true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v := valuationWith(map[Bucket]float64{
					BucketUSEquity:   tt.usEquity * 100,
					BucketIntlEquity: 12 * 100,
					BucketEmerging:   3 * 100,
					BucketBonds:      (75 - tt.usEquity) * 100,
					BucketRealEstate: 5 * 100,
					BucketCash:       5 * 100,
				})

				report, err := AnalyzeDrift(v, 3)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if report.Rebalance != tt.rebalance {
					t.Errorf("drift %v: rebalance = %v, want %v",
						report.TotalAbsDrift, report.Rebalance, tt.rebalance)
				}
			})
		}
	})

	t.Run("perfectly aligned portfolio", func(t *testing.T) {
		v := valuationWith(map[Bucket]float64{
			BucketUSEquity:   4000,
			BucketIntlEquity: 1200,
			BucketEmerging:   300,
			BucketBonds:      3500,
			BucketRealEstate: 500,
			BucketCash:       500,
		})

		report, err := AnalyzeDrift(v, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almostEqual(report.TotalAbsDrift, 0) {
			t.Errorf("total abs drift = %v, want 0", report.TotalAbsDrift)
		}
		if report.Rebalance {
			t.Error("aligned portfolio should not recommend a rebalance")
		}
	})

	t.Run("zero total value", func(t *testing.T) {
		_, err := AnalyzeDrift(valuationWith(nil), 3)
		if !errors.Is(err, apperrors.ErrZeroPortfolioValue) {
			t.Errorf("error = %v, want ErrZeroPortfolioValue", err)
		}
	})
}
