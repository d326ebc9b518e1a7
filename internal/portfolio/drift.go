package portfolio

import (
	"math"

	"github.com/advisorhq/portfolio-advisor/internal/apperrors"
)

// driftThreshold is the total absolute drift, in percentage points, at which
// a rebalance is recommended. Anything below it is within acceptable range.
const driftThreshold = 10.0

// BucketDrift compares one bucket's actual weight against its target.
type BucketDrift struct {
	Bucket    Bucket  `json:"bucket"`
	ActualPct float64 `json:"actual_pct"`
	TargetPct float64 `json:"target_pct"`
	Diff      float64 `json:"diff"`
}

// DriftReport is the outcome of comparing a valued portfolio against the
// target allocation for a risk level.
type DriftReport struct {
	RiskLevel     int           `json:"risk_level"`
	TotalValue    float64       `json:"total_value"`
	Buckets       []BucketDrift `json:"buckets"`
	TotalAbsDrift float64       `json:"total_abs_drift"`
	Rebalance     bool          `json:"rebalance"`
}

// AnalyzeDrift measures a valuation against the risk level's target
// allocation. The portfolio must have a positive total value.
func AnalyzeDrift(v Valuation, riskLevel int) (DriftReport, error) {
	if v.Total <= 0 {
		return DriftReport{}, apperrors.ErrZeroPortfolioValue
	}

	target := TargetAllocation(riskLevel)

	report := DriftReport{
		RiskLevel:  riskLevel,
		TotalValue: v.Total,
		Buckets:    make([]BucketDrift, 0, len(Buckets)),
	}

	for _, bucket := range Buckets {
		actual := v.BucketTotals[bucket] / v.Total * 100
		diff := actual - target[bucket]

		report.Buckets = append(report.Buckets, BucketDrift{
			Bucket:    bucket,
			ActualPct: actual,
			TargetPct: target[bucket],
			Diff:      diff,
		})
		report.TotalAbsDrift += math.Abs(diff)
	}

	report.Rebalance = report.TotalAbsDrift >= driftThreshold
	return report, nil
}
