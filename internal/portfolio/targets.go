package portfolio

import "strconv"

// defaultRiskLevel is used when the risk tolerance answer cannot be parsed or
// falls outside 1-5.
const defaultRiskLevel = 3

// targetAllocations is the strategic asset-allocation table by risk band.
// Each row sums to exactly 100.
var targetAllocations = map[int]map[Bucket]float64{
	1: {BucketUSEquity: 20, BucketIntlEquity: 5, BucketEmerging: 0, BucketBonds: 55, BucketRealEstate: 5, BucketCash: 15},
	2: {BucketUSEquity: 30, BucketIntlEquity: 10, BucketEmerging: 0, BucketBonds: 45, BucketRealEstate: 5, BucketCash: 10},
	3: {BucketUSEquity: 40, BucketIntlEquity: 12, BucketEmerging: 3, BucketBonds: 35, BucketRealEstate: 5, BucketCash: 5},
	4: {BucketUSEquity: 50, BucketIntlEquity: 15, BucketEmerging: 5, BucketBonds: 25, BucketRealEstate: 5, BucketCash: 0},
	5: {BucketUSEquity: 60, BucketIntlEquity: 20, BucketEmerging: 10, BucketBonds: 5, BucketRealEstate: 5, BucketCash: 0},
}

// ParseRiskLevel derives an integer risk level from a questionnaire answer
// such as "3 - Moderate". The leading character is taken as the level when
// numeric; anything else defaults to 3.
func ParseRiskLevel(riskTolerance string) int {
	if riskTolerance == "" {
		return defaultRiskLevel
	}

	level, err := strconv.Atoi(riskTolerance[:1])
	if err != nil {
		return defaultRiskLevel
	}

	return level
}

// TargetAllocation returns the target bucket percentages for a risk level.
// Levels outside 1-5 fall back to the moderate row.
func TargetAllocation(riskLevel int) map[Bucket]float64 {
	row, ok := targetAllocations[riskLevel]
	if !ok {
		row = targetAllocations[defaultRiskLevel]
	}

	// Copy so callers cannot mutate the table.
	target := make(map[Bucket]float64, len(row))
	for bucket, pct := range row {
		target[bucket] = pct
	}
	return target
}
