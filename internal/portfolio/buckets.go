// Package portfolio implements the advisory core: position normalization,
// asset-class bucket classification, valuation, target allocations, drift
// measurement, and trade-delta generation.
package portfolio

import "strings"

// Bucket is one of the six canonical asset-class categories used for
// allocation targets.
type Bucket string

// The canonical buckets, in report display order.
const (
	BucketUSEquity     Bucket = "US Equity"
	BucketIntlEquity   Bucket = "International Equity"
	BucketEmerging     Bucket = "Emerging Markets"
	BucketBonds        Bucket = "Bonds"
	BucketRealEstate   Bucket = "Real Estate"
	BucketCash         Bucket = "Cash"
)

// Buckets lists all canonical buckets in display order.
var Buckets = []Bucket{
	BucketUSEquity,
	BucketIntlEquity,
	BucketEmerging,
	BucketBonds,
	BucketRealEstate,
	BucketCash,
}

// knownAssetClasses maps well-known labels straight to their bucket, so the
// common questionnaire choices never fall through to keyword guessing. Keys
// are lowercase.
var knownAssetClasses = map[string]Bucket{
	"us equity":            BucketUSEquity,
	"us stocks":            BucketUSEquity,
	"international equity": BucketIntlEquity,
	"international stocks": BucketIntlEquity,
	"emerging markets":     BucketEmerging,
	"bonds":                BucketBonds,
	"fixed income":         BucketBonds,
	"real estate":          BucketRealEstate,
	"reits":                BucketRealEstate,
	"cash":                 BucketCash,
}

// Classify maps a free-text asset class label to a canonical bucket. Known
// labels resolve through an exact table; anything else falls back to
// case-insensitive substring rules for freeform legacy labels, where the
// first matching rule wins and anything unmatched defaults to US Equity.
// Labels containing "balanced" are the caller's concern (see IsBalanced): a
// balanced class is split 60/40 across US Equity and Bonds rather than
// classified into a single bucket.
func Classify(assetClass string) Bucket {
	label := strings.ToLower(strings.TrimSpace(assetClass))

	if bucket, ok := knownAssetClasses[label]; ok {
		return bucket
	}

	switch {
	case strings.Contains(label, "bond") || strings.Contains(label, "fixed income"):
		return BucketBonds
	case strings.Contains(label, "real estate") || strings.Contains(label, "reit"):
		return BucketRealEstate
	case strings.Contains(label, "emerging"):
		return BucketEmerging
	case strings.Contains(label, "international") || strings.Contains(label, "developed"):
		return BucketIntlEquity
	case strings.Contains(label, "cash") || strings.Contains(label, "usd"):
		return BucketCash
	default:
		return BucketUSEquity
	}
}

// IsBalanced reports whether an asset class label names a blended 60/40
// allocation.
func IsBalanced(assetClass string) bool {
	return strings.Contains(strings.ToLower(assetClass), "balanced")
}

// Balanced split ratios.
const (
	balancedEquityShare = 0.6
	balancedBondShare   = 0.4
)
