package portfolio

import "strings"

// legacyETFRules maps free-text descriptions of existing holdings, as typed
// into the questionnaire, to representative liquid ETFs. Rules are checked in
// order; the first match wins.
var legacyETFRules = []struct {
	keywords []string
	tickers  []string
}{
	{[]string{"s&p 500", "s&p500", "sp500", "s and p"}, []string{"SPY", "VOO", "IVV"}},
	{[]string{"tech"}, []string{"QQQ", "XLK", "VGT"}},
	{[]string{"total market", "total stock"}, []string{"VTI", "ITOT", "SPTM"}},
	{[]string{"emerging"}, []string{"VWO", "IEMG", "SCHE"}},
	{[]string{"international", "developed"}, []string{"VEA", "IEFA", "SCHF"}},
	{[]string{"bond"}, []string{"BND", "AGG", "TLT"}},
	{[]string{"balanced"}, []string{"VTI", "BND", "VXUS"}},
	{[]string{"real estate", "reit"}, []string{"VNQ", "SCHH", "IYR"}},
	{[]string{"mix"}, []string{"VTI", "BND", "VEA", "VWO"}},
}

// defaultLegacyETFs covers descriptions no rule recognizes.
var defaultLegacyETFs = []string{"SPY", "QQQ", "IWM"}

// MapLegacyHoldings maps a free-text holdings description to the ETF tickers
// that best represent it. Always returns at least one ticker.
func MapLegacyHoldings(description string) []string {
	text := strings.ToLower(description)

	for _, rule := range legacyETFRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return append([]string(nil), rule.tickers...)
			}
		}
	}

	return append([]string(nil), defaultLegacyETFs...)
}
