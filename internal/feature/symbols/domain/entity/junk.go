package entity

import "strings"

// Tiingo sometimes labels preferreds and warrants as ETFs, so these are rejected for every asset type.
var obviousJunkSuffixes = []string{"-P", "-W", "-U", "-R", "-WT", "-UN"}

var knownJunk = map[string]struct{}{
	"WPAU": {}, "VITU": {}, "TTOU": {}, "TSYU": {}, "TBAU": {}, "RMGU": {},
	"PICU": {}, "OACU": {}, "MBDU": {}, "LTNU": {}, "LCPU": {}, "JWSU": {},
	"FTWU": {}, "FMGU": {}, "ETAU": {}, "DGCU": {}, "BNNR": {}, "BMYR": {},
}

// warrants, units, rights, preferreds, special classes
var junkFragments = []string{
	"-W", "-WT", "-WS", "-U", "-UN", ".U", "/WS", "/U", ".WS", "-R", ".RT",
	"-P-", ".P",
	"-CL",
}

// IsCommon reports whether the listing is a tradable common instrument
// rather than a warrant, unit, right, preferred share or mutual fund.
func (l Listing) IsCommon() bool {
	t := NormalizeTicker(l.Ticker)
	if t == "" {
		return false
	}

	for _, s := range obviousJunkSuffixes {
		if strings.HasSuffix(t, s) {
			return false
		}
	}

	if strings.EqualFold(strings.TrimSpace(l.RawAssetType), "mutual fund") {
		return false
	}
	switch l.AssetType {
	case AssetETF, AssetIndex, AssetFund:
		return true
	}

	if _, ok := knownJunk[t]; ok {
		return false
	}

	for _, frag := range junkFragments {
		if !strings.Contains(t, frag) {
			continue
		}
		if frag == "-P-" && strings.HasPrefix(t, "P-") {
			continue
		}
		return false
	}

	if len(t) > 4 && strings.ContainsAny(t[len(t)-1:], "UWR") {
		return false
	}

	// preferred series: ABC-A .. ABC-Z
	if n := len(t); n >= 3 && t[n-2] == '-' && t[n-1] >= 'A' && t[n-1] <= 'Z' {
		return false
	}

	if isNumeric(strings.NewReplacer("-", "", ".", "").Replace(t)) {
		return false
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
