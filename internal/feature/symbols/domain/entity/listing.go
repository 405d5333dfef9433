package entity

// AllSegments marks a universe whose source failed as a whole.
const AllSegments = "*"

// Listing is one entry of a provider's current universe.
type Listing struct {
	Ticker      string
	CompanyName string
	Exchange    string
	AssetType   AssetType
	// RawAssetType is the provider's own label, kept for junk filtering.
	RawAssetType string
	Industry     string
	Sector       string
	Source       string
}

// Universe is the set of listings one provider reported in this run.
// FailedSegments names exchanges that could not be fetched; AllSegments means the whole source failed.
type Universe struct {
	Source         string
	Listings       []Listing
	FailedSegments []string
}

// MergeUniverses combines universes in priority order.
// The first source to report a ticker owns it; later sources only fill fields it left empty,
// so asset type from the primary provider always wins.
func MergeUniverses(universes ...Universe) (map[string]Listing, map[string]struct{}) {
	merged := make(map[string]Listing)
	degraded := make(map[string]struct{})

	for _, u := range universes {
		for _, seg := range u.FailedSegments {
			degraded[seg] = struct{}{}
		}
		for _, l := range u.Listings {
			l.Ticker = NormalizeTicker(l.Ticker)
			if l.Ticker == "" {
				continue
			}
			if l.Source == "" {
				l.Source = u.Source
			}
			cur, ok := merged[l.Ticker]
			if !ok {
				merged[l.Ticker] = l
				continue
			}
			merged[l.Ticker] = fillListing(cur, l)
		}
	}
	return merged, degraded
}

func fillListing(dst, src Listing) Listing {
	if dst.CompanyName == "" {
		dst.CompanyName = src.CompanyName
	}
	if dst.Exchange == "" {
		dst.Exchange = src.Exchange
	}
	if dst.AssetType == "" {
		dst.AssetType = src.AssetType
		dst.RawAssetType = src.RawAssetType
	}
	if dst.Industry == "" {
		dst.Industry = src.Industry
	}
	if dst.Sector == "" {
		dst.Sector = src.Sector
	}
	return dst
}

// IsDegraded reports whether listings on exchange must not be treated as missing this run.
func IsDegraded(degraded map[string]struct{}, exchange string) bool {
	if _, ok := degraded[AllSegments]; ok {
		return true
	}
	_, ok := degraded[exchange]
	return ok
}
