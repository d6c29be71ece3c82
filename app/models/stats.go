package models

// ProgressStats is the read-only verification progress aggregation over
// all recorded signatures, split on whether the voter's registered city
// matches the configured home city.
type ProgressStats struct {
	Entered             int64   `json:"entered"`
	MatchedHomeCity     int64   `json:"matched_home_city"`
	MatchedOther        int64   `json:"matched_other"`
	AddressOnlyHomeCity int64   `json:"address_only_home_city"`
	AddressOnlyOther    int64   `json:"address_only_other"`
	Unmatched           int64   `json:"unmatched"`
	PercentVerified     float64 `json:"percent_verified"`
	PercentHomeCity     float64 `json:"percent_home_city"`
}
