package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SearchCfg tunes the hybrid retrieval paths.
type SearchCfg struct {
	// ResultLimit caps the merged candidate list. Fewer results means a
	// faster response for the entry screen.
	ResultLimit int `yaml:"result_limit" json:"result_limit"`
	// SimilarityThreshold is the minimum trigram score on the fuzzy path.
	// Lower surfaces more candidates at higher scan cost.
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`
	// ScanFactor bounds the fuzzy candidate fetch at limit*factor docs.
	ScanFactor int `yaml:"scan_factor" json:"scan_factor"`
	// MinQueryLength short-circuits sub-fragment queries before storage.
	MinQueryLength int `yaml:"min_query_length" json:"min_query_length"`
	// LookupTimeoutMs caps each individual registry query.
	LookupTimeoutMs int `yaml:"lookup_timeout_ms" json:"lookup_timeout_ms"`
}

// CacheCfg tunes the search result cache.
type CacheCfg struct {
	L1Size   int `yaml:"l1_size" json:"l1_size"`
	TTLHours int `yaml:"ttl_hours" json:"ttl_hours"`
}

// StatsCfg configures the progress aggregation.
type StatsCfg struct {
	// HomeCity is the registered-city prefix counted as "verified"
	// residency for the petition.
	HomeCity string `yaml:"home_city" json:"home_city"`
}

// AppCfg is the service configuration, loaded from YAML with env
// overrides for the deployment-specific values.
type AppCfg struct {
	Search SearchCfg `yaml:"search" json:"search"`
	Cache  CacheCfg  `yaml:"cache" json:"cache"`
	Stats  StatsCfg  `yaml:"stats" json:"stats"`
}

var C AppCfg

// Load reads the config file into C and applies env overrides. Missing
// values fall back to defaults matched to a ~500K row registry.
func Load(path string) error {
	setDefaults()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults only; env overrides still apply.
			applyEnv()
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return err
	}
	applyEnv()
	return nil
}

func setDefaults() {
	C = AppCfg{
		Search: SearchCfg{
			ResultLimit:         100,
			SimilarityThreshold: 0.2,
			ScanFactor:          10,
			MinQueryLength:      3,
			LookupTimeoutMs:     2000,
		},
		Cache: CacheCfg{
			L1Size:   10000,
			TTLHours: 24,
		},
		Stats: StatsCfg{
			HomeCity: "COLUMBUS",
		},
	}
}

func applyEnv() {
	if v := os.Getenv("SEARCH_RESULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			C.Search.ResultLimit = n
		}
	}
	if v := os.Getenv("SEARCH_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			C.Search.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("STATS_HOME_CITY"); v != "" {
		C.Stats.HomeCity = v
	}
}

// LookupTimeout returns the per-lookup bound as a duration.
func (c SearchCfg) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutMs) * time.Millisecond
}

// RequestTimeout bounds one HTTP request end to end, covering both
// lookups plus merge.
func RequestTimeout() time.Duration { return 1500 * time.Millisecond }
