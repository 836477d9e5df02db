// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that talk to the
// remote search service.
type HTTPConfig struct {
	// Timeout is the per-request ceiling; a stuck request must never block
	// the pipeline past it.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bibharvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retry attempts for a single page fetch.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestsPerSecond caps the request rate across all workers.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// DiscoveryConfig holds settings for the publication discovery stage.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// ConferenceStartYear is the first year walked for conferences (default 1936).
	ConferenceStartYear int `json:"conference_start_year" yaml:"conference_start_year"`

	// JournalStartYear is the first year walked for journals (default 1884).
	JournalStartYear int `json:"journal_start_year" yaml:"journal_start_year"`

	// MaxEmptyYears is the number of consecutive zero-publication years
	// after which a category's walk terminates (default 2). Series with
	// legitimate longer gaps need a larger value.
	MaxEmptyYears int `json:"max_empty_years" yaml:"max_empty_years"`

	// DataDir is the dataset root (contains publicationInfo/, articleInfo/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// HarvestConfig holds settings for the article harvesting stage.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// StartYear is the first year harvested for every publication; a
	// publication's own start year takes precedence when later.
	StartYear int `json:"start_year" yaml:"start_year"`

	// EndYear bounds the walk, exclusive. Zero means current year + 1.
	EndYear int `json:"end_year" yaml:"end_year"`

	// Workers is the number of concurrent identifier workers (default 1).
	// Years within one identifier are always sequential.
	Workers int `json:"workers" yaml:"workers"`

	// PageSize is the rows-per-page requested from the search client
	// (default 100, provider-imposed). Pagination itself follows the
	// records actually returned, not this value.
	PageSize int `json:"page_size" yaml:"page_size"`

	// DataDir is the dataset root (contains publicationInfo/, articleInfo/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// StateDir holds the query-state database and run reports (default "state").
	StateDir string `json:"state_dir" yaml:"state_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Harvest   HarvestConfig   `json:"harvest" yaml:"harvest"`
}
