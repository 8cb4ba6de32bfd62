package config

// Config is the full configuration for a download run.
type Config struct {
	Aggregator AggregatorConfig `mapstructure:"aggregator" yaml:"aggregator"`
	Politeness PolitenessConfig `mapstructure:"politeness" yaml:"politeness"`
	Covers     CoversConfig     `mapstructure:"covers" yaml:"covers"`

	// OutputDir is where the final artifact is placed.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// AggregatorConfig describes how to reach the content aggregator.
type AggregatorConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	UserAgent      string `mapstructure:"user_agent" yaml:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// PolitenessConfig bounds the randomized sleep between article fetches.
// The fetcher reads these through the live config, so an operator can
// raise them mid-run when the aggregator starts challenging.
type PolitenessConfig struct {
	MinDelaySeconds float64 `mapstructure:"min_delay_seconds" yaml:"min_delay_seconds"`
	MaxDelaySeconds float64 `mapstructure:"max_delay_seconds" yaml:"max_delay_seconds"`
}

// CoversConfig holds cover image URLs that cannot be derived from the
// issue date.
type CoversConfig struct {
	MITTechnologyReview string `mapstructure:"mit_technology_review" yaml:"mit_technology_review"`
}
