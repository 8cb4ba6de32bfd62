package config

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Aggregator: AggregatorConfig{
			BaseURL:        "https://www.proquest.com",
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
			TimeoutSeconds: 60,
		},
		Politeness: PolitenessConfig{
			MinDelaySeconds: 5,
			MaxDelaySeconds: 10,
		},
		OutputDir: ".",
	}
}
