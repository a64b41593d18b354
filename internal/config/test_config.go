package config

import "time"

// TestConfig returns a config suitable for testing. Tests must point
// Cache.Root at a temporary directory before handing it to a manager.
func TestConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Root:         "",
			StoreTimeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}
