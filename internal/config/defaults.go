package config

import "time"

// DefaultPath is where the server looks for its config file.
const DefaultPath = "/usr/local/etc/snfront/config.yaml"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "snfront"
	}
	if cfg.Search.AutocompleteRate > 0 && cfg.Search.AutocompleteBurst == 0 {
		cfg.Search.AutocompleteBurst = 5
	}
	if cfg.Search.SuggestCacheTTL == 0 {
		cfg.Search.SuggestCacheTTL = 5 * time.Minute
	}
	if cfg.Search.ChatCacheTTL == 0 {
		cfg.Search.ChatCacheTTL = 10 * time.Minute
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 10000
	}
}
