package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis response cache in front of the /posts
// reads.  Responses for Methods are stored for TTL under Prefix; every
// successful write purges the prefix.  Bodies larger than MaxBodyBytes are
// served but not stored.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

// parseMethods turns "get, head" into {GET, HEAD}.
func parseMethods(s string) map[string]bool {
	methods := make(map[string]bool)
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		methods[strings.ToUpper(f)] = true
	}
	return methods
}
