// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BackendBaseURL is the base URL of the matching backend.
	BackendBaseURL string `koanf:"backend_base_url"`

	// BackendTimeoutMS bounds one backend round trip.
	BackendTimeoutMS int `koanf:"backend_timeout_ms"`

	// AuthToken is the bearer token attached to backend requests.
	AuthToken string `koanf:"auth_token"`

	// CommitThresholdPX is the horizontal displacement that commits a drag.
	CommitThresholdPX float64 `koanf:"commit_threshold_px"`

	// FetchLimit is the number of candidate cards requested per refill.
	FetchLimit int `koanf:"fetch_limit"`

	// LowWater triggers a background refill when the deck shrinks to it.
	LowWater int `koanf:"low_water"`

	// QueueSize bounds the in-memory decision queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of swipe submitter workers.
	WorkerCount int `koanf:"worker_count"`

	// SeenCacheSize caps the per-session seen-card cache.
	SeenCacheSize int `koanf:"seen_cache_size"`

	// BannerMS is how long a match banner stays up.
	BannerMS int `koanf:"banner_ms"`

	// ModalDelayMS defers the match modal while a banner is visible.
	ModalDelayMS int `koanf:"modal_delay_ms"`

	// MatchesCacheTTLMS bounds staleness of the cached match list.
	MatchesCacheTTLMS int `koanf:"matches_cache_ttl_ms"`

	// RetryAttempts and RetryDelayMS shape retries on idempotent reads.
	RetryAttempts int `koanf:"retry_attempts"`
	RetryDelayMS  int `koanf:"retry_delay_ms"`

	// BreakerThreshold and BreakerTimeoutMS configure the backend circuit
	// breaker.
	BreakerThreshold int `koanf:"breaker_threshold"`
	BreakerTimeoutMS int `koanf:"breaker_timeout_ms"`
}

// New creates a Config with defaults. File and environment overrides are
// applied by Load.
func New() *Config {
	c := &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		BackendBaseURL:    "http://localhost:8000",
		BackendTimeoutMS:  10_000,
		CommitThresholdPX: 120,
		FetchLimit:        10,
		LowWater:          3,
		QueueSize:         256,
		WorkerCount:       workerDefault(),
		SeenCacheSize:     2000,
		BannerMS:          4000,
		ModalDelayMS:      1000,
		MatchesCacheTTLMS: 30_000,
		RetryAttempts:     3,
		RetryDelayMS:      200,
		BreakerThreshold:  5,
		BreakerTimeoutMS:  30_000,
	}
	return c
}

func workerDefault() int {
	if n := runtime.NumCPU(); n < 4 {
		return n
	}
	return 4
}
