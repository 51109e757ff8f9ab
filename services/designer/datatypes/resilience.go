// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// PatternKind names a fault-tolerance technique. Patterns are pure
// configuration data; nothing here executes them.
type PatternKind string

const (
	PatternCircuitBreaker PatternKind = "circuit-breaker"
	PatternBulkhead       PatternKind = "bulkhead"
	PatternRetry          PatternKind = "retry"
	PatternTimeout        PatternKind = "timeout"
	PatternRateLimiter    PatternKind = "rate-limiter"
)

// CircuitBreakerSettings configures a circuit-breaker pattern.
type CircuitBreakerSettings struct {
	FailureThreshold int `json:"failureThreshold"`
	SuccessThreshold int `json:"successThreshold"`
	OpenTimeoutMs    int `json:"openTimeoutMs"`
}

// BulkheadSettings configures a bulkhead pattern.
type BulkheadSettings struct {
	MaxConcurrent int `json:"maxConcurrent"`
	MaxQueueDepth int `json:"maxQueueDepth"`
}

// RetrySettings configures a retry pattern.
type RetrySettings struct {
	MaxAttempts  int `json:"maxAttempts"`
	BackoffMs    int `json:"backoffMs"`
	MaxBackoffMs int `json:"maxBackoffMs"`
}

// TimeoutSettings configures a timeout pattern.
type TimeoutSettings struct {
	RequestTimeoutMs int `json:"requestTimeoutMs"`
}

// RateLimiterSettings configures a rate-limiter pattern.
type RateLimiterSettings struct {
	RequestsPerSecond int `json:"requestsPerSecond"`
	Burst             int `json:"burst"`
}

// PatternSettings is a tagged union over the per-kind parameter sets.
// Exactly the field matching ResiliencePattern.Kind is expected to be
// non-nil; the others stay nil and are omitted on the wire. This replaces
// an open numeric key-value map so that parameter presence is checked by
// the type system instead of at runtime.
type PatternSettings struct {
	CircuitBreaker *CircuitBreakerSettings `json:"circuitBreaker,omitempty"`
	Bulkhead       *BulkheadSettings       `json:"bulkhead,omitempty"`
	Retry          *RetrySettings          `json:"retry,omitempty"`
	Timeout        *TimeoutSettings        `json:"timeout,omitempty"`
	RateLimiter    *RateLimiterSettings    `json:"rateLimiter,omitempty"`
}

func (s PatternSettings) clone() PatternSettings {
	out := s
	if s.CircuitBreaker != nil {
		cb := *s.CircuitBreaker
		out.CircuitBreaker = &cb
	}
	if s.Bulkhead != nil {
		b := *s.Bulkhead
		out.Bulkhead = &b
	}
	if s.Retry != nil {
		r := *s.Retry
		out.Retry = &r
	}
	if s.Timeout != nil {
		t := *s.Timeout
		out.Timeout = &t
	}
	if s.RateLimiter != nil {
		rl := *s.RateLimiter
		out.RateLimiter = &rl
	}
	return out
}

// ResiliencePattern is one declared fault-tolerance pattern for a service
// (phase D).
type ResiliencePattern struct {
	ID        string          `json:"id"`
	ServiceID string          `json:"serviceId"`
	Kind      PatternKind     `json:"kind"`
	Enabled   bool            `json:"enabled"`
	Settings  PatternSettings `json:"settings"`
}

// MetricsConfig is the metrics slice of an observability configuration.
type MetricsConfig struct {
	Enabled        bool   `json:"enabled"`
	Endpoint       string `json:"endpoint"`
	ScrapeInterval int    `json:"scrapeInterval"` // seconds
}

// LoggingConfig is the logging slice of an observability configuration.
type LoggingConfig struct {
	Enabled bool   `json:"enabled"`
	Level   string `json:"level"`
	Format  string `json:"format"`
}

// TracingConfig is the tracing slice of an observability configuration.
type TracingConfig struct {
	Enabled      bool    `json:"enabled"`
	SamplingRate float64 `json:"samplingRate"`
	Exporter     string  `json:"exporter"`
}

// ObservabilityConfig declares metrics, logging and tracing posture for
// one service (phase D). The three sub-configs are independent.
type ObservabilityConfig struct {
	ID        string        `json:"id"`
	ServiceID string        `json:"serviceId"`
	Metrics   MetricsConfig `json:"metrics"`
	Logging   LoggingConfig `json:"logging"`
	Tracing   TracingConfig `json:"tracing"`
}
