package constants

import (
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values for the Taplist application
// Pattern: taplist:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG   = 24 * time.Hour // 24 hours - for batch/tag catalogues
	TTL_STATIC_MEDIUM = 12 * time.Hour // 12 hours - for user profiles
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // 10 minutes - for analytics overviews
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // 5 minutes - for per-tag analytics
	TTL_DYNAMIC_QUICK  = 2 * time.Minute  // 2 minutes - for daily tap series
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "taplist"
)

// ================== ANALYTICS MODULE ==================

const (
	CACHE_KEY_ANALYTICS_OVERVIEW = CACHE_PREFIX + ":analytics:overview"
	CACHE_KEY_ANALYTICS_BATCHES  = CACHE_PREFIX + ":analytics:batches"
	CACHE_KEY_ANALYTICS_TAGS     = CACHE_PREFIX + ":analytics:tags"     // + :batch:X
	CACHE_KEY_ANALYTICS_DEVICES  = CACHE_PREFIX + ":analytics:devices"
	CACHE_KEY_ANALYTICS_DAILY    = CACHE_PREFIX + ":analytics:daily"    // + :days:N
)

// ================== LISTS MODULE ==================

const (
	// PIN attempt throttle: counter-with-expiry keyed by client IP.
	// Shared across instances, replacing the old per-process attempt map.
	THROTTLE_KEY_PIN_ATTEMPTS = CACHE_PREFIX + ":lists:pin_attempts:ip:" // + client-ip
)
