package analytics

import "time"

// All analytics exclude duplicate tap rows; counters reflect genuine taps
// only.

// OverviewAnalytics is the headline dashboard block.
type OverviewAnalytics struct {
	TotalTaps        int64   `json:"total_taps"`
	TapsToday        int64   `json:"taps_today"`
	UniqueVisitors   int64   `json:"unique_visitors"`
	ClaimedVisitors  int64   `json:"claimed_visitors"`
	AttributedTaps   int64   `json:"attributed_taps"`
	AttributionRate  float64 `json:"attribution_rate"`
	DuplicatesCaught int64   `json:"duplicates_caught"`
	ActiveTags       int64   `json:"active_tags"`
	TotalBatches     int64   `json:"total_batches"`
}

// BatchAnalytics is one row of the per-batch breakdown.
type BatchAnalytics struct {
	BatchID        string     `json:"batch_id"`
	BatchSlug      string     `json:"batch_slug"`
	BatchName      string     `json:"batch_name"`
	TotalTaps      int64      `json:"total_taps"`
	UniqueVisitors int64      `json:"unique_visitors"`
	AttributedTaps int64      `json:"attributed_taps"`
	LastTapAt      *time.Time `json:"last_tap_at"`
}

// TagAnalytics is one row of the per-tag breakdown.
type TagAnalytics struct {
	TagID          string     `json:"tag_id"`
	PublicUUID     string     `json:"public_uuid"`
	Label          string     `json:"label"`
	Status         string     `json:"status"`
	TotalTaps      int64      `json:"total_taps"`
	UniqueVisitors int64      `json:"unique_visitors"`
	LastTapAt      *time.Time `json:"last_tap_at"`
}

// DeviceBreakdown aggregates taps by derived device hint.
type DeviceBreakdown struct {
	DeviceHint string  `json:"device_hint"`
	Taps       int64   `json:"taps"`
	Share      float64 `json:"share"`
}

// DailyTapStats is one day of the tap time series.
type DailyTapStats struct {
	Date           string `json:"date"`
	Taps           int64  `json:"taps"`
	UniqueVisitors int64  `json:"unique_visitors"`
	SessionTaps    int64  `json:"session_taps"`
}
