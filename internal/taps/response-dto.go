package taps

type IdentifyResponse struct {
	VisitorID      string  `json:"visitor_id"`
	ClaimedUserID  *string `json:"claimed_user_id"`
	TapCount       int64   `json:"tap_count"`
	EventsRelinked int64   `json:"events_relinked"`
}
