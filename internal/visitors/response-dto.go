package visitors

import "time"

type VisitorResponse struct {
	ID            string    `json:"id"`
	AnonVisitorID string    `json:"anon_visitor_id"`
	FirstSeenAt   time.Time `json:"first_seen_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	TapCount      int64     `json:"tap_count"`
	ClaimedUserID *string   `json:"claimed_user_id"`
}
