package visitors

import (
	"time"

	"github.com/google/uuid"
)

// Visitor is the durable anonymous identity, keyed by a client-generated
// stable token. UserID is null until the visitor is claimed by an
// authenticated account; once set it transitions to a different user only
// through the conflict-checked claim path.
type Visitor struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	AnonVisitorID     string     `json:"anon_visitor_id" gorm:"size:64;uniqueIndex;not null"`
	FirstSeenAt       time.Time  `json:"first_seen_at" gorm:"not null"`
	LastSeenAt        time.Time  `json:"last_seen_at" gorm:"not null"`
	IPHashLastSeen    string     `json:"-" gorm:"size:64"`
	UserAgentLastSeen string     `json:"-" gorm:"size:512"`
	TapCount          int64      `json:"tap_count" gorm:"not null;default:0"`
	LastTagID         *uuid.UUID `json:"last_tag_id" gorm:"type:uuid"`
	LastBatchID       *uuid.UUID `json:"last_batch_id" gorm:"type:uuid"`
	UserID            *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsClaimed reports whether an authenticated account owns this visitor's
// history.
func (v *Visitor) IsClaimed() bool {
	return v.UserID != nil
}

func (v *Visitor) ToResponse() VisitorResponse {
	resp := VisitorResponse{
		ID:            v.ID.String(),
		AnonVisitorID: v.AnonVisitorID,
		FirstSeenAt:   v.FirstSeenAt,
		LastSeenAt:    v.LastSeenAt,
		TapCount:      v.TapCount,
	}
	if v.UserID != nil {
		claimed := v.UserID.String()
		resp.ClaimedUserID = &claimed
	}
	return resp
}

// TableName specifies the table name for GORM
func (Visitor) TableName() string {
	return "visitors"
}
