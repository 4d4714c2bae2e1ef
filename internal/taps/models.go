package taps

import (
	"time"

	"github.com/google/uuid"

	"taplist/internal/fingerprint"
)

// LinkMethod records which attribution signal won when a tap event was
// linked to a user.
type LinkMethod string

const (
	LinkMethodTagLinked        LinkMethod = "tag_linked"
	LinkMethodSession          LinkMethod = "session"
	LinkMethodAnonVisitorID    LinkMethod = "anon_visitor_id"
	LinkMethodManualAdminLink  LinkMethod = "manual_admin_link"
	LinkMethodRecentTapSession LinkMethod = "recent_tap_session"
	LinkMethodClaimSignup      LinkMethod = "claim_signup"
	LinkMethodClaimLogin       LinkMethod = "claim_login"
)

// TapEvent is the append-only audit record of one physical scan. Rows are
// created once and updated at most once, to fill in the linkage fields
// (visitor_id, user_id, linked_at, link_method); nothing else ever mutates
// them and they are never deleted.
type TapEvent struct {
	ID             uuid.UUID              `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TagID          uuid.UUID              `json:"tag_id" gorm:"type:uuid;not null;index"`
	BatchID        uuid.UUID              `json:"batch_id" gorm:"type:uuid;not null;index"`
	OccurredAt     time.Time              `json:"occurred_at" gorm:"not null;index"`
	IPHash         string                 `json:"-" gorm:"size:64;index"`
	UserAgent      string                 `json:"user_agent" gorm:"size:512"`
	AcceptLanguage string                 `json:"accept_language" gorm:"size:128"`
	Referer        string                 `json:"referer" gorm:"size:512"`
	DeviceHint     fingerprint.DeviceHint `json:"device_hint" gorm:"size:10;not null"`
	AnonVisitorID  *string                `json:"anon_visitor_id" gorm:"size:64;index"`

	IsDuplicate   bool       `json:"is_duplicate" gorm:"not null;default:false"`
	DuplicateOfID *uuid.UUID `json:"duplicate_of_id" gorm:"type:uuid"`

	VisitorID        *uuid.UUID  `json:"visitor_id" gorm:"type:uuid"`
	UserID           *uuid.UUID  `json:"user_id" gorm:"type:uuid;index"`
	LinkedAt         *time.Time  `json:"linked_at"`
	LinkMethod       *LinkMethod `json:"link_method" gorm:"size:30"`
	TapperHadSession bool        `json:"tapper_had_session" gorm:"not null;default:false"`
	SessionHint      *string     `json:"-" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// IsLinked reports whether attribution already succeeded for this event.
func (e *TapEvent) IsLinked() bool {
	return e.UserID != nil
}

// TableName specifies the table name for GORM
func (TapEvent) TableName() string {
	return "tap_events"
}
