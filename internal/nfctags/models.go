package nfctags

import (
	"time"

	"github.com/google/uuid"
)

// NfcTag is one physical/printable tag. PublicUUID is the identifier baked
// into the tag's URL; it is distinct from the row id so tags can be reprinted
// without leaking database keys.
//
// LinkedUserID, when set, makes every tap on this tag attribute to that user
// regardless of who physically taps it ("this tag belongs to Alice's fridge").
// It takes priority over all other attribution signals.
type NfcTag struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	PublicUUID   uuid.UUID  `json:"public_uuid" gorm:"type:uuid;uniqueIndex;not null"`
	BatchID      uuid.UUID  `json:"batch_id" gorm:"type:uuid;not null;index"`
	Label        string     `json:"label" gorm:"size:100"`
	Status       Status     `json:"status" gorm:"not null;default:'ACTIVE';size:20"`
	LinkedUserID *uuid.UUID `json:"linked_user_id" gorm:"type:uuid"`
	CreatedBy    uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (t *NfcTag) ToResponse() TagResponse {
	resp := TagResponse{
		ID:         t.ID.String(),
		PublicUUID: t.PublicUUID.String(),
		BatchID:    t.BatchID.String(),
		Label:      t.Label,
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if t.LinkedUserID != nil {
		linked := t.LinkedUserID.String()
		resp.LinkedUserID = &linked
	}
	return resp
}

// TableName specifies the table name for GORM
func (NfcTag) TableName() string {
	return "nfc_tags"
}
