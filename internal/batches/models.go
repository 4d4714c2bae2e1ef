package batches

import (
	"time"

	"github.com/google/uuid"
)

// TagBatch is a named, sluggable group of physical NFC tags, e.g. one print
// run for a store. Never deleted in normal operation; only name and
// description are mutable after creation.
type TagBatch struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null;size:100"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	Description string    `json:"description" gorm:"size:500"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (b *TagBatch) ToResponse() BatchResponse {
	return BatchResponse{
		ID:          b.ID.String(),
		Slug:        b.Slug,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (TagBatch) TableName() string {
	return "tag_batches"
}
