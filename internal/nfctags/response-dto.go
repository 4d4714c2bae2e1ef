package nfctags

import "time"

type TagResponse struct {
	ID           string    `json:"id"`
	PublicUUID   string    `json:"public_uuid"`
	BatchID      string    `json:"batch_id"`
	Label        string    `json:"label"`
	Status       string    `json:"status"`
	LinkedUserID *string   `json:"linked_user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PaginatedTags struct {
	Tags       []TagResponse `json:"tags"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}
