package taps

type IdentifyRequest struct {
	AnonVisitorID string `json:"anon_visitor_id" binding:"required,min=8,max=64,anonid"`
	BatchSlug     string `json:"batch_slug" binding:"omitempty,max=100"`
	TagPublicUUID string `json:"tag_public_uuid" binding:"omitempty,uuid"`
}
