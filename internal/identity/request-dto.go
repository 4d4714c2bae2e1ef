package identity

type ClaimRequest struct {
	AnonVisitorID string `json:"anon_visitor_id" binding:"required,min=8,max=64,anonid"`
	Context       string `json:"context" binding:"omitempty,oneof=signup login explicit"`
}

type AttachRequest struct {
	SessionHint   string `json:"session_hint" binding:"required,min=8,max=64"`
	AnonVisitorID string `json:"anon_visitor_id" binding:"omitempty,min=8,max=64,anonid"`
}

type LinkTagRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}
