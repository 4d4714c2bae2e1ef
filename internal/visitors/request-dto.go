package visitors

type PingRequest struct {
	AnonVisitorID string `json:"anon_visitor_id" binding:"required,min=8,max=64,anonid"`
}
