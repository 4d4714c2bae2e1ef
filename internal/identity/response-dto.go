package identity

// Claim statuses surfaced to clients. A conflict is not a status, it is a
// distinct error code; callers must treat it as non-retryable.
const (
	ClaimStatusClaimed        = "claimed"
	ClaimStatusAlreadyClaimed = "already_claimed"
	ClaimStatusNoVisitor      = "no_visitor"
)

type ClaimResponse struct {
	Status       string `json:"status"`
	EventsLinked int64  `json:"events_linked"`
	ListClaimed  bool   `json:"list_claimed"`
}

type AttachResponse struct {
	EventsAttached int64 `json:"events_attached"`
	EventsLinked   int64 `json:"events_linked"`
}

type LinkTagResponse struct {
	TagID          string `json:"tag_id"`
	UserID         string `json:"user_id"`
	EventsLinked   int64  `json:"events_linked"`
	VisitorCreated bool   `json:"visitor_created"`
}
