package lists

import "time"

type ListResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	HasPin    bool               `json:"has_pin"`
	Items     []ListItemResponse `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type ListItemResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category,omitempty"`
	Quantity    int        `json:"quantity"`
	Purchased   bool       `json:"purchased"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
}

type SharePinResponse struct {
	ListID string `json:"list_id"`
	Pin    string `json:"pin"`
}
