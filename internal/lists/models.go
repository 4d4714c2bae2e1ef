package lists

import (
	"time"

	"github.com/google/uuid"
)

// List is one grocery list. Ownership is exclusive: either VisitorID or
// UserID is set, never both. A claim event moves ownership from the visitor
// side to the user side.
type List struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	VisitorID *uuid.UUID `json:"visitor_id" gorm:"type:uuid;uniqueIndex"`
	UserID    *uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:100;not null;default:'My List'"`
	PinHash   *string    `json:"-" gorm:"size:100"`
	Items     []ListItem `json:"items" gorm:"foreignKey:ListID"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// ListItem is one entry on a list. Name is unique per list; merges collapse
// on it.
type ListItem struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ListID      uuid.UUID  `json:"list_id" gorm:"type:uuid;not null;index:idx_list_items_list_name,unique"`
	Name        string     `json:"name" gorm:"size:200;not null;index:idx_list_items_list_name,unique"`
	Category    string     `json:"category" gorm:"size:100"`
	Quantity    int        `json:"quantity" gorm:"not null;default:1"`
	Purchased   bool       `json:"purchased" gorm:"not null;default:false"`
	PurchasedAt *time.Time `json:"purchased_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (l *List) ToResponse() ListResponse {
	items := make([]ListItemResponse, len(l.Items))
	for i, item := range l.Items {
		items[i] = item.ToResponse()
	}
	return ListResponse{
		ID:        l.ID.String(),
		Name:      l.Name,
		HasPin:    l.PinHash != nil,
		Items:     items,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func (i *ListItem) ToResponse() ListItemResponse {
	return ListItemResponse{
		ID:          i.ID.String(),
		Name:        i.Name,
		Category:    i.Category,
		Quantity:    i.Quantity,
		Purchased:   i.Purchased,
		PurchasedAt: i.PurchasedAt,
	}
}

// TableName specifies the table name for GORM
func (List) TableName() string {
	return "lists"
}

// TableName specifies the table name for GORM
func (ListItem) TableName() string {
	return "list_items"
}
