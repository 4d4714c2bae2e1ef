package lists

type AddItemRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Category string `json:"category" binding:"omitempty,max=100"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1,max=999"`
}

type UpdateItemRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=200"`
	Category  *string `json:"category" binding:"omitempty,max=100"`
	Quantity  *int    `json:"quantity" binding:"omitempty,min=1,max=999"`
	Purchased *bool   `json:"purchased"`
}

type AccessByPinRequest struct {
	ListID string `json:"list_id" binding:"required,uuid"`
	Pin    string `json:"pin" binding:"required,len=6,numeric"`
}
