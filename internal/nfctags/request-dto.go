package nfctags

type CreateTagRequest struct {
	BatchID string `json:"batch_id" binding:"required,uuid"`
	Label   string `json:"label" binding:"max=100"`
	Count   int    `json:"count" binding:"omitempty,min=1,max=500"` // batch-create; defaults to 1
}

type UpdateTagRequest struct {
	Label  *string `json:"label" binding:"omitempty,max=100"`
	Status *string `json:"status" binding:"omitempty,oneof=ACTIVE DISABLED"`
}

type LinkUserRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type TagListQuery struct {
	Page    int    `form:"page" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=100"`
	BatchID string `form:"batch_id" binding:"omitempty,uuid"`
	Status  string `form:"status" binding:"omitempty,oneof=ACTIVE DISABLED"`
}
