package nfctags

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(tag *NfcTag) error
	CreateBatch(tags []NfcTag) error
	GetByID(id uuid.UUID) (*NfcTag, error)
	GetByPublicUUID(publicUUID uuid.UUID) (*NfcTag, error)
	Update(id uuid.UUID, updates map[string]interface{}) (*NfcTag, error)
	GetAll(query TagListQuery) ([]NfcTag, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(tag *NfcTag) error {
	return r.db.Create(tag).Error
}

func (r *repository) CreateBatch(tags []NfcTag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.Create(&tags).Error
}

func (r *repository) GetByID(id uuid.UUID) (*NfcTag, error) {
	var tag NfcTag
	err := r.db.Where("id = ?", id).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *repository) GetByPublicUUID(publicUUID uuid.UUID) (*NfcTag, error) {
	var tag NfcTag
	err := r.db.Where("public_uuid = ?", publicUUID).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *repository) Update(id uuid.UUID, updates map[string]interface{}) (*NfcTag, error) {
	var tag NfcTag

	if err := r.db.Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&tag).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := r.db.Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}

	return &tag, nil
}

func (r *repository) GetAll(query TagListQuery) ([]NfcTag, int64, error) {
	var tags []NfcTag
	var totalCount int64

	db := r.db.Model(&NfcTag{})

	if query.BatchID != "" {
		db = db.Where("batch_id = ?", query.BatchID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 25
	}

	offset := (query.Page - 1) * query.Limit

	err := db.Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&tags).Error

	return tags, totalCount, err
}
