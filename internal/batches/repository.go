package batches

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(batch *TagBatch) error
	GetByID(id uuid.UUID) (*TagBatch, error)
	GetBySlug(slug string) (*TagBatch, error)
	Update(id uuid.UUID, updates map[string]interface{}) (*TagBatch, error)
	GetAll(query BatchListQuery) ([]TagBatch, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(batch *TagBatch) error {
	return r.db.Create(batch).Error
}

func (r *repository) GetByID(id uuid.UUID) (*TagBatch, error) {
	var batch TagBatch
	err := r.db.Where("id = ?", id).First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) GetBySlug(slug string) (*TagBatch, error) {
	var batch TagBatch
	err := r.db.Where("slug = ?", slug).First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) Update(id uuid.UUID, updates map[string]interface{}) (*TagBatch, error) {
	var batch TagBatch

	if err := r.db.Where("id = ?", id).First(&batch).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&batch).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := r.db.Where("id = ?", id).First(&batch).Error; err != nil {
		return nil, err
	}

	return &batch, nil
}

func (r *repository) GetAll(query BatchListQuery) ([]TagBatch, int64, error) {
	var result []TagBatch
	var totalCount int64

	db := r.db.Model(&TagBatch{})

	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	offset := (query.Page - 1) * query.Limit

	err := db.Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&result).Error

	return result, totalCount, err
}
