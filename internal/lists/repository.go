package lists

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(list *List) error
	GetByID(id uuid.UUID) (*List, error)
	GetByVisitorID(visitorID uuid.UUID) (*List, error)
	GetByUserID(userID uuid.UUID) (*List, error)
	AddItem(item *ListItem) error
	GetItem(listID, itemID uuid.UUID) (*ListItem, error)
	GetItemByName(listID uuid.UUID, name string) (*ListItem, error)
	UpdateItem(itemID uuid.UUID, updates map[string]interface{}) error
	DeleteItem(listID, itemID uuid.UUID) error
	SetPinHash(listID uuid.UUID, pinHash string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(list *List) error {
	return r.db.Create(list).Error
}

func (r *repository) GetByID(id uuid.UUID) (*List, error) {
	var list List
	err := r.db.Preload("Items").Where("id = ?", id).First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repository) GetByVisitorID(visitorID uuid.UUID) (*List, error) {
	var list List
	err := r.db.Preload("Items").Where("visitor_id = ?", visitorID).First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repository) GetByUserID(userID uuid.UUID) (*List, error) {
	var list List
	err := r.db.Preload("Items").Where("user_id = ?", userID).First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repository) AddItem(item *ListItem) error {
	return r.db.Create(item).Error
}

func (r *repository) GetItem(listID, itemID uuid.UUID) (*ListItem, error) {
	var item ListItem
	err := r.db.Where("id = ? AND list_id = ?", itemID, listID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetItemByName(listID uuid.UUID, name string) (*ListItem, error) {
	var item ListItem
	err := r.db.Where("list_id = ? AND name = ?", listID, name).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateItem(itemID uuid.UUID, updates map[string]interface{}) error {
	return r.db.Model(&ListItem{}).Where("id = ?", itemID).Updates(updates).Error
}

func (r *repository) DeleteItem(listID, itemID uuid.UUID) error {
	return r.db.Where("id = ? AND list_id = ?", itemID, listID).Delete(&ListItem{}).Error
}

func (r *repository) SetPinHash(listID uuid.UUID, pinHash string) error {
	return r.db.Model(&List{}).Where("id = ?", listID).Update("pin_hash", pinHash).Error
}
