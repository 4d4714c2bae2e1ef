package visitors

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpsertParams carries everything a single tap or ping knows about the
// visitor. TagID/BatchID are nil for pings; a non-nil TagID is what makes
// the call count as a genuine tap.
type UpsertParams struct {
	AnonVisitorID string
	TagID         *uuid.UUID
	BatchID       *uuid.UUID
	IPHash        string
	UserAgent     string
}

type Repository interface {
	Upsert(params UpsertParams) (*Visitor, error)
	GetByAnonVisitorID(anonVisitorID string) (*Visitor, error)
	GetByID(id uuid.UUID) (*Visitor, error)
	GetByUserID(userID uuid.UUID) (*Visitor, error)
	SetUserID(visitorID uuid.UUID, userID uuid.UUID) error
	Create(visitor *Visitor) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert creates or refreshes the visitor row for anonVisitorID. The whole
// read-modify-write runs in one transaction so concurrent taps from the same
// visitor cannot lose a tap_count increment.
func (r *repository) Upsert(params UpsertParams) (*Visitor, error) {
	var visitor Visitor

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		err := tx.Where("anon_visitor_id = ?", params.AnonVisitorID).First(&visitor).Error
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}

			visitor = Visitor{
				AnonVisitorID:     params.AnonVisitorID,
				FirstSeenAt:       now,
				LastSeenAt:        now,
				IPHashLastSeen:    params.IPHash,
				UserAgentLastSeen: params.UserAgent,
				LastTagID:         params.TagID,
				LastBatchID:       params.BatchID,
			}
			if params.TagID != nil {
				visitor.TapCount = 1
			}
			return tx.Create(&visitor).Error
		}

		updates := map[string]interface{}{
			"last_seen_at": now,
		}
		if params.IPHash != "" {
			updates["ip_hash_last_seen"] = params.IPHash
		}
		if params.UserAgent != "" {
			updates["user_agent_last_seen"] = params.UserAgent
		}
		if params.TagID != nil {
			updates["tap_count"] = gorm.Expr("tap_count + 1")
			updates["last_tag_id"] = *params.TagID
		}
		if params.BatchID != nil {
			updates["last_batch_id"] = *params.BatchID
		}

		if err := tx.Model(&Visitor{}).Where("id = ?", visitor.ID).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", visitor.ID).First(&visitor).Error
	})
	if err != nil {
		return nil, err
	}

	return &visitor, nil
}

func (r *repository) GetByAnonVisitorID(anonVisitorID string) (*Visitor, error) {
	var visitor Visitor
	err := r.db.Where("anon_visitor_id = ?", anonVisitorID).First(&visitor).Error
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

func (r *repository) GetByID(id uuid.UUID) (*Visitor, error) {
	var visitor Visitor
	err := r.db.Where("id = ?", id).First(&visitor).Error
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

func (r *repository) GetByUserID(userID uuid.UUID) (*Visitor, error) {
	var visitor Visitor
	err := r.db.Where("user_id = ?", userID).First(&visitor).Error
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

func (r *repository) SetUserID(visitorID uuid.UUID, userID uuid.UUID) error {
	return r.db.Model(&Visitor{}).Where("id = ?", visitorID).Update("user_id", userID).Error
}

func (r *repository) Create(visitor *Visitor) error {
	return r.db.Create(visitor).Error
}
