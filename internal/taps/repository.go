package taps

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(event *TapEvent) error
	GetByID(id uuid.UUID) (*TapEvent, error)
	// FindDuplicate returns the most recent non-duplicate tap on tagID inside
	// the window that matches the same client, or nil when the tap is genuine.
	FindDuplicate(tagID uuid.UUID, anonVisitorID *string, ipHash, userAgent string, window time.Duration) (*TapEvent, error)
	// SetLinkage fills in the one-shot attribution fields. Only rows that are
	// still unlinked are touched; a second call is a no-op.
	SetLinkage(eventID uuid.UUID, userID uuid.UUID, method LinkMethod) error
	SetVisitor(eventID uuid.UUID, visitorID uuid.UUID) error
	// RecentUnattributedByFingerprint returns non-duplicate events with no
	// visitor yet whose IP hash and user agent match, newest first.
	RecentUnattributedByFingerprint(ipHash, userAgent string, window time.Duration, limit int) ([]TapEvent, error)
	AttachVisitor(eventIDs []uuid.UUID, visitorID uuid.UUID, anonVisitorID string) (int64, error)
	LinkEvents(eventIDs []uuid.UUID, userID uuid.UUID, method LinkMethod) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(event *TapEvent) error {
	return r.db.Create(event).Error
}

func (r *repository) GetByID(id uuid.UUID) (*TapEvent, error) {
	var event TapEvent
	err := r.db.Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindDuplicate matches on the anonymous visitor id when the client sent one:
// it survives IP changes on mobile networks. The IP+UA fingerprint is only
// consulted for clients that have not established a persistent id yet; a tap
// that carries an anon id with no anon-id match is genuine, even when an older
// fingerprint-only row would pair up. Only non-duplicate rows are considered
// so duplicate chains always point at the first genuine tap.
func (r *repository) FindDuplicate(tagID uuid.UUID, anonVisitorID *string, ipHash, userAgent string, window time.Duration) (*TapEvent, error) {
	since := time.Now().UTC().Add(-window)

	if anonVisitorID != nil && *anonVisitorID != "" {
		var event TapEvent
		err := r.db.
			Where("tag_id = ? AND is_duplicate = false AND anon_visitor_id = ? AND occurred_at >= ?",
				tagID, *anonVisitorID, since).
			Order("occurred_at DESC").
			First(&event).Error
		if err == nil {
			return &event, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, nil
	}

	if ipHash == "" {
		return nil, nil
	}

	var event TapEvent
	err := r.db.
		Where("tag_id = ? AND is_duplicate = false AND ip_hash = ? AND user_agent = ? AND occurred_at >= ?",
			tagID, ipHash, userAgent, since).
		Order("occurred_at DESC").
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) SetLinkage(eventID uuid.UUID, userID uuid.UUID, method LinkMethod) error {
	now := time.Now().UTC()
	return r.db.Model(&TapEvent{}).
		Where("id = ? AND user_id IS NULL", eventID).
		Updates(map[string]interface{}{
			"user_id":     userID,
			"linked_at":   now,
			"link_method": method,
		}).Error
}

func (r *repository) SetVisitor(eventID uuid.UUID, visitorID uuid.UUID) error {
	return r.db.Model(&TapEvent{}).
		Where("id = ?", eventID).
		Update("visitor_id", visitorID).Error
}

func (r *repository) RecentUnattributedByFingerprint(ipHash, userAgent string, window time.Duration, limit int) ([]TapEvent, error) {
	if ipHash == "" {
		return nil, nil
	}

	since := time.Now().UTC().Add(-window)

	var events []TapEvent
	err := r.db.
		Where("is_duplicate = false AND visitor_id IS NULL AND ip_hash = ? AND user_agent = ? AND occurred_at >= ?",
			ipHash, userAgent, since).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) AttachVisitor(eventIDs []uuid.UUID, visitorID uuid.UUID, anonVisitorID string) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}

	result := r.db.Model(&TapEvent{}).
		Where("id IN ? AND visitor_id IS NULL", eventIDs).
		Updates(map[string]interface{}{
			"visitor_id":      visitorID,
			"anon_visitor_id": anonVisitorID,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) LinkEvents(eventIDs []uuid.UUID, userID uuid.UUID, method LinkMethod) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	result := r.db.Model(&TapEvent{}).
		Where("id IN ? AND user_id IS NULL", eventIDs).
		Updates(map[string]interface{}{
			"user_id":     userID,
			"linked_at":   now,
			"link_method": method,
		})
	return result.RowsAffected, result.Error
}
