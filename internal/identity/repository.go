package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taplist/internal/lists"
	"taplist/internal/nfctags"
	"taplist/internal/taps"
	"taplist/internal/users"
	"taplist/internal/visitors"
)

// ClaimOutcome reports what a claim actually did.
type ClaimOutcome struct {
	Transition   Transition
	VisitorFound bool
	VisitorID    uuid.UUID
	EventsLinked int64
	ListClaimed  bool
}

// AttachOutcome reports a session-hint attach.
type AttachOutcome struct {
	EventsAttached int64
	EventsLinked   int64
}

// LinkTagOutcome reports an admin manual tag link.
type LinkTagOutcome struct {
	EventsLinked   int64
	VisitorCreated bool
}

type Repository interface {
	// Claim runs the whole claim as one transaction: flip visitor.user_id,
	// bulk-relink the visitor's unattributed events, merge the anonymous
	// list. A crash mid-claim can never leave a visitor claimed with
	// orphaned events.
	Claim(anonVisitorID string, userID uuid.UUID, method taps.LinkMethod) (*ClaimOutcome, error)
	// AttachBySessionHint adopts the most recent events carrying the hint,
	// bounded by window and maxEvents.
	AttachBySessionHint(hint string, visitor *visitors.Visitor, window time.Duration, maxEvents int) (*AttachOutcome, error)
	// LinkTag is the admin override: hard-link the tag, force-link its
	// unattributed taps and make sure the user has a visitor record.
	LinkTag(tagID uuid.UUID, userID uuid.UUID) (*LinkTagOutcome, error)
	UserExists(userID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Claim(anonVisitorID string, userID uuid.UUID, method taps.LinkMethod) (*ClaimOutcome, error) {
	outcome := &ClaimOutcome{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var visitor visitors.Visitor
		err := tx.Where("anon_visitor_id = ?", anonVisitorID).First(&visitor).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				// A user with no prior taps is normal, not an error.
				outcome.Transition = TransitionNoop
				return nil
			}
			return err
		}

		outcome.VisitorFound = true
		outcome.VisitorID = visitor.ID
		outcome.Transition = StateOf(&visitor).Evaluate(userID)

		if outcome.Transition != TransitionClaim {
			return nil
		}

		// The user_id IS NULL guard makes the flip race-safe: a concurrent
		// claim that won the race leaves zero rows affected here.
		res := tx.Model(&visitors.Visitor{}).
			Where("id = ? AND user_id IS NULL", visitor.ID).
			Update("user_id", userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			outcome.Transition = TransitionConflict
			return nil
		}

		now := time.Now().UTC()
		res = tx.Model(&taps.TapEvent{}).
			Where("visitor_id = ? AND user_id IS NULL", visitor.ID).
			Updates(map[string]interface{}{
				"user_id":     userID,
				"linked_at":   now,
				"link_method": method,
			})
		if res.Error != nil {
			return res.Error
		}
		outcome.EventsLinked = res.RowsAffected

		claimed, err := lists.MergeVisitorListIntoUser(tx, visitor.ID, userID)
		if err != nil {
			return err
		}
		outcome.ListClaimed = claimed

		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func (r *repository) AttachBySessionHint(hint string, visitor *visitors.Visitor, window time.Duration, maxEvents int) (*AttachOutcome, error) {
	outcome := &AttachOutcome{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		since := time.Now().UTC().Add(-window)

		var events []taps.TapEvent
		err := tx.
			Where("session_hint = ? AND occurred_at >= ?", hint, since).
			Order("occurred_at DESC").
			Limit(maxEvents).
			Find(&events).Error
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}

		res := tx.Model(&taps.TapEvent{}).
			Where("id IN ? AND visitor_id IS NULL", ids).
			Updates(map[string]interface{}{
				"visitor_id":      visitor.ID,
				"anon_visitor_id": visitor.AnonVisitorID,
			})
		if res.Error != nil {
			return res.Error
		}
		outcome.EventsAttached = res.RowsAffected

		// Already-linked events belong to whoever owns them; only null rows
		// are eligible, which is exactly the claim conflict rule.
		if visitor.UserID != nil {
			now := time.Now().UTC()
			res = tx.Model(&taps.TapEvent{}).
				Where("id IN ? AND user_id IS NULL", ids).
				Updates(map[string]interface{}{
					"user_id":     *visitor.UserID,
					"linked_at":   now,
					"link_method": taps.LinkMethodRecentTapSession,
				})
			if res.Error != nil {
				return res.Error
			}
			outcome.EventsLinked = res.RowsAffected
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func (r *repository) LinkTag(tagID uuid.UUID, userID uuid.UUID) (*LinkTagOutcome, error) {
	outcome := &LinkTagOutcome{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var tag nfctags.NfcTag
		if err := tx.Where("id = ?", tagID).First(&tag).Error; err != nil {
			return err
		}

		if err := tx.Model(&nfctags.NfcTag{}).
			Where("id = ?", tagID).
			Update("linked_user_id", userID).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		res := tx.Model(&taps.TapEvent{}).
			Where("tag_id = ? AND user_id IS NULL", tagID).
			Updates(map[string]interface{}{
				"user_id":     userID,
				"linked_at":   now,
				"link_method": taps.LinkMethodManualAdminLink,
			})
		if res.Error != nil {
			return res.Error
		}
		outcome.EventsLinked = res.RowsAffected

		// The user needs a visitor record so future attribution has a join
		// point, even though they never sent an anonymous id themselves.
		var existing visitors.Visitor
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		visitor := visitors.Visitor{
			AnonVisitorID: uuid.NewString(),
			FirstSeenAt:   now,
			LastSeenAt:    now,
			UserID:        &userID,
		}
		if err := tx.Create(&visitor).Error; err != nil {
			return err
		}
		outcome.VisitorCreated = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func (r *repository) UserExists(userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&users.User{}).Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
