package lists

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Merge policy, applied when a claim moves a visitor's anonymous list into a
// user account that already has one:
//   - union of items by name, nothing is ever dropped
//   - on a name collision the user's row survives; quantity becomes the
//     larger of the two, a purchase recorded on either side sticks, and an
//     empty category is filled from the visitor's row
//   - the anonymous list row is deleted once empty
//
// When the user has no list yet, the anonymous list is re-owned wholesale.
//
// MergeVisitorListIntoUser runs inside the caller's transaction so the claim
// engine can commit the ownership flip and the merge together.
func MergeVisitorListIntoUser(tx *gorm.DB, visitorID, userID uuid.UUID) (bool, error) {
	var anonList List
	err := tx.Preload("Items").Where("visitor_id = ?", visitorID).First(&anonList).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to load visitor list: %w", err)
	}

	var userList List
	err = tx.Preload("Items").Where("user_id = ?", userID).First(&userList).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return false, fmt.Errorf("failed to load user list: %w", err)
		}

		// No user list yet: hand the whole anonymous list over.
		err = tx.Model(&List{}).Where("id = ?", anonList.ID).
			Updates(map[string]interface{}{
				"visitor_id": nil,
				"user_id":    userID,
			}).Error
		if err != nil {
			return false, fmt.Errorf("failed to transfer list ownership: %w", err)
		}
		return true, nil
	}

	userItems := make(map[string]ListItem, len(userList.Items))
	for _, item := range userList.Items {
		userItems[item.Name] = item
	}

	for _, anonItem := range anonList.Items {
		existing, collision := userItems[anonItem.Name]
		if !collision {
			err = tx.Model(&ListItem{}).Where("id = ?", anonItem.ID).
				Update("list_id", userList.ID).Error
			if err != nil {
				return false, fmt.Errorf("failed to move list item: %w", err)
			}
			continue
		}

		merged := mergedItem(existing, anonItem)
		updates := map[string]interface{}{
			"category":  merged.Category,
			"quantity":  merged.Quantity,
			"purchased": merged.Purchased,
		}
		if merged.PurchasedAt != nil {
			updates["purchased_at"] = *merged.PurchasedAt
		}
		if err := tx.Model(&ListItem{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return false, fmt.Errorf("failed to merge list item: %w", err)
		}
		if err := tx.Where("id = ?", anonItem.ID).Delete(&ListItem{}).Error; err != nil {
			return false, fmt.Errorf("failed to delete merged item: %w", err)
		}
	}

	if err := tx.Where("id = ?", anonList.ID).Delete(&List{}).Error; err != nil {
		return false, fmt.Errorf("failed to delete visitor list: %w", err)
	}

	return true, nil
}

// mergedItem resolves a name collision between the user's row and the
// visitor's row. The user's row is the base; quantity takes the max and a
// purchase on either side survives.
func mergedItem(user, anon ListItem) ListItem {
	merged := user
	if merged.Category == "" {
		merged.Category = anon.Category
	}
	if anon.Quantity > merged.Quantity {
		merged.Quantity = anon.Quantity
	}
	if anon.Purchased && !merged.Purchased {
		merged.Purchased = true
		merged.PurchasedAt = anon.PurchasedAt
	}
	return merged
}
