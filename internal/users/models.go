package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'USER'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`

	// LandingPreference controls where a tap redirect lands for this user:
	// "home", "list", or a stored custom path.
	LandingPreference string `json:"landing_preference" gorm:"default:'home'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleUser), string(RoleAdmin):
		return true
	default:
		return false
	}
}

// IsValidLandingPreference accepts the two named destinations or a custom
// same-origin path. Absolute URLs and protocol-relative paths are rejected
// so a stored preference can never redirect off-site.
func IsValidLandingPreference(pref string) bool {
	switch pref {
	case "home", "list":
		return true
	}
	if pref == "" || pref[0] != '/' {
		return false
	}
	if strings.HasPrefix(pref, "//") || strings.Contains(pref, "://") {
		return false
	}
	return true
}
