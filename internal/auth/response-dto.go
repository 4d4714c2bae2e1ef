package auth

import "time"

// represents the authentication response. ClaimWarning is set when the
// optional tap-history claim could not complete; authentication itself
// still succeeded.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	ClaimWarning string       `json:"claim_warning,omitempty"`
}

// represents user data in responses (without sensitive info)
type UserResponse struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	LandingPreference string    `json:"landing_preference"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
