package auth

// login request payload. AnonVisitorID, when present, triggers a best-effort
// claim of the client's anonymous tap history after the credentials check.
type LoginRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	AnonVisitorID string `json:"anon_visitor_id,omitempty" validate:"omitempty,min=8,max=64,anonid"`
}

// registration request payload
type RegisterRequest struct {
	FirstName     string `json:"first_name" validate:"required,min=2,max=100"`
	LastName      string `json:"last_name" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	Role          string `json:"role,omitempty"` // Optional, defaults to "user"
	AnonVisitorID string `json:"anon_visitor_id,omitempty" validate:"omitempty,min=8,max=64,anonid"`
}

// represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// represents change password request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// represents landing preference update
type UpdateLandingRequest struct {
	LandingPreference string `json:"landing_preference" validate:"required,max=100"`
}

// represents logout request
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
