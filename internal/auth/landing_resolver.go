package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// LandingResolverAdapter exposes a user's stored landing preference to the
// tap pipeline using the auth repository. The adapter prevents an import
// cycle: the tap service declares the interface and this satisfies it.
type LandingResolverAdapter struct {
	repo Repository
}

// NewLandingResolverAdapter creates a new landing resolver adapter
func NewLandingResolverAdapter(repo Repository) *LandingResolverAdapter {
	return &LandingResolverAdapter{
		repo: repo,
	}
}

// LandingPath maps the stored preference to a redirect path. The two named
// destinations resolve to fixed paths; anything else is treated as a custom
// path and returned as stored (the caller re-validates before redirecting).
func (lra *LandingResolverAdapter) LandingPath(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := lra.repo.GetUserByID(ctx, userID.String())
	if err != nil {
		return "", fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}

	switch user.LandingPreference {
	case "", "home":
		return "/", nil
	case "list":
		return "/list", nil
	default:
		return user.LandingPreference, nil
	}
}
