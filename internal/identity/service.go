package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taplist/internal/nfctags"
	"taplist/internal/shared/config"
	"taplist/internal/taps"
	"taplist/internal/visitors"
	"taplist/pkg/logger"
)

var (
	// ErrClaimConflict means the anonymous history already belongs to a
	// different account. Never resolved silently; one anonymous history must
	// not be reassignable between accounts.
	ErrClaimConflict = errors.New("visitor already claimed by a different user")
	ErrUserNotFound  = errors.New("user not found")
)

type Service interface {
	Claim(ctx context.Context, userID uuid.UUID, req ClaimRequest) (*ClaimResponse, error)
	Attach(ctx context.Context, req AttachRequest, ipHash, userAgent string) (*AttachResponse, error)
	LinkTag(ctx context.Context, tagID uuid.UUID, req LinkTagRequest) (*LinkTagResponse, error)

	// ClaimFromTap is the opportunistic tap-time path. Conflicts are
	// swallowed after logging: a tap must never fail because of an
	// attribution race.
	ClaimFromTap(ctx context.Context, anonVisitorID string, userID uuid.UUID) error

	// ClaimOnAuth is the best-effort claim run during signup/login when the
	// client sent its anonymous id along. A conflict is reported as
	// ErrClaimConflict so the caller can warn the client, but it must never
	// fail the signup or login itself.
	ClaimOnAuth(ctx context.Context, anonVisitorID string, userID uuid.UUID, signup bool) error
}

type service struct {
	repo     Repository
	visitors visitors.Service
	cfg      *config.AttributionConfig
	log      *logger.Logger
}

func NewService(repo Repository, visitorService visitors.Service, cfg *config.AttributionConfig, log *logger.Logger) Service {
	return &service{repo: repo, visitors: visitorService, cfg: cfg, log: log}
}

func claimMethodFor(claimContext string) taps.LinkMethod {
	switch claimContext {
	case "signup":
		return taps.LinkMethodClaimSignup
	case "login":
		return taps.LinkMethodClaimLogin
	default:
		return taps.LinkMethodAnonVisitorID
	}
}

func (s *service) Claim(ctx context.Context, userID uuid.UUID, req ClaimRequest) (*ClaimResponse, error) {
	outcome, err := s.repo.Claim(req.AnonVisitorID, userID, claimMethodFor(req.Context))
	if err != nil {
		return nil, fmt.Errorf("claim failed: %w", err)
	}

	switch outcome.Transition {
	case TransitionConflict:
		s.log.LogClaimConflict(ctx, outcome.VisitorID.String(), userID.String())
		return nil, ErrClaimConflict

	case TransitionNoop:
		if !outcome.VisitorFound {
			return &ClaimResponse{Status: ClaimStatusNoVisitor}, nil
		}
		return &ClaimResponse{Status: ClaimStatusAlreadyClaimed}, nil

	default:
		s.log.LogVisitorClaimed(ctx, outcome.VisitorID.String(), userID.String(), req.Context, outcome.EventsLinked)
		return &ClaimResponse{
			Status:       ClaimStatusClaimed,
			EventsLinked: outcome.EventsLinked,
			ListClaimed:  outcome.ListClaimed,
		}, nil
	}
}

func (s *service) Attach(ctx context.Context, req AttachRequest, ipHash, userAgent string) (*AttachResponse, error) {
	// Without an anonymous id there is nothing to attach the events to;
	// that's a zero-effect success, not an error.
	if req.AnonVisitorID == "" {
		return &AttachResponse{}, nil
	}

	visitor, err := s.visitors.UpsertPing(req.AnonVisitorID, ipHash, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert visitor: %w", err)
	}

	outcome, err := s.repo.AttachBySessionHint(req.SessionHint, visitor, s.cfg.AttachWindow, s.cfg.AttachMaxEvents)
	if err != nil {
		return nil, fmt.Errorf("attach failed: %w", err)
	}

	return &AttachResponse{
		EventsAttached: outcome.EventsAttached,
		EventsLinked:   outcome.EventsLinked,
	}, nil
}

func (s *service) LinkTag(ctx context.Context, tagID uuid.UUID, req LinkTagRequest) (*LinkTagResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	exists, err := s.repo.UserExists(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	outcome, err := s.repo.LinkTag(tagID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nfctags.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to link tag: %w", err)
	}

	s.log.LogVisitorClaimed(ctx, tagID.String(), userID.String(), "manual_admin_link", outcome.EventsLinked)

	return &LinkTagResponse{
		TagID:          tagID.String(),
		UserID:         userID.String(),
		EventsLinked:   outcome.EventsLinked,
		VisitorCreated: outcome.VisitorCreated,
	}, nil
}

func (s *service) ClaimFromTap(ctx context.Context, anonVisitorID string, userID uuid.UUID) error {
	outcome, err := s.repo.Claim(anonVisitorID, userID, taps.LinkMethodSession)
	if err != nil {
		return err
	}

	if outcome.Transition == TransitionConflict {
		// A concurrent claim won; the tap itself already succeeded.
		s.log.LogClaimConflict(ctx, outcome.VisitorID.String(), userID.String())
		return nil
	}

	if outcome.Transition == TransitionClaim {
		s.log.LogVisitorClaimed(ctx, outcome.VisitorID.String(), userID.String(), "tap_session", outcome.EventsLinked)
	}

	return nil
}

func (s *service) ClaimOnAuth(ctx context.Context, anonVisitorID string, userID uuid.UUID, signup bool) error {
	claimContext := "login"
	method := taps.LinkMethodClaimLogin
	if signup {
		claimContext = "signup"
		method = taps.LinkMethodClaimSignup
	}

	outcome, err := s.repo.Claim(anonVisitorID, userID, method)
	if err != nil {
		return err
	}

	switch outcome.Transition {
	case TransitionConflict:
		s.log.LogClaimConflict(ctx, outcome.VisitorID.String(), userID.String())
		return ErrClaimConflict
	case TransitionClaim:
		s.log.LogVisitorClaimed(ctx, outcome.VisitorID.String(), userID.String(), claimContext, outcome.EventsLinked)
	}

	return nil
}
