package identity

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taplist/internal/shared/config"
	"taplist/internal/taps"
	"taplist/internal/visitors"
	"taplist/pkg/logger"
)

type fakeIdentityRepo struct {
	owners       map[string]*uuid.UUID // anon visitor id -> claiming user
	visitorIDs   map[string]uuid.UUID
	unlinkedTaps map[string]int64 // anon visitor id -> unattributed event count
	users        map[uuid.UUID]bool
	linkedTags   map[uuid.UUID]uuid.UUID
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{
		owners:       make(map[string]*uuid.UUID),
		visitorIDs:   make(map[string]uuid.UUID),
		unlinkedTaps: make(map[string]int64),
		users:        make(map[uuid.UUID]bool),
		linkedTags:   make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeIdentityRepo) addVisitor(anonID string, owner *uuid.UUID, unlinked int64) {
	f.owners[anonID] = owner
	f.visitorIDs[anonID] = uuid.New()
	f.unlinkedTaps[anonID] = unlinked
}

func (f *fakeIdentityRepo) Claim(anonVisitorID string, userID uuid.UUID, method taps.LinkMethod) (*ClaimOutcome, error) {
	owner, found := f.owners[anonVisitorID]
	if !found {
		return &ClaimOutcome{Transition: TransitionNoop}, nil
	}

	outcome := &ClaimOutcome{
		VisitorFound: true,
		VisitorID:    f.visitorIDs[anonVisitorID],
	}

	var state ClaimState
	if owner != nil {
		state = ClaimedBy(*owner)
	} else {
		state = Unclaimed()
	}

	outcome.Transition = state.Evaluate(userID)
	if outcome.Transition == TransitionClaim {
		f.owners[anonVisitorID] = &userID
		outcome.EventsLinked = f.unlinkedTaps[anonVisitorID]
		f.unlinkedTaps[anonVisitorID] = 0
	}
	return outcome, nil
}

func (f *fakeIdentityRepo) AttachBySessionHint(hint string, visitor *visitors.Visitor, window time.Duration, maxEvents int) (*AttachOutcome, error) {
	return &AttachOutcome{EventsAttached: 2}, nil
}

func (f *fakeIdentityRepo) LinkTag(tagID uuid.UUID, userID uuid.UUID) (*LinkTagOutcome, error) {
	f.linkedTags[tagID] = userID
	return &LinkTagOutcome{EventsLinked: 3, VisitorCreated: true}, nil
}

func (f *fakeIdentityRepo) UserExists(userID uuid.UUID) (bool, error) {
	return f.users[userID], nil
}

type stubVisitorService struct {
	visitor *visitors.Visitor
}

func (s *stubVisitorService) UpsertTap(anonVisitorID string, tagID, batchID uuid.UUID, ipHash, userAgent string) (*visitors.Visitor, error) {
	return s.visitor, nil
}
func (s *stubVisitorService) UpsertPing(anonVisitorID string, ipHash, userAgent string) (*visitors.Visitor, error) {
	return s.visitor, nil
}
func (s *stubVisitorService) GetByAnonVisitorID(anonVisitorID string) (*visitors.Visitor, error) {
	return s.visitor, nil
}
func (s *stubVisitorService) Ping(req visitors.PingRequest, ipHash, userAgent string) (*visitors.VisitorResponse, error) {
	return nil, nil
}

func newIdentityService(repo Repository) Service {
	cfg := &config.AttributionConfig{
		AttachWindow:    10 * time.Minute,
		AttachMaxEvents: 10,
	}
	log := &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	stub := &stubVisitorService{visitor: &visitors.Visitor{ID: uuid.New(), AnonVisitorID: "anon-stub"}}
	return NewService(repo, stub, cfg, log)
}

func TestClaimStateTransitions(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	assert.Equal(t, TransitionClaim, Unclaimed().Evaluate(alice))
	assert.Equal(t, TransitionNoop, ClaimedBy(alice).Evaluate(alice))
	assert.Equal(t, TransitionConflict, ClaimedBy(alice).Evaluate(bob))
}

func TestClaimUnclaimedVisitor(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	userID := uuid.New()
	repo.addVisitor("anon-visitor-a", nil, 4)

	resp, err := svc.Claim(context.Background(), userID, ClaimRequest{AnonVisitorID: "anon-visitor-a", Context: "signup"})
	require.NoError(t, err)
	assert.Equal(t, ClaimStatusClaimed, resp.Status)
	assert.Equal(t, int64(4), resp.EventsLinked)
}

func TestClaimIsIdempotent(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	userID := uuid.New()
	repo.addVisitor("anon-visitor-b", nil, 2)

	req := ClaimRequest{AnonVisitorID: "anon-visitor-b", Context: "login"}

	first, err := svc.Claim(context.Background(), userID, req)
	require.NoError(t, err)
	assert.Equal(t, ClaimStatusClaimed, first.Status)

	second, err := svc.Claim(context.Background(), userID, req)
	require.NoError(t, err)
	assert.Equal(t, ClaimStatusAlreadyClaimed, second.Status)
	assert.Zero(t, second.EventsLinked, "no double-linking on a repeat claim")
}

func TestClaimConflictIsDistinct(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	alice := uuid.New()
	bob := uuid.New()
	repo.addVisitor("anon-visitor-c", &alice, 0)

	_, err := svc.Claim(context.Background(), bob, ClaimRequest{AnonVisitorID: "anon-visitor-c"})
	assert.ErrorIs(t, err, ErrClaimConflict)

	// The original owner is untouched.
	assert.Equal(t, alice, *repo.owners["anon-visitor-c"])
}

func TestClaimMissingVisitorIsZeroEffectSuccess(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	resp, err := svc.Claim(context.Background(), uuid.New(), ClaimRequest{AnonVisitorID: "anon-never-seen"})
	require.NoError(t, err)
	assert.Equal(t, ClaimStatusNoVisitor, resp.Status)
	assert.Zero(t, resp.EventsLinked)
}

func TestClaimFromTapSwallowsConflict(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	alice := uuid.New()
	bob := uuid.New()
	repo.addVisitor("anon-visitor-d", &alice, 0)

	err := svc.ClaimFromTap(context.Background(), "anon-visitor-d", bob)
	assert.NoError(t, err, "tap-time claims must never surface a conflict")
	assert.Equal(t, alice, *repo.owners["anon-visitor-d"])
}

func TestClaimOnAuthReportsConflict(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	alice := uuid.New()
	bob := uuid.New()
	repo.addVisitor("anon-visitor-f", &alice, 0)

	err := svc.ClaimOnAuth(context.Background(), "anon-visitor-f", bob, false)
	assert.ErrorIs(t, err, ErrClaimConflict)
	assert.Equal(t, alice, *repo.owners["anon-visitor-f"])

	err = svc.ClaimOnAuth(context.Background(), "anon-visitor-f", alice, false)
	assert.NoError(t, err, "the owner re-authenticating is a noop")
}

func TestAttachWithoutAnonIDIsZeroEffect(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	resp, err := svc.Attach(context.Background(), AttachRequest{SessionHint: "some-session-hint"}, "hash", "ua")
	require.NoError(t, err)
	assert.Zero(t, resp.EventsAttached)
	assert.Zero(t, resp.EventsLinked)
}

func TestAttachWithAnonID(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	resp, err := svc.Attach(context.Background(), AttachRequest{
		SessionHint:   "some-session-hint",
		AnonVisitorID: "anon-visitor-e",
	}, "hash", "ua")
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.EventsAttached)
}

func TestLinkTagRequiresExistingUser(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	_, err := svc.LinkTag(context.Background(), uuid.New(), LinkTagRequest{UserID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLinkTagBypassesConflict(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := newIdentityService(repo)

	userID := uuid.New()
	repo.users[userID] = true
	tagID := uuid.New()

	resp, err := svc.LinkTag(context.Background(), tagID, LinkTagRequest{UserID: userID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.EventsLinked)
	assert.True(t, resp.VisitorCreated)
	assert.Equal(t, userID, repo.linkedTags[tagID])
}
