package taps

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taplist/internal/batches"
	"taplist/internal/nfctags"
	"taplist/internal/shared/config"
	"taplist/internal/visitors"
	"taplist/pkg/logger"
)

// --- fakes ---

type fakeTapRepo struct {
	events []*TapEvent
}

func (f *fakeTapRepo) Create(event *TapEvent) error {
	event.ID = uuid.New()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeTapRepo) GetByID(id uuid.UUID) (*TapEvent, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeTapRepo) FindDuplicate(tagID uuid.UUID, anonVisitorID *string, ipHash, userAgent string, window time.Duration) (*TapEvent, error) {
	since := time.Now().UTC().Add(-window)
	if anonVisitorID != nil && *anonVisitorID != "" {
		for i := len(f.events) - 1; i >= 0; i-- {
			e := f.events[i]
			if e.TagID != tagID || e.IsDuplicate || e.OccurredAt.Before(since) {
				continue
			}
			if e.AnonVisitorID != nil && *e.AnonVisitorID == *anonVisitorID {
				return e, nil
			}
		}
		return nil, nil
	}
	if ipHash == "" {
		return nil, nil
	}
	for i := len(f.events) - 1; i >= 0; i-- {
		e := f.events[i]
		if e.TagID != tagID || e.IsDuplicate || e.OccurredAt.Before(since) {
			continue
		}
		if e.IPHash == ipHash && e.UserAgent == userAgent {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeTapRepo) SetLinkage(eventID uuid.UUID, userID uuid.UUID, method LinkMethod) error {
	for _, e := range f.events {
		if e.ID == eventID && e.UserID == nil {
			now := time.Now().UTC()
			e.UserID = &userID
			e.LinkedAt = &now
			e.LinkMethod = &method
		}
	}
	return nil
}

func (f *fakeTapRepo) SetVisitor(eventID uuid.UUID, visitorID uuid.UUID) error {
	for _, e := range f.events {
		if e.ID == eventID {
			e.VisitorID = &visitorID
		}
	}
	return nil
}

func (f *fakeTapRepo) RecentUnattributedByFingerprint(ipHash, userAgent string, window time.Duration, limit int) ([]TapEvent, error) {
	since := time.Now().UTC().Add(-window)
	var out []TapEvent
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.events[i]
		if e.IsDuplicate || e.VisitorID != nil || e.OccurredAt.Before(since) {
			continue
		}
		if e.IPHash == ipHash && e.UserAgent == userAgent {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeTapRepo) AttachVisitor(eventIDs []uuid.UUID, visitorID uuid.UUID, anonVisitorID string) (int64, error) {
	var n int64
	for _, e := range f.events {
		for _, id := range eventIDs {
			if e.ID == id && e.VisitorID == nil {
				e.VisitorID = &visitorID
				e.AnonVisitorID = &anonVisitorID
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeTapRepo) LinkEvents(eventIDs []uuid.UUID, userID uuid.UUID, method LinkMethod) (int64, error) {
	var n int64
	for _, e := range f.events {
		for _, id := range eventIDs {
			if e.ID == id && e.UserID == nil {
				now := time.Now().UTC()
				e.UserID = &userID
				e.LinkedAt = &now
				e.LinkMethod = &method
				n++
			}
		}
	}
	return n, nil
}

type fakeBatchService struct {
	batch *batches.TagBatch
}

func (f *fakeBatchService) CreateBatch(adminID uuid.UUID, req batches.CreateBatchRequest) (*batches.BatchResponse, error) {
	return nil, nil
}
func (f *fakeBatchService) GetBatchByID(id uuid.UUID) (*batches.BatchResponse, error) {
	return nil, batches.ErrBatchNotFound
}
func (f *fakeBatchService) GetBatchBySlug(slug string) (*batches.TagBatch, error) {
	if f.batch != nil && f.batch.Slug == slug {
		return f.batch, nil
	}
	return nil, batches.ErrBatchNotFound
}
func (f *fakeBatchService) UpdateBatch(id uuid.UUID, req batches.UpdateBatchRequest) (*batches.BatchResponse, error) {
	return nil, nil
}
func (f *fakeBatchService) GetAllBatches(query batches.BatchListQuery) (*batches.PaginatedBatches, error) {
	return nil, nil
}

type fakeTagService struct {
	tag *nfctags.NfcTag
}

func (f *fakeTagService) CreateTags(adminID uuid.UUID, req nfctags.CreateTagRequest) ([]nfctags.TagResponse, error) {
	return nil, nil
}
func (f *fakeTagService) GetTagByID(id uuid.UUID) (*nfctags.TagResponse, error) {
	return nil, nfctags.ErrTagNotFound
}
func (f *fakeTagService) GetTagByPublicUUID(publicUUID uuid.UUID) (*nfctags.NfcTag, error) {
	if f.tag != nil && f.tag.PublicUUID == publicUUID {
		return f.tag, nil
	}
	return nil, nfctags.ErrTagNotFound
}
func (f *fakeTagService) UpdateTag(id uuid.UUID, req nfctags.UpdateTagRequest) (*nfctags.TagResponse, error) {
	return nil, nil
}
func (f *fakeTagService) LinkUser(id uuid.UUID, userID uuid.UUID) (*nfctags.TagResponse, error) {
	return nil, nil
}
func (f *fakeTagService) UnlinkUser(id uuid.UUID) (*nfctags.TagResponse, error) {
	return nil, nil
}
func (f *fakeTagService) GetAllTags(query nfctags.TagListQuery) (*nfctags.PaginatedTags, error) {
	return nil, nil
}

type fakeVisitorService struct {
	byAnonID map[string]*visitors.Visitor
}

func newFakeVisitorService() *fakeVisitorService {
	return &fakeVisitorService{byAnonID: make(map[string]*visitors.Visitor)}
}

func (f *fakeVisitorService) upsert(anonID string, tap bool, tagID, batchID *uuid.UUID) *visitors.Visitor {
	v, ok := f.byAnonID[anonID]
	if !ok {
		v = &visitors.Visitor{
			ID:            uuid.New(),
			AnonVisitorID: anonID,
			FirstSeenAt:   time.Now().UTC(),
		}
		f.byAnonID[anonID] = v
	}
	v.LastSeenAt = time.Now().UTC()
	if tap {
		v.TapCount++
		v.LastTagID = tagID
		v.LastBatchID = batchID
	}
	copied := *v
	return &copied
}

func (f *fakeVisitorService) UpsertTap(anonVisitorID string, tagID, batchID uuid.UUID, ipHash, userAgent string) (*visitors.Visitor, error) {
	return f.upsert(anonVisitorID, true, &tagID, &batchID), nil
}
func (f *fakeVisitorService) UpsertPing(anonVisitorID string, ipHash, userAgent string) (*visitors.Visitor, error) {
	return f.upsert(anonVisitorID, false, nil, nil), nil
}
func (f *fakeVisitorService) GetByAnonVisitorID(anonVisitorID string) (*visitors.Visitor, error) {
	if v, ok := f.byAnonID[anonVisitorID]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, visitors.ErrVisitorNotFound
}
func (f *fakeVisitorService) Ping(req visitors.PingRequest, ipHash, userAgent string) (*visitors.VisitorResponse, error) {
	return nil, nil
}

type fakeClaimer struct {
	calls []string
}

func (f *fakeClaimer) ClaimFromTap(ctx context.Context, anonVisitorID string, userID uuid.UUID) error {
	f.calls = append(f.calls, anonVisitorID)
	return nil
}

// --- harness ---

type pipelineHarness struct {
	svc      Service
	repo     *fakeTapRepo
	visitors *fakeVisitorService
	claimer  *fakeClaimer
	batch    *batches.TagBatch
	tag      *nfctags.NfcTag
}

func newPipelineHarness(t *testing.T) *pipelineHarness {
	t.Helper()

	batch := &batches.TagBatch{ID: uuid.New(), Slug: "store-a", Name: "Store A"}
	tag := &nfctags.NfcTag{
		ID:         uuid.New(),
		PublicUUID: uuid.New(),
		BatchID:    batch.ID,
		Status:     nfctags.StatusActive,
	}

	repo := &fakeTapRepo{}
	visitorSvc := newFakeVisitorService()
	claimer := &fakeClaimer{}

	cfg := &config.AttributionConfig{
		IPHashSalt:      "test-salt",
		DedupWindow:     2 * time.Minute,
		AttachWindow:    10 * time.Minute,
		AttachMaxEvents: 10,
		RelinkWindow:    10 * time.Minute,
	}

	log := &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	svc := NewService(repo, &fakeBatchService{batch: batch}, &fakeTagService{tag: tag}, visitorSvc, NewNoopProducer(), cfg, log)
	svc.SetHistoryClaimer(claimer)

	return &pipelineHarness{
		svc:      svc,
		repo:     repo,
		visitors: visitorSvc,
		claimer:  claimer,
		batch:    batch,
		tag:      tag,
	}
}

func (h *pipelineHarness) tapInput() TapInput {
	return TapInput{
		BatchSlug:     h.batch.Slug,
		TagPublicUUID: h.tag.PublicUUID.String(),
		IPHash:        "iphash-1",
		UserAgent:     "test-agent",
	}
}

func redirectQuery(t *testing.T, result TapResult) url.Values {
	t.Helper()
	parsed, err := url.Parse(result.RedirectPath)
	require.NoError(t, err)
	return parsed.Query()
}

// --- tests ---

func TestTapAnonymousNoSession(t *testing.T) {
	h := newPipelineHarness(t)

	result := h.svc.HandleTap(context.Background(), h.tapInput())

	require.Len(t, h.repo.events, 1)
	event := h.repo.events[0]
	assert.Nil(t, event.UserID)
	assert.False(t, event.TapperHadSession)
	assert.False(t, event.IsDuplicate)

	q := redirectQuery(t, result)
	assert.Equal(t, h.batch.Slug, q.Get("srcBatch"))
	assert.Equal(t, h.tag.PublicUUID.String(), q.Get("srcTag"))
	assert.NotEmpty(t, q.Get("tapSession"))
	assert.True(t, strings.HasPrefix(result.RedirectPath, "/?"))
}

func TestTapDuplicateWithinWindow(t *testing.T) {
	h := newPipelineHarness(t)

	anonID := "anon-visitor-dup"
	in := h.tapInput()
	in.AnonVisitorID = &anonID

	h.svc.HandleTap(context.Background(), in)
	h.svc.HandleTap(context.Background(), in)

	require.Len(t, h.repo.events, 2)
	first, second := h.repo.events[0], h.repo.events[1]

	assert.False(t, first.IsDuplicate)
	assert.True(t, second.IsDuplicate)
	require.NotNil(t, second.DuplicateOfID)
	assert.Equal(t, first.ID, *second.DuplicateOfID)

	visitor := h.visitors.byAnonID[anonID]
	assert.Equal(t, int64(1), visitor.TapCount, "duplicate tap must not increment tap count")
}

func TestTapWithAnonIDIgnoresFingerprintMatch(t *testing.T) {
	h := newPipelineHarness(t)

	// First tap before the client has minted an anonymous id: the row is
	// only identifiable by its IP+UA fingerprint.
	h.svc.HandleTap(context.Background(), h.tapInput())

	// Same client taps again moments later, now carrying a fresh anon id.
	// The anon-id lookup misses and the fingerprint row must not be
	// consulted: this is the visitor's first identified tap, not a dup.
	anonID := "anon-visitor-fresh"
	in := h.tapInput()
	in.AnonVisitorID = &anonID

	h.svc.HandleTap(context.Background(), in)

	require.Len(t, h.repo.events, 2)
	second := h.repo.events[1]
	assert.False(t, second.IsDuplicate)
	assert.Nil(t, second.DuplicateOfID)

	visitor := h.visitors.byAnonID[anonID]
	require.NotNil(t, visitor)
	assert.Equal(t, int64(1), visitor.TapCount)
}

func TestTapBatchNotFound(t *testing.T) {
	h := newPipelineHarness(t)

	in := h.tapInput()
	in.BatchSlug = "no-such-batch"

	result := h.svc.HandleTap(context.Background(), in)

	assert.Empty(t, h.repo.events, "no tap recorded before tag validation")
	q := redirectQuery(t, result)
	assert.Equal(t, "batch_not_found", q.Get("tapError"))
}

func TestTapWrongBatchForTag(t *testing.T) {
	h := newPipelineHarness(t)

	// Tag resolves but belongs to a different batch than the URL claims.
	h.tag.BatchID = uuid.New()

	result := h.svc.HandleTap(context.Background(), h.tapInput())

	assert.Empty(t, h.repo.events)
	q := redirectQuery(t, result)
	assert.Equal(t, "tag_not_found", q.Get("tapError"))
}

func TestTapDisabledTag(t *testing.T) {
	h := newPipelineHarness(t)
	h.tag.Status = nfctags.StatusDisabled

	result := h.svc.HandleTap(context.Background(), h.tapInput())

	assert.Empty(t, h.repo.events)
	q := redirectQuery(t, result)
	assert.Equal(t, "tag_disabled", q.Get("tapError"))
}

func TestTapLinkedTagBeatsVisitorClaim(t *testing.T) {
	h := newPipelineHarness(t)

	tagOwner := uuid.New()
	otherUser := uuid.New()
	h.tag.LinkedUserID = &tagOwner

	anonID := "anon-visitor-claimed"
	h.visitors.upsert(anonID, false, nil, nil)
	h.visitors.byAnonID[anonID].UserID = &otherUser

	in := h.tapInput()
	in.AnonVisitorID = &anonID

	h.svc.HandleTap(context.Background(), in)

	require.Len(t, h.repo.events, 1)
	event := h.repo.events[0]
	require.NotNil(t, event.UserID)
	assert.Equal(t, tagOwner, *event.UserID)
	require.NotNil(t, event.LinkMethod)
	assert.Equal(t, LinkMethodTagLinked, *event.LinkMethod)

	// The visitor's own claim is untouched.
	assert.Equal(t, otherUser, *h.visitors.byAnonID[anonID].UserID)
}

func TestTapSessionAttributionAndOpportunisticClaim(t *testing.T) {
	h := newPipelineHarness(t)

	sessionUser := uuid.New()
	anonID := "anon-visitor-session"

	in := h.tapInput()
	in.AnonVisitorID = &anonID
	in.SessionUserID = &sessionUser

	h.svc.HandleTap(context.Background(), in)

	require.Len(t, h.repo.events, 1)
	event := h.repo.events[0]
	require.NotNil(t, event.UserID)
	assert.Equal(t, sessionUser, *event.UserID)
	assert.Equal(t, LinkMethodSession, *event.LinkMethod)
	assert.True(t, event.TapperHadSession)

	require.Len(t, h.claimer.calls, 1)
	assert.Equal(t, anonID, h.claimer.calls[0])
}

func TestTapNoOpportunisticClaimWhenTagOwnedByOther(t *testing.T) {
	h := newPipelineHarness(t)

	tagOwner := uuid.New()
	sessionUser := uuid.New()
	h.tag.LinkedUserID = &tagOwner

	anonID := "anon-visitor-other"
	in := h.tapInput()
	in.AnonVisitorID = &anonID
	in.SessionUserID = &sessionUser

	h.svc.HandleTap(context.Background(), in)

	assert.Empty(t, h.claimer.calls, "tag owned by somebody else must not trigger a claim")
}

func TestIdentifyRelinksRecentEvents(t *testing.T) {
	h := newPipelineHarness(t)

	// Two fingerprint-only taps with no anonymous id.
	h.svc.HandleTap(context.Background(), h.tapInput())
	h.svc.HandleTap(context.Background(), h.tapInput())

	resp, err := h.svc.Identify(context.Background(), IdentifyRequest{
		AnonVisitorID: "anon-visitor-late",
	}, "iphash-1", "test-agent")
	require.NoError(t, err)

	// Only the first tap was genuine; the second is a duplicate but both
	// unattributed non-duplicate rows are eligible. The duplicate row is
	// skipped by the fingerprint lookup.
	assert.Equal(t, int64(1), resp.EventsRelinked)

	visitor := h.visitors.byAnonID["anon-visitor-late"]
	require.NotNil(t, visitor)
	require.NotNil(t, h.repo.events[0].VisitorID)
	assert.Equal(t, visitor.ID, *h.repo.events[0].VisitorID)
}

func TestValidLandingPath(t *testing.T) {
	assert.True(t, validLandingPath("/"))
	assert.True(t, validLandingPath("/list"))
	assert.False(t, validLandingPath(""))
	assert.False(t, validLandingPath("//evil.example"))
	assert.False(t, validLandingPath("https://evil.example"))
	assert.False(t, validLandingPath("list"))
}
