package taps

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"taplist/internal/batches"
	"taplist/internal/fingerprint"
	"taplist/internal/nfctags"
	"taplist/internal/shared/config"
	"taplist/internal/visitors"
	"taplist/pkg/logger"
)

// Redirect error states carried to the landing page as query parameters.
// The public tap endpoint never returns a 4xx/5xx; a physical tap must
// always land somewhere.
const (
	tapErrorBatchNotFound = "batch_not_found"
	tapErrorTagNotFound   = "tag_not_found"
	tapErrorTagDisabled   = "tag_disabled"
)

// HistoryClaimer reconciles a visitor's anonymous history into a user
// account. Implemented by the identity engine and injected after
// construction to break the package cycle (identity consumes tap events).
type HistoryClaimer interface {
	ClaimFromTap(ctx context.Context, anonVisitorID string, userID uuid.UUID) error
}

// LandingResolver reports an authenticated user's stored redirect
// preference. Implemented by the auth service.
type LandingResolver interface {
	LandingPath(ctx context.Context, userID uuid.UUID) (string, error)
}

// TapInput is everything the pipeline needs from one raw request.
type TapInput struct {
	BatchSlug      string
	TagPublicUUID  string
	IPHash         string
	UserAgent      string
	AcceptLanguage string
	Referer        string
	AnonVisitorID  *string
	SessionUserID  *uuid.UUID
}

// TapResult is always a redirect, whatever happened inside the pipeline.
type TapResult struct {
	RedirectPath string
}

type Service interface {
	HandleTap(ctx context.Context, in TapInput) TapResult
	Identify(ctx context.Context, req IdentifyRequest, ipHash, userAgent string) (*IdentifyResponse, error)
	SetHistoryClaimer(claimer HistoryClaimer)
	SetLandingResolver(resolver LandingResolver)
}

type service struct {
	repo     Repository
	batches  batches.Service
	tags     nfctags.Service
	visitors visitors.Service
	producer EventProducer
	cfg      *config.AttributionConfig
	log      *logger.Logger

	claimer HistoryClaimer
	landing LandingResolver
}

func NewService(
	repo Repository,
	batchService batches.Service,
	tagService nfctags.Service,
	visitorService visitors.Service,
	producer EventProducer,
	cfg *config.AttributionConfig,
	log *logger.Logger,
) Service {
	return &service{
		repo:     repo,
		batches:  batchService,
		tags:     tagService,
		visitors: visitorService,
		producer: producer,
		cfg:      cfg,
		log:      log,
	}
}

func (s *service) SetHistoryClaimer(claimer HistoryClaimer) {
	s.claimer = claimer
}

func (s *service) SetLandingResolver(resolver LandingResolver) {
	s.landing = resolver
}

// HandleTap runs the full ingestion pipeline for one scan. Before the tag is
// validated, failures redirect to an error state without recording anything;
// after that point every failure degrades to a safe default and the user
// still gets their redirect.
func (s *service) HandleTap(ctx context.Context, in TapInput) TapResult {
	// Resolve batch and tag, verify ownership and status. These are the only
	// hard failures the pipeline has.
	batch, err := s.batches.GetBatchBySlug(in.BatchSlug)
	if err != nil {
		return errorRedirect(tapErrorBatchNotFound)
	}

	tagUUID, err := uuid.Parse(in.TagPublicUUID)
	if err != nil {
		return errorRedirect(tapErrorTagNotFound)
	}

	tag, err := s.tags.GetTagByPublicUUID(tagUUID)
	if err != nil || tag.BatchID != batch.ID {
		return errorRedirect(tapErrorTagNotFound)
	}

	if !tag.Status.IsActive() {
		return errorRedirect(tapErrorTagDisabled)
	}

	deviceHint := fingerprint.DeriveDeviceHint(in.UserAgent)
	sessionHint := uuid.NewString()

	// Dedup is best-effort: a lookup failure records the tap as genuine
	// rather than dropping it.
	duplicateOf, err := s.repo.FindDuplicate(tag.ID, in.AnonVisitorID, in.IPHash, in.UserAgent, s.cfg.DedupWindow)
	if err != nil {
		s.log.LogDegradedStep(ctx, "dedup_check", err)
		duplicateOf = nil
	}

	event := &TapEvent{
		TagID:            tag.ID,
		BatchID:          batch.ID,
		OccurredAt:       time.Now().UTC(),
		IPHash:           in.IPHash,
		UserAgent:        in.UserAgent,
		AcceptLanguage:   in.AcceptLanguage,
		Referer:          in.Referer,
		DeviceHint:       deviceHint,
		AnonVisitorID:    in.AnonVisitorID,
		TapperHadSession: in.SessionUserID != nil,
		SessionHint:      &sessionHint,
	}
	if duplicateOf != nil {
		event.IsDuplicate = true
		event.DuplicateOfID = &duplicateOf.ID
	}

	if err := s.repo.Create(event); err != nil {
		// Nothing persisted, nothing to link. The tapper still lands.
		s.log.LogDegradedStep(ctx, "persist_tap", err)
		return s.finishRedirect(ctx, in.SessionUserID, batch.Slug, tag.PublicUUID.String(), sessionHint)
	}

	// Visitor upsert. Duplicates refresh presence but must not inflate the
	// tap counter.
	var visitor *visitors.Visitor
	if in.AnonVisitorID != nil && *in.AnonVisitorID != "" {
		if event.IsDuplicate {
			visitor, err = s.visitors.UpsertPing(*in.AnonVisitorID, in.IPHash, in.UserAgent)
		} else {
			visitor, err = s.visitors.UpsertTap(*in.AnonVisitorID, tag.ID, batch.ID, in.IPHash, in.UserAgent)
		}
		if err != nil {
			s.log.LogDegradedStep(ctx, "visitor_upsert", err)
			visitor = nil
		}
	}

	if visitor != nil {
		if err := s.repo.SetVisitor(event.ID, visitor.ID); err != nil {
			s.log.LogDegradedStep(ctx, "set_visitor", err)
		} else {
			event.VisitorID = &visitor.ID
		}
	}

	// Attribution precedence: a tag hard-linked to a user beats the tapper's
	// own session, which beats the visitor's claimed owner.
	var linkUserID *uuid.UUID
	var linkMethod LinkMethod
	switch {
	case tag.LinkedUserID != nil:
		linkUserID = tag.LinkedUserID
		linkMethod = LinkMethodTagLinked
	case in.SessionUserID != nil:
		linkUserID = in.SessionUserID
		linkMethod = LinkMethodSession
	case visitor != nil && visitor.IsClaimed():
		linkUserID = visitor.UserID
		linkMethod = LinkMethodAnonVisitorID
	}

	if linkUserID != nil {
		if err := s.repo.SetLinkage(event.ID, *linkUserID, linkMethod); err != nil {
			s.log.LogDegradedStep(ctx, "set_linkage", err)
		} else {
			event.UserID = linkUserID
			event.LinkMethod = &linkMethod
		}
	}

	// Opportunistic claim: a logged-in user tapping with an unclaimed
	// anonymous id silently absorbs that history, unless the tag belongs to
	// somebody else.
	if s.claimer != nil && in.SessionUserID != nil && visitor != nil && !visitor.IsClaimed() &&
		(tag.LinkedUserID == nil || *tag.LinkedUserID == *in.SessionUserID) {
		if err := s.claimer.ClaimFromTap(ctx, visitor.AnonVisitorID, *in.SessionUserID); err != nil {
			s.log.LogDegradedStep(ctx, "opportunistic_claim", err)
		}
	}

	if err := s.producer.PublishTapRecorded(ctx, event); err != nil {
		s.log.LogDegradedStep(ctx, "publish_tap", err)
	}

	s.log.LogTapRecorded(ctx, event.ID.String(), tag.ID.String(), event.IsDuplicate, string(linkMethod))

	return s.finishRedirect(ctx, in.SessionUserID, batch.Slug, tag.PublicUUID.String(), sessionHint)
}

// finishRedirect computes the landing path and attaches the attribution
// parameters the client needs for later identify/attach calls.
func (s *service) finishRedirect(ctx context.Context, sessionUserID *uuid.UUID, batchSlug, tagPublicUUID, sessionHint string) TapResult {
	landing := "/"
	if sessionUserID != nil && s.landing != nil {
		path, err := s.landing.LandingPath(ctx, *sessionUserID)
		if err != nil {
			s.log.LogDegradedStep(ctx, "landing_preference", err)
		} else if validLandingPath(path) {
			landing = path
		}
	}

	params := url.Values{}
	params.Set("srcBatch", batchSlug)
	params.Set("srcTag", tagPublicUUID)
	params.Set("tapSession", sessionHint)

	return TapResult{RedirectPath: landing + "?" + params.Encode()}
}

// validLandingPath accepts only internal absolute paths, so a corrupted
// preference can never turn the tap endpoint into an open redirect.
func validLandingPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	if strings.HasPrefix(path, "//") || strings.Contains(path, "://") {
		return false
	}
	return true
}

func errorRedirect(code string) TapResult {
	params := url.Values{}
	params.Set("tapError", code)
	return TapResult{RedirectPath: "/?" + params.Encode()}
}

// Identify handles the public post-redirect call: the client now knows its
// anonymous id, so the visitor is upserted and very recent fingerprint-only
// events are re-linked to it.
func (s *service) Identify(ctx context.Context, req IdentifyRequest, ipHash, userAgent string) (*IdentifyResponse, error) {
	var visitor *visitors.Visitor
	var err error

	tagID, batchID := s.resolveIdentifySource(req)
	if tagID != nil && batchID != nil {
		visitor, err = s.visitors.UpsertTap(req.AnonVisitorID, *tagID, *batchID, ipHash, userAgent)
	} else {
		visitor, err = s.visitors.UpsertPing(req.AnonVisitorID, ipHash, userAgent)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert visitor: %w", err)
	}

	// Narrow re-link: only recent, unattributed events whose fingerprint
	// matches this request get adopted by the visitor.
	var relinked int64
	events, err := s.repo.RecentUnattributedByFingerprint(ipHash, userAgent, s.cfg.RelinkWindow, s.cfg.AttachMaxEvents)
	if err != nil {
		s.log.LogDegradedStep(ctx, "identify_relink_lookup", err)
	} else if len(events) > 0 {
		ids := make([]uuid.UUID, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}

		relinked, err = s.repo.AttachVisitor(ids, visitor.ID, visitor.AnonVisitorID)
		if err != nil {
			s.log.LogDegradedStep(ctx, "identify_relink", err)
			relinked = 0
		} else if visitor.IsClaimed() {
			if _, err := s.repo.LinkEvents(ids, *visitor.UserID, LinkMethodAnonVisitorID); err != nil {
				s.log.LogDegradedStep(ctx, "identify_link_user", err)
			}
		}
	}

	resp := &IdentifyResponse{
		VisitorID:      visitor.ID.String(),
		TapCount:       visitor.TapCount,
		EventsRelinked: relinked,
	}
	if visitor.UserID != nil {
		claimed := visitor.UserID.String()
		resp.ClaimedUserID = &claimed
	}
	return resp, nil
}

// resolveIdentifySource maps the optional batch/tag hints to ids. Both must
// resolve and agree for the call to count as a tap-semantics upsert.
func (s *service) resolveIdentifySource(req IdentifyRequest) (*uuid.UUID, *uuid.UUID) {
	if req.BatchSlug == "" || req.TagPublicUUID == "" {
		return nil, nil
	}

	batch, err := s.batches.GetBatchBySlug(req.BatchSlug)
	if err != nil {
		return nil, nil
	}

	tagUUID, err := uuid.Parse(req.TagPublicUUID)
	if err != nil {
		return nil, nil
	}

	tag, err := s.tags.GetTagByPublicUUID(tagUUID)
	if err != nil || tag.BatchID != batch.ID {
		return nil, nil
	}

	return &tag.ID, &batch.ID
}
