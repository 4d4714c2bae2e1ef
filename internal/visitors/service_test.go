package visitors

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taplist/pkg/logger"
)

// fakeRepository keeps visitors in memory and mirrors the upsert semantics of
// the real repository.
type fakeRepository struct {
	byAnonID map[string]*Visitor
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byAnonID: make(map[string]*Visitor)}
}

func (f *fakeRepository) Upsert(params UpsertParams) (*Visitor, error) {
	now := time.Now().UTC()

	if existing, ok := f.byAnonID[params.AnonVisitorID]; ok {
		existing.LastSeenAt = now
		if params.IPHash != "" {
			existing.IPHashLastSeen = params.IPHash
		}
		if params.UserAgent != "" {
			existing.UserAgentLastSeen = params.UserAgent
		}
		if params.TagID != nil {
			existing.TapCount++
			existing.LastTagID = params.TagID
		}
		if params.BatchID != nil {
			existing.LastBatchID = params.BatchID
		}
		copied := *existing
		return &copied, nil
	}

	visitor := &Visitor{
		ID:                uuid.New(),
		AnonVisitorID:     params.AnonVisitorID,
		FirstSeenAt:       now,
		LastSeenAt:        now,
		IPHashLastSeen:    params.IPHash,
		UserAgentLastSeen: params.UserAgent,
		LastTagID:         params.TagID,
		LastBatchID:       params.BatchID,
	}
	if params.TagID != nil {
		visitor.TapCount = 1
	}
	f.byAnonID[params.AnonVisitorID] = visitor
	copied := *visitor
	return &copied, nil
}

func (f *fakeRepository) GetByAnonVisitorID(anonVisitorID string) (*Visitor, error) {
	if v, ok := f.byAnonID[anonVisitorID]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetByID(id uuid.UUID) (*Visitor, error) {
	for _, v := range f.byAnonID {
		if v.ID == id {
			copied := *v
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetByUserID(userID uuid.UUID) (*Visitor, error) {
	for _, v := range f.byAnonID {
		if v.UserID != nil && *v.UserID == userID {
			copied := *v
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SetUserID(visitorID uuid.UUID, userID uuid.UUID) error {
	for _, v := range f.byAnonID {
		if v.ID == visitorID {
			v.UserID = &userID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) Create(visitor *Visitor) error {
	f.byAnonID[visitor.AnonVisitorID] = visitor
	return nil
}

func discardLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestUpsertTapIncrementsTapCount(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, discardLogger())

	tagID := uuid.New()
	batchID := uuid.New()

	first, err := svc.UpsertTap("anon-visitor-0001", tagID, batchID, "hash-a", "ua")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TapCount)
	require.NotNil(t, first.LastTagID)
	assert.Equal(t, tagID, *first.LastTagID)

	second, err := svc.UpsertTap("anon-visitor-0001", tagID, batchID, "hash-a", "ua")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.TapCount)
	assert.Equal(t, first.ID, second.ID)
}

func TestUpsertPingNeverChangesTapCount(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, discardLogger())

	created, err := svc.UpsertPing("anon-visitor-0002", "hash-a", "ua")
	require.NoError(t, err)
	assert.Equal(t, int64(0), created.TapCount)
	assert.Nil(t, created.LastTagID)

	_, err = svc.UpsertTap("anon-visitor-0002", uuid.New(), uuid.New(), "hash-a", "ua")
	require.NoError(t, err)

	pinged, err := svc.UpsertPing("anon-visitor-0002", "hash-b", "ua2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), pinged.TapCount, "ping must not inflate the tap counter")
	assert.Equal(t, "hash-b", pinged.IPHashLastSeen)
}

func TestPingReturnsClaimedUserID(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, discardLogger())

	resp, err := svc.Ping(PingRequest{AnonVisitorID: "anon-visitor-0003"}, "hash-a", "ua")
	require.NoError(t, err)
	assert.Nil(t, resp.ClaimedUserID)

	userID := uuid.New()
	visitor := repo.byAnonID["anon-visitor-0003"]
	require.NoError(t, repo.SetUserID(visitor.ID, userID))

	resp, err = svc.Ping(PingRequest{AnonVisitorID: "anon-visitor-0003"}, "hash-a", "ua")
	require.NoError(t, err)
	require.NotNil(t, resp.ClaimedUserID)
	assert.Equal(t, userID.String(), *resp.ClaimedUserID)
}

func TestGetByAnonVisitorIDNotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, discardLogger())

	_, err := svc.GetByAnonVisitorID("never-seen")
	assert.ErrorIs(t, err, ErrVisitorNotFound)
}
