package visitors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taplist/pkg/logger"
)

var (
	ErrVisitorNotFound = errors.New("visitor not found")
)

type Service interface {
	// UpsertTap records a genuine tap: increments tap_count and refreshes
	// last-seen metadata.
	UpsertTap(anonVisitorID string, tagID, batchID uuid.UUID, ipHash, userAgent string) (*Visitor, error)
	// UpsertPing refreshes presence only; tap_count is untouched.
	UpsertPing(anonVisitorID string, ipHash, userAgent string) (*Visitor, error)
	GetByAnonVisitorID(anonVisitorID string) (*Visitor, error)
	Ping(req PingRequest, ipHash, userAgent string) (*VisitorResponse, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) UpsertTap(anonVisitorID string, tagID, batchID uuid.UUID, ipHash, userAgent string) (*Visitor, error) {
	visitor, err := s.repo.Upsert(UpsertParams{
		AnonVisitorID: anonVisitorID,
		TagID:         &tagID,
		BatchID:       &batchID,
		IPHash:        ipHash,
		UserAgent:     userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert visitor: %w", err)
	}
	return visitor, nil
}

func (s *service) UpsertPing(anonVisitorID string, ipHash, userAgent string) (*Visitor, error) {
	visitor, err := s.repo.Upsert(UpsertParams{
		AnonVisitorID: anonVisitorID,
		IPHash:        ipHash,
		UserAgent:     userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert visitor: %w", err)
	}
	return visitor, nil
}

func (s *service) GetByAnonVisitorID(anonVisitorID string) (*Visitor, error) {
	visitor, err := s.repo.GetByAnonVisitorID(anonVisitorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	return visitor, nil
}

// Ping handles the public identity ping. It keeps presence fresh on every
// page load and tells the client whether its anonymous id is already claimed.
func (s *service) Ping(req PingRequest, ipHash, userAgent string) (*VisitorResponse, error) {
	visitor, err := s.UpsertPing(req.AnonVisitorID, ipHash, userAgent)
	if err != nil {
		return nil, err
	}

	resp := visitor.ToResponse()
	return &resp, nil
}
