package nfctags

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTagNotFound = errors.New("tag not found")
)

type Service interface {
	CreateTags(adminID uuid.UUID, req CreateTagRequest) ([]TagResponse, error)
	GetTagByID(id uuid.UUID) (*TagResponse, error)
	GetTagByPublicUUID(publicUUID uuid.UUID) (*NfcTag, error)
	UpdateTag(id uuid.UUID, req UpdateTagRequest) (*TagResponse, error)
	LinkUser(id uuid.UUID, userID uuid.UUID) (*TagResponse, error)
	UnlinkUser(id uuid.UUID) (*TagResponse, error)
	GetAllTags(query TagListQuery) (*PaginatedTags, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateTags creates Count tags in one batch (one print run produces many
// physical tags at once). Count defaults to 1.
func (s *service) CreateTags(adminID uuid.UUID, req CreateTagRequest) ([]TagResponse, error) {
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return nil, errors.New("invalid batch id")
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}

	label := strings.TrimSpace(req.Label)

	tags := make([]NfcTag, count)
	for i := range tags {
		tags[i] = NfcTag{
			PublicUUID: uuid.New(),
			BatchID:    batchID,
			Label:      label,
			Status:     StatusActive,
			CreatedBy:  adminID,
		}
	}

	if err := s.repo.CreateBatch(tags); err != nil {
		return nil, fmt.Errorf("failed to create tags: %w", err)
	}

	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = tag.ToResponse()
	}
	return responses, nil
}

func (s *service) GetTagByID(id uuid.UUID) (*TagResponse, error) {
	tag, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	response := tag.ToResponse()
	return &response, nil
}

// GetTagByPublicUUID returns the raw tag record for the tap pipeline.
func (s *service) GetTagByPublicUUID(publicUUID uuid.UUID) (*NfcTag, error) {
	tag, err := s.repo.GetByPublicUUID(publicUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

func (s *service) UpdateTag(id uuid.UUID, req UpdateTagRequest) (*TagResponse, error) {
	updates := make(map[string]interface{})

	if req.Label != nil {
		updates["label"] = strings.TrimSpace(*req.Label)
	}

	if req.Status != nil {
		status := Status(*req.Status)
		if !status.IsValid() {
			return nil, errors.New("invalid tag status")
		}
		updates["status"] = status
	}

	updated, err := s.repo.Update(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	response := updated.ToResponse()
	return &response, nil
}

func (s *service) LinkUser(id uuid.UUID, userID uuid.UUID) (*TagResponse, error) {
	updated, err := s.repo.Update(id, map[string]interface{}{"linked_user_id": userID})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to link tag: %w", err)
	}

	response := updated.ToResponse()
	return &response, nil
}

func (s *service) UnlinkUser(id uuid.UUID) (*TagResponse, error) {
	updated, err := s.repo.Update(id, map[string]interface{}{"linked_user_id": nil})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to unlink tag: %w", err)
	}

	response := updated.ToResponse()
	return &response, nil
}

func (s *service) GetAllTags(query TagListQuery) (*PaginatedTags, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 25
	}

	tags, totalCount, err := s.repo.GetAll(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}

	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = tag.ToResponse()
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(query.Limit)))

	return &PaginatedTags{
		Tags:       responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}, nil
}
