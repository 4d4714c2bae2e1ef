package batches

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBatchNotFound = errors.New("batch not found")
	ErrSlugTaken     = errors.New("a batch with a similar name already exists")
)

type Service interface {
	CreateBatch(adminID uuid.UUID, req CreateBatchRequest) (*BatchResponse, error)
	GetBatchByID(id uuid.UUID) (*BatchResponse, error)
	GetBatchBySlug(slug string) (*TagBatch, error)
	UpdateBatch(id uuid.UUID, req UpdateBatchRequest) (*BatchResponse, error)
	GetAllBatches(query BatchListQuery) (*PaginatedBatches, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// generateSlug derives a URL-safe slug from a batch name
func generateSlug(name string) string {
	slug := strings.ToLower(name)

	reg := regexp.MustCompile(`[^\w\s-]`)
	slug = reg.ReplaceAllString(slug, "")

	reg = regexp.MustCompile(`[\s-]+`)
	slug = reg.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}

func (s *service) CreateBatch(adminID uuid.UUID, req CreateBatchRequest) (*BatchResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New("batch name cannot be empty")
	}

	slug := generateSlug(name)
	if slug == "" {
		return nil, errors.New("batch name must contain at least one alphanumeric character")
	}

	existing, err := s.repo.GetBySlug(slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing batch: %w", err)
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	batch := &TagBatch{
		Slug:        slug,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   adminID,
	}

	if err := s.repo.Create(batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	response := batch.ToResponse()
	return &response, nil
}

func (s *service) GetBatchByID(id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	response := batch.ToResponse()
	return &response, nil
}

// GetBatchBySlug returns the raw batch record; the tap pipeline needs the
// model rather than a response DTO.
func (s *service) GetBatchBySlug(slug string) (*TagBatch, error) {
	batch, err := s.repo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return batch, nil
}

func (s *service) UpdateBatch(id uuid.UUID, req UpdateBatchRequest) (*BatchResponse, error) {
	// Slug is immutable after creation: only name and description change.
	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.New("batch name cannot be empty")
		}
		updates["name"] = name
	}

	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}

	updated, err := s.repo.Update(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to update batch: %w", err)
	}

	response := updated.ToResponse()
	return &response, nil
}

func (s *service) GetAllBatches(query BatchListQuery) (*PaginatedBatches, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	result, totalCount, err := s.repo.GetAll(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get batches: %w", err)
	}

	responses := make([]BatchResponse, len(result))
	for i, batch := range result {
		responses[i] = batch.ToResponse()
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(query.Limit)))

	return &PaginatedBatches{
		Batches:    responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}, nil
}
