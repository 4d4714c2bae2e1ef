package lists

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taplist/internal/shared/config"
	"taplist/internal/shared/constants"
	"taplist/pkg/cache"
	"taplist/pkg/logger"
)

var (
	ErrListNotFound   = errors.New("list not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrItemExists     = errors.New("item already on the list")
	ErrNoPin          = errors.New("list has no share pin")
	ErrPinMismatch    = errors.New("incorrect pin")
	ErrPinThrottled   = errors.New("too many pin attempts, try again later")
	ErrOwnerAmbiguous = errors.New("exactly one of visitor or user must own a list")
)

// ListOwner identifies who a list request acts for: an anonymous visitor or
// an authenticated user, never both.
type ListOwner struct {
	VisitorID *uuid.UUID
	UserID    *uuid.UUID
}

func (o ListOwner) valid() bool {
	return (o.VisitorID != nil) != (o.UserID != nil)
}

type Service interface {
	GetOrCreateList(owner ListOwner) (*ListResponse, error)
	AddItem(owner ListOwner, req AddItemRequest) (*ListItemResponse, error)
	UpdateItem(owner ListOwner, itemID uuid.UUID, req UpdateItemRequest) (*ListItemResponse, error)
	DeleteItem(owner ListOwner, itemID uuid.UUID) error
	SharePin(owner ListOwner) (*SharePinResponse, error)
	AccessByPin(ctx context.Context, req AccessByPinRequest, clientIP string) (*ListResponse, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	cfg   *config.AttributionConfig
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, cfg *config.AttributionConfig, log *logger.Logger) Service {
	return &service{repo: repo, cache: cacheService, cfg: cfg, log: log}
}

func (s *service) loadList(owner ListOwner) (*List, error) {
	if !owner.valid() {
		return nil, ErrOwnerAmbiguous
	}
	if owner.UserID != nil {
		return s.repo.GetByUserID(*owner.UserID)
	}
	return s.repo.GetByVisitorID(*owner.VisitorID)
}

func (s *service) getOrCreate(owner ListOwner) (*List, error) {
	list, err := s.loadList(owner)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load list: %w", err)
	}

	list = &List{
		VisitorID: owner.VisitorID,
		UserID:    owner.UserID,
		Name:      "My List",
	}
	if err := s.repo.Create(list); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return list, nil
}

func (s *service) GetOrCreateList(owner ListOwner) (*ListResponse, error) {
	list, err := s.getOrCreate(owner)
	if err != nil {
		return nil, err
	}
	resp := list.ToResponse()
	return &resp, nil
}

func (s *service) AddItem(owner ListOwner, req AddItemRequest) (*ListItemResponse, error) {
	list, err := s.getOrCreate(owner)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if _, err := s.repo.GetItemByName(list.ID, name); err == nil {
		return nil, ErrItemExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing item: %w", err)
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	item := &ListItem{
		ListID:   list.ID,
		Name:     name,
		Category: strings.TrimSpace(req.Category),
		Quantity: quantity,
	}
	if err := s.repo.AddItem(item); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	resp := item.ToResponse()
	return &resp, nil
}

func (s *service) UpdateItem(owner ListOwner, itemID uuid.UUID, req UpdateItemRequest) (*ListItemResponse, error) {
	list, err := s.loadList(owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to load list: %w", err)
	}

	item, err := s.repo.GetItem(list.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Purchased != nil {
		updates["purchased"] = *req.Purchased
		if *req.Purchased {
			updates["purchased_at"] = gorm.Expr("NOW()")
		} else {
			updates["purchased_at"] = nil
		}
	}

	if err := s.repo.UpdateItem(item.ID, updates); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	updated, err := s.repo.GetItem(list.ID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload item: %w", err)
	}

	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) DeleteItem(owner ListOwner, itemID uuid.UUID) error {
	list, err := s.loadList(owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListNotFound
		}
		return fmt.Errorf("failed to load list: %w", err)
	}

	if _, err := s.repo.GetItem(list.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to load item: %w", err)
	}

	return s.repo.DeleteItem(list.ID, itemID)
}

// SharePin mints a 6-digit pin, stores only its bcrypt hash, and returns the
// pin exactly once.
func (s *service) SharePin(owner ListOwner) (*SharePinResponse, error) {
	list, err := s.getOrCreate(owner)
	if err != nil {
		return nil, err
	}

	pin, err := generatePin()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	if err := s.repo.SetPinHash(list.ID, string(hash)); err != nil {
		return nil, fmt.Errorf("failed to store pin: %w", err)
	}

	return &SharePinResponse{ListID: list.ID.String(), Pin: pin}, nil
}

// AccessByPin verifies a share pin under a per-IP attempt throttle. The
// counter lives in Redis with an expiry anchored at the first attempt; once
// the budget is spent every attempt fails fast until the window lapses.
func (s *service) AccessByPin(ctx context.Context, req AccessByPinRequest, clientIP string) (*ListResponse, error) {
	attempts, err := s.cache.Increment(ctx, constants.THROTTLE_KEY_PIN_ATTEMPTS+clientIP, s.cfg.PinAttemptWindow)
	if err != nil {
		// Redis down: log and let the attempt through, bcrypt is the real gate.
		s.log.LogDegradedStep(ctx, "pin_throttle", err)
	} else if attempts > int64(s.cfg.PinMaxAttempts) {
		s.log.LogPinThrottled(ctx, clientIP)
		return nil, ErrPinThrottled
	}

	listID, err := uuid.Parse(req.ListID)
	if err != nil {
		return nil, ErrListNotFound
	}

	list, err := s.repo.GetByID(listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to load list: %w", err)
	}

	if list.PinHash == nil {
		return nil, ErrNoPin
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*list.PinHash), []byte(req.Pin)); err != nil {
		return nil, ErrPinMismatch
	}

	resp := list.ToResponse()
	return &resp, nil
}

func generatePin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
