package lists

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taplist/internal/shared/config"
	"taplist/pkg/logger"
)

type fakeListRepo struct {
	lists map[uuid.UUID]*List
	items map[uuid.UUID]*ListItem
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{
		lists: make(map[uuid.UUID]*List),
		items: make(map[uuid.UUID]*ListItem),
	}
}

func (f *fakeListRepo) Create(list *List) error {
	list.ID = uuid.New()
	f.lists[list.ID] = list
	return nil
}

func (f *fakeListRepo) withItems(list List) *List {
	list.Items = nil
	for _, item := range f.items {
		if item.ListID == list.ID {
			list.Items = append(list.Items, *item)
		}
	}
	return &list
}

func (f *fakeListRepo) GetByID(id uuid.UUID) (*List, error) {
	if l, ok := f.lists[id]; ok {
		return f.withItems(*l), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeListRepo) GetByVisitorID(visitorID uuid.UUID) (*List, error) {
	for _, l := range f.lists {
		if l.VisitorID != nil && *l.VisitorID == visitorID {
			return f.withItems(*l), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeListRepo) GetByUserID(userID uuid.UUID) (*List, error) {
	for _, l := range f.lists {
		if l.UserID != nil && *l.UserID == userID {
			return f.withItems(*l), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeListRepo) AddItem(item *ListItem) error {
	item.ID = uuid.New()
	f.items[item.ID] = item
	return nil
}

func (f *fakeListRepo) GetItem(listID, itemID uuid.UUID) (*ListItem, error) {
	if item, ok := f.items[itemID]; ok && item.ListID == listID {
		copied := *item
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeListRepo) GetItemByName(listID uuid.UUID, name string) (*ListItem, error) {
	for _, item := range f.items {
		if item.ListID == listID && item.Name == name {
			copied := *item
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeListRepo) UpdateItem(itemID uuid.UUID, updates map[string]interface{}) error {
	item, ok := f.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		item.Name = name
	}
	if q, ok := updates["quantity"].(int); ok {
		item.Quantity = q
	}
	if p, ok := updates["purchased"].(bool); ok {
		item.Purchased = p
	}
	return nil
}

func (f *fakeListRepo) DeleteItem(listID, itemID uuid.UUID) error {
	delete(f.items, itemID)
	return nil
}

func (f *fakeListRepo) SetPinHash(listID uuid.UUID, pinHash string) error {
	list, ok := f.lists[listID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	list.PinHash = &pinHash
	return nil
}

// fakeCache implements just enough of the cache service for throttle tests.
type fakeCache struct {
	counts map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{counts: make(map[string]int64)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error { return nil }
func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (f *fakeCache) Delete(ctx context.Context, key string) error         { return nil }
func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (f *fakeCache) Exists(ctx context.Context, key string) bool          { return false }
func (f *fakeCache) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}
func (f *fakeCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	return nil
}
func (f *fakeCache) Ping(ctx context.Context) error { return nil }

func newListService(repo Repository, cacheService *fakeCache) Service {
	cfg := &config.AttributionConfig{
		PinMaxAttempts:   5,
		PinAttemptWindow: 10 * time.Minute,
	}
	log := &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	return NewService(repo, cacheService, cfg, log)
}

func TestAddItemRejectsDuplicateName(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo, newFakeCache())

	visitorID := uuid.New()
	owner := ListOwner{VisitorID: &visitorID}

	_, err := svc.AddItem(owner, AddItemRequest{Name: "milk"})
	require.NoError(t, err)

	_, err = svc.AddItem(owner, AddItemRequest{Name: "milk"})
	assert.ErrorIs(t, err, ErrItemExists)
}

func TestOwnerMustBeExclusive(t *testing.T) {
	svc := newListService(newFakeListRepo(), newFakeCache())

	visitorID := uuid.New()
	userID := uuid.New()

	_, err := svc.GetOrCreateList(ListOwner{VisitorID: &visitorID, UserID: &userID})
	assert.ErrorIs(t, err, ErrOwnerAmbiguous)

	_, err = svc.GetOrCreateList(ListOwner{})
	assert.ErrorIs(t, err, ErrOwnerAmbiguous)
}

func TestAccessByPinHappyPath(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo, newFakeCache())

	visitorID := uuid.New()
	owner := ListOwner{VisitorID: &visitorID}

	shared, err := svc.SharePin(owner)
	require.NoError(t, err)
	require.Len(t, shared.Pin, 6)

	list, err := svc.AccessByPin(context.Background(), AccessByPinRequest{
		ListID: shared.ListID,
		Pin:    shared.Pin,
	}, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, shared.ListID, list.ID)
}

func TestAccessByPinWrongPin(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo, newFakeCache())

	visitorID := uuid.New()
	shared, err := svc.SharePin(ListOwner{VisitorID: &visitorID})
	require.NoError(t, err)

	wrong := "000000"
	if shared.Pin == wrong {
		wrong = "000001"
	}

	_, err = svc.AccessByPin(context.Background(), AccessByPinRequest{
		ListID: shared.ListID,
		Pin:    wrong,
	}, "203.0.113.9")
	assert.ErrorIs(t, err, ErrPinMismatch)
}

func TestAccessByPinThrottleKicksIn(t *testing.T) {
	repo := newFakeListRepo()
	cacheService := newFakeCache()
	svc := newListService(repo, cacheService)

	visitorID := uuid.New()
	shared, err := svc.SharePin(ListOwner{VisitorID: &visitorID})
	require.NoError(t, err)

	wrong := "999999"
	if shared.Pin == wrong {
		wrong = "999998"
	}
	req := AccessByPinRequest{ListID: shared.ListID, Pin: wrong}

	for i := 0; i < 5; i++ {
		_, err = svc.AccessByPin(context.Background(), req, "203.0.113.10")
		assert.ErrorIs(t, err, ErrPinMismatch)
	}

	// Sixth attempt inside the window is rejected before the pin is checked,
	// even with the correct pin.
	_, err = svc.AccessByPin(context.Background(), AccessByPinRequest{
		ListID: shared.ListID,
		Pin:    shared.Pin,
	}, "203.0.113.10")
	assert.ErrorIs(t, err, ErrPinThrottled)

	// A different IP has its own budget.
	_, err = svc.AccessByPin(context.Background(), AccessByPinRequest{
		ListID: shared.ListID,
		Pin:    shared.Pin,
	}, "203.0.113.11")
	assert.NoError(t, err)
}

func TestSharePinStoresOnlyHash(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo, newFakeCache())

	visitorID := uuid.New()
	shared, err := svc.SharePin(ListOwner{VisitorID: &visitorID})
	require.NoError(t, err)

	listID := uuid.MustParse(shared.ListID)
	stored := repo.lists[listID]
	require.NotNil(t, stored.PinHash)
	assert.NotEqual(t, shared.Pin, *stored.PinHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PinHash), []byte(shared.Pin)))
}
