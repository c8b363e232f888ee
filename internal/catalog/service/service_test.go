package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/quotation/internal/catalog/cache"
	"github.com/smallbiznis/quotation/internal/catalog/domain"
	"github.com/smallbiznis/quotation/internal/catalog/repository"
	"github.com/smallbiznis/quotation/internal/clock"
	"github.com/smallbiznis/quotation/internal/config"
	"github.com/smallbiznis/quotation/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	failGet bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string][]byte{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet {
		return nil, false, errors.New("connection refused")
	}
	raw, ok := m.entries[key]
	return raw, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func setupService(t *testing.T, store cache.Store) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ServicePackage{}, &domain.AddOn{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Clock:  clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Config: config.Config{CatalogCacheTTLSeconds: 60},
		Cache:  store,
	})
	return svc, db
}

func TestCreateServiceNormalizesInput(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	days := 45
	pkg, err := svc.CreateService(ctx, domain.CreateServiceRequest{
		Category:     "Web Development",
		Name:         "  Starter Site ",
		Price:        150,
		Features:     []string{"design", " ", "hosting"},
		DeliveryTime: &days,
		AddOns:       []domain.AddOn{{Name: "SEO", Price: 75, Category: "Marketing"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pkg.ID)
	assert.Equal(t, "Web Development", pkg.Category)
	assert.Equal(t, "web-development", pkg.CategoryKey)
	assert.Equal(t, "Starter Site", pkg.Name)
	assert.Equal(t, []string{"design", "hosting"}, []string(pkg.Features))
	require.Len(t, pkg.AddOns, 1)
	assert.NotEmpty(t, pkg.AddOns[0].ID)
	assert.Equal(t, "Marketing", pkg.AddOns[0].Category)

	got, err := svc.GetService(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, pkg.Name, got.Name)
	assert.Equal(t, "Web Development", got.Category)
	assert.Equal(t, "web-development", got.CategoryKey)
}

func TestCreateServiceRejectsInvalidInput(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateService(ctx, domain.CreateServiceRequest{Category: "web", Price: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.CreateService(ctx, domain.CreateServiceRequest{Name: "Site", Price: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	_, err = svc.CreateService(ctx, domain.CreateServiceRequest{Name: "Site", Category: "web", Price: -1})
	assert.ErrorIs(t, err, pricing.ErrInvalidPrice)

	zero := 0
	_, err = svc.CreateService(ctx, domain.CreateServiceRequest{Name: "Site", Category: "web", Price: 10, DeliveryTime: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidDeliveryTime)

	tooLong := domain.MaxDeliveryDays + 1
	_, err = svc.CreateService(ctx, domain.CreateServiceRequest{Name: "Site", Category: "web", Price: 10, DeliveryTime: &tooLong})
	assert.ErrorIs(t, err, domain.ErrInvalidDeliveryTime)

	_, err = svc.CreateService(ctx, domain.CreateServiceRequest{Name: "Site", Category: " -- ", Price: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	_, err := svc.GetService(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)

	_, err = svc.GetAddOn(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAddOnNotFound)

	assert.ErrorIs(t, svc.DeleteAddOn(ctx, "missing"), domain.ErrAddOnNotFound)
}

func TestListAddOnsReadsThroughCache(t *testing.T) {
	store := newMemoryStore()
	svc, db := setupService(t, store)
	ctx := context.Background()

	_, err := svc.SaveAddOn(ctx, domain.SaveAddOnRequest{ID: "a1", Name: "SEO", Price: 75})
	require.NoError(t, err)

	items, err := svc.ListAddOns(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, store.has(cache.KeyAddOns))

	// Bypass the service so only the cached snapshot can answer.
	require.NoError(t, db.Exec(`DELETE FROM add_ons`).Error)

	items, err = svc.ListAddOns(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.SaveAddOn(ctx, domain.SaveAddOnRequest{ID: "a2", Name: "Logo", Price: 50})
	require.NoError(t, err)
	assert.False(t, store.has(cache.KeyAddOns))

	items, err = svc.ListAddOns(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a2", items[0].ID)
}

func TestCacheErrorsFallBackToStore(t *testing.T) {
	store := newMemoryStore()
	store.failGet = true
	svc, _ := setupService(t, store)
	ctx := context.Background()

	_, err := svc.CreateService(ctx, domain.CreateServiceRequest{Name: "Site", Category: "web", Price: 100})
	require.NoError(t, err)

	items, err := svc.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, store.gets)
}
