package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/mara-shop/internal/cart"
	"github.com/mara-shop/internal/models"
	"github.com/mara-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, repo repository.ProductRepository, id, name, price, discount string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       id,
		Name:     name,
		Price:    models.MustMoney(price),
		Discount: decimal.RequireFromString(discount),
		Stock:    stock,
		IsActive: true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("seed product %s failed: %v", id, err)
	}
	return product
}

// flakyStore 可切换失败的内存存储
type flakyStore struct {
	mu       sync.Mutex
	inner    *cart.MemoryStore
	failLoad bool
	failSave bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{inner: cart.NewMemoryStore()}
}

func (s *flakyStore) set(load, save bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLoad, s.failSave = load, save
}

func (s *flakyStore) Session(key string) cart.Persistence {
	return &flakySession{store: s, inner: s.inner.Session(key)}
}

type flakySession struct {
	store *flakyStore
	inner cart.Persistence
}

func (f *flakySession) Load(ctx context.Context) ([]byte, error) {
	f.store.mu.Lock()
	fail := f.store.failLoad
	f.store.mu.Unlock()
	if fail {
		return nil, errors.New("store offline")
	}
	return f.inner.Load(ctx)
}

func (f *flakySession) Save(ctx context.Context, blob []byte) error {
	f.store.mu.Lock()
	fail := f.store.failSave
	f.store.mu.Unlock()
	if fail {
		return errors.New("store offline")
	}
	return f.inner.Save(ctx, blob)
}

type shopFixture struct {
	db       *gorm.DB
	products *repository.GormProductRepository
	orders   *repository.GormOrderRepository
	store    *flakyStore
	carts    *CartService
}

func newShopFixture(t *testing.T) *shopFixture {
	t.Helper()
	db := openServiceTestDB(t)
	products := repository.NewProductRepository(db)
	store := newFlakyStore()
	carts, err := NewCartService(store, products, CartServiceOptions{Pricing: cart.DefaultPricing(), CacheSize: 8})
	if err != nil {
		t.Fatalf("new cart service failed: %v", err)
	}
	seedProduct(t, products, "A", "Wireless Headphones", "100", "10", 5)
	seedProduct(t, products, "B", "Leather Backpack", "50", "0", 3)
	return &shopFixture{
		db:       db,
		products: products,
		orders:   repository.NewOrderRepository(db),
		store:    store,
		carts:    carts,
	}
}
