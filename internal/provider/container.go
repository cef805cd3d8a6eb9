package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/mara-shop/internal/cache"
	"github.com/mara-shop/internal/cart"
	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/constants"
	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/models"
	"github.com/mara-shop/internal/queue"
	"github.com/mara-shop/internal/repository"
	"github.com/mara-shop/internal/service"
	"github.com/mara-shop/internal/session"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ProductRepo      repository.ProductRepository
	OrderRepo        repository.OrderRepository
	CartSnapshotRepo repository.CartSnapshotRepository

	// Cart
	Catalog        *cache.CachedCatalog
	CartStore      cart.Store
	CartStoreName  string
	SessionManager *session.Manager

	// Services
	ProductService *service.ProductService
	CartService    *service.CartService
	OrderService   *service.OrderService
}

// NewContainer 初始化容器，依赖缺失时直接 panic
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c, err := Build(cfg, models.DB, queueClient)
	if err != nil {
		logger.Errorw("provider_build_container_failed", "error", err)
		panic(err)
	}
	return c
}

// Build 使用给定数据库与队列客户端组装容器
func Build(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) (*Container, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("provider: config and database are required")
	}
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化购物车依赖
	if err := c.initCart(); err != nil {
		return nil, err
	}

	// 3. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close 释放队列客户端与 Redis 连接
func (c *Container) Close() error {
	var errs []error
	if c != nil && c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close queue client: %w", err))
		}
	}
	if err := cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CartSnapshotRepo = repository.NewCartSnapshotRepository(db)
}

func (c *Container) initCart() error {
	ttl := time.Duration(c.Config.Redis.ProductTTLSeconds) * time.Second
	c.Catalog = cache.NewCachedCatalog(c.ProductRepo, ttl)
	c.CartStore, c.CartStoreName = selectCartStore(c.Config.Cart, c.CartSnapshotRepo)
	logger.Infow("provider_cart_store_selected", "store", c.CartStoreName)

	manager, err := session.NewManager(c.Config.Session)
	if err != nil {
		return err
	}
	c.SessionManager = manager
	return nil
}

func (c *Container) initServices() error {
	pricing, err := c.Config.Cart.ToPricing()
	if err != nil {
		return err
	}
	c.ProductService = service.NewProductService(c.ProductRepo, c.Catalog)
	c.CartService, err = service.NewCartService(c.CartStore, c.Catalog, service.CartServiceOptions{
		Pricing:      pricing,
		EnforceStock: c.Config.Cart.EnforceStock,
		CacheSize:    c.Config.Cart.SessionCacheSize,
	})
	if err != nil {
		return err
	}
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.CartService, c.QueueClient)
	return nil
}

// selectCartStore 按配置选择购物车持久化后端；redis 未启用时退回内存
func selectCartStore(cfg config.CartConfig, snapshots repository.CartSnapshotRepository) (cart.Store, string) {
	switch cfg.Store {
	case constants.CartStoreMemory:
		return cart.NewMemoryStore(), constants.CartStoreMemory
	case constants.CartStoreRedis:
		if !cache.Enabled() {
			logger.Warnw("provider_cart_store_redis_disabled", "fallback", constants.CartStoreMemory)
			return cart.NewMemoryStore(), constants.CartStoreMemory
		}
		ttl := time.Duration(cfg.RedisTTLHours) * time.Hour
		return cache.NewCartStore(cache.Client(), cache.Prefix(), ttl), constants.CartStoreRedis
	case constants.CartStoreDatabase, "":
		return snapshots, constants.CartStoreDatabase
	default:
		logger.Warnw("provider_cart_store_unknown", "store", cfg.Store, "fallback", constants.CartStoreDatabase)
		return snapshots, constants.CartStoreDatabase
	}
}
