package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mara-shop/internal/cart"
	"github.com/mara-shop/internal/logger"

	lru "github.com/hashicorp/golang-lru"
)

const defaultCartCacheSize = 1024

// CartServiceOptions 购物车服务配置
type CartServiceOptions struct {
	Pricing      cart.Pricing
	EnforceStock bool
	// CacheSize 进程内缓存的购物车引擎数量上限
	CacheSize int
}

// AddCartItemInput 加购输入
type AddCartItemInput struct {
	ProductID string
	Quantity  int
	Color     string
	Size      string
}

// CartDetail 购物车详情（用于响应）
type CartDetail struct {
	Items     []cart.Line      `json:"items"`
	Summary   cart.SummaryView `json:"summary"`
	ItemCount int              `json:"item_count"`
	// Warning 持久化失败提示，本次变更仅在内存中生效
	Warning string `json:"warning,omitempty"`
}

// CartService 购物车服务，按会话维护购物车引擎
// 同一会话的读写与结算在进程内按会话串行执行。
type CartService struct {
	store   cart.Store
	catalog cart.Catalog
	opts    CartServiceOptions
	engines *lru.Cache
	locks   *sessionLocks
}

// NewCartService 创建购物车服务
func NewCartService(store cart.Store, catalog cart.Catalog, opts CartServiceOptions) (*CartService, error) {
	if store == nil || catalog == nil {
		return nil, cart.ErrNilDependency
	}
	if err := opts.Pricing.Validate(); err != nil {
		return nil, err
	}
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCartCacheSize
	}
	engines, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CartService{
		store:   store,
		catalog: catalog,
		opts:    opts,
		engines: engines,
		locks:   newSessionLocks(),
	}, nil
}

// WithSession 持有会话锁执行 fn。
// 购物车读取失败时不执行 fn 并返回 ErrCartUnavailable，避免空购物车覆盖已保存的数据。
func (s *CartService) WithSession(ctx context.Context, sessionKey string, fn func(engine *cart.Engine) error) error {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return ErrSessionRequired
	}
	unlock := s.locks.lock(sessionKey)
	defer unlock()

	engine, warning, err := s.engineWithWarning(ctx, sessionKey)
	if err != nil {
		return err
	}
	if warning != nil {
		logger.Warnw("cart_mutation_refused", "session", sessionKey, "error", warning)
		return fmt.Errorf("%w: %w", ErrCartUnavailable, warning)
	}
	return fn(engine)
}

// engine 获取会话对应的购物车引擎，首次访问时从存储恢复。
// 恢复失败时返回空购物车与持久化告警，且不缓存该引擎，下次访问重新读取。
// 调用方需持有会话锁。
func (s *CartService) engine(ctx context.Context, sessionKey string) (*cart.Engine, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return nil, ErrSessionRequired
	}
	if cached, ok := s.engines.Get(sessionKey); ok {
		return cached.(*cart.Engine), nil
	}
	engine, err := cart.New(ctx, s.catalog, s.store.Session(sessionKey), cart.Options{
		Pricing:      s.opts.Pricing,
		EnforceStock: s.opts.EnforceStock,
		Logger:       logger.SW("session", sessionKey),
	})
	if engine == nil || err != nil {
		return engine, err
	}
	engine.Subscribe(func(event cart.Event) {
		logger.Debugw("cart_changed",
			"session", sessionKey,
			"kind", string(event.Kind),
			"product_id", event.ProductID,
			"item_count", event.ItemCount,
		)
	})
	s.engines.Add(sessionKey, engine)
	return engine, nil
}

// Release 释放会话：移除缓存的引擎，存储支持时一并删除持久化数据
func (s *CartService) Release(ctx context.Context, sessionKey string) error {
	sessionKey = strings.TrimSpace(sessionKey)
	unlock := s.locks.lock(sessionKey)
	defer unlock()
	return s.release(ctx, sessionKey)
}

// release 调用方需持有会话锁
func (s *CartService) release(ctx context.Context, sessionKey string) error {
	s.forget(sessionKey)
	deleter, ok := s.store.(cart.Deleter)
	if !ok {
		return nil
	}
	return deleter.Delete(ctx, sessionKey)
}

func (s *CartService) forget(sessionKey string) {
	s.engines.Remove(strings.TrimSpace(sessionKey))
}

// CachedSessions 当前缓存的会话数
func (s *CartService) CachedSessions() int {
	return s.engines.Len()
}

// Pricing 计价配置
func (s *CartService) Pricing() cart.Pricing {
	return s.opts.Pricing
}

// Detail 获取购物车详情；读取失败时返回空购物车并附带告警
func (s *CartService) Detail(ctx context.Context, sessionKey string) (*CartDetail, error) {
	var detail *CartDetail
	err := s.read(ctx, sessionKey, func(engine *cart.Engine, warning error) error {
		var err error
		detail, err = s.detail(ctx, engine, warning)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// AddItem 加入购物车
func (s *CartService) AddItem(ctx context.Context, sessionKey string, input AddCartItemInput) (*CartDetail, error) {
	variant := &cart.Variant{Color: strings.TrimSpace(input.Color), Size: strings.TrimSpace(input.Size)}
	if variant.IsZero() {
		variant = nil
	}
	return s.mutate(ctx, sessionKey, func(engine *cart.Engine) error {
		_, err := engine.AddItem(ctx, input.ProductID, input.Quantity, variant)
		return err
	})
}

// RemoveItem 删除购物车行
func (s *CartService) RemoveItem(ctx context.Context, sessionKey, productID string) (*CartDetail, error) {
	return s.mutate(ctx, sessionKey, func(engine *cart.Engine) error {
		return engine.RemoveItem(ctx, productID)
	})
}

// IncrementItem 数量加一
func (s *CartService) IncrementItem(ctx context.Context, sessionKey, productID string) (*CartDetail, error) {
	return s.mutate(ctx, sessionKey, func(engine *cart.Engine) error {
		return engine.IncrementQuantity(ctx, productID)
	})
}

// DecrementItem 数量减一（最少为 1）
func (s *CartService) DecrementItem(ctx context.Context, sessionKey, productID string) (*CartDetail, error) {
	return s.mutate(ctx, sessionKey, func(engine *cart.Engine) error {
		return engine.DecrementQuantity(ctx, productID)
	})
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sessionKey string) (*CartDetail, error) {
	return s.mutate(ctx, sessionKey, func(engine *cart.Engine) error {
		return engine.Clear(ctx)
	})
}

// ItemCount 购物车商品件数
func (s *CartService) ItemCount(ctx context.Context, sessionKey string) (int, error) {
	count := 0
	err := s.read(ctx, sessionKey, func(engine *cart.Engine, _ error) error {
		count = engine.ItemCount()
		return nil
	})
	return count, err
}

// Summary 计算购物车汇总
func (s *CartService) Summary(ctx context.Context, sessionKey string) (cart.Summary, error) {
	var summary cart.Summary
	err := s.read(ctx, sessionKey, func(engine *cart.Engine, _ error) error {
		var err error
		summary, err = engine.ComputeSummary(ctx)
		return err
	})
	return summary, err
}

// read 持有会话锁读取购物车，读取失败的告警交给 fn 处理
func (s *CartService) read(ctx context.Context, sessionKey string, fn func(engine *cart.Engine, warning error) error) error {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return ErrSessionRequired
	}
	unlock := s.locks.lock(sessionKey)
	defer unlock()

	engine, warning, err := s.engineWithWarning(ctx, sessionKey)
	if err != nil {
		return err
	}
	return fn(engine, warning)
}

func (s *CartService) mutate(ctx context.Context, sessionKey string, fn func(engine *cart.Engine) error) (*CartDetail, error) {
	var detail *CartDetail
	err := s.WithSession(ctx, sessionKey, func(engine *cart.Engine) error {
		warning, err := splitWarning(fn(engine))
		if err != nil {
			return err
		}
		detail, err = s.detail(ctx, engine, warning)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *CartService) engineWithWarning(ctx context.Context, sessionKey string) (*cart.Engine, error, error) {
	engine, err := s.engine(ctx, sessionKey)
	warning, err := splitWarning(err)
	if err != nil {
		return nil, nil, err
	}
	return engine, warning, nil
}

func (s *CartService) detail(ctx context.Context, engine *cart.Engine, warning error) (*CartDetail, error) {
	summary, err := engine.ComputeSummary(ctx)
	if err != nil {
		return nil, err
	}
	detail := &CartDetail{
		Items:     engine.Lines(),
		Summary:   summary.View(),
		ItemCount: summary.ItemCount,
	}
	if detail.Items == nil {
		detail.Items = []cart.Line{}
	}
	if warning != nil {
		detail.Warning = warning.Error()
	}
	return detail, nil
}

// splitWarning 拆分持久化告警与真正的错误
func splitWarning(err error) (warning error, fatal error) {
	if err == nil {
		return nil, nil
	}
	if cart.IsPersistenceWarning(err) {
		return err, nil
	}
	return nil, err
}
