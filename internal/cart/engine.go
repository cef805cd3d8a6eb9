package cart

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/models"

	"go.uber.org/zap"
)

// Options 购物车引擎配置
type Options struct {
	Pricing Pricing
	// EnforceStock 开启后加购/加数量不得超过商品库存
	EnforceStock bool
	Logger       *zap.SugaredLogger
}

// Engine 购物车引擎
// 同一引擎上的调用按到达顺序串行执行，每次变更在返回前完成持久化。
type Engine struct {
	mu        sync.Mutex
	catalog   Catalog
	store     Persistence
	pricing   Pricing
	enforce   bool
	log       *zap.SugaredLogger
	lines     []Line
	listeners map[uint64]Listener
	nextSubID uint64
}

// New 创建引擎并从持久化数据恢复购物车。
// 数据缺失或损坏时以空购物车启动；读取失败时同样以空购物车启动并返回 *PersistenceWarning。
func New(ctx context.Context, catalog Catalog, store Persistence, opts Options) (*Engine, error) {
	if catalog == nil || store == nil {
		return nil, ErrNilDependency
	}
	if err := opts.Pricing.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logger.S()
	}
	e := &Engine{
		catalog:   catalog,
		store:     store,
		pricing:   opts.Pricing,
		enforce:   opts.EnforceStock,
		log:       log,
		listeners: make(map[uint64]Listener),
	}

	data, err := store.Load(ctx)
	if err != nil {
		e.log.Warnw("cart_load_failed", "error", err)
		return e, &PersistenceWarning{Op: "load", Err: err}
	}
	lines, err := decodeLines(data)
	if err != nil {
		e.log.Warnw("cart_blob_malformed", "error", err, "bytes", len(data))
		return e, nil
	}
	e.lines = lines
	return e, nil
}

// AddItem 加入购物车；已存在的商品累加数量，保留原有规格
func (e *Engine) AddItem(ctx context.Context, productID string, quantity int, variant *Variant) (Line, error) {
	productID = strings.TrimSpace(productID)
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}
	if productID == "" {
		return Line{}, ErrProductNotFound
	}
	product, err := e.lookup(ctx, productID)
	if err != nil {
		return Line{}, err
	}

	e.mu.Lock()
	idx := e.indexOf(productID)
	current := 0
	if idx >= 0 {
		current = e.lines[idx].Quantity
	}
	if current > math.MaxInt32-quantity {
		e.mu.Unlock()
		return Line{}, ErrInvalidQuantity
	}
	if e.enforce && current+quantity > product.Stock {
		e.mu.Unlock()
		return Line{}, ErrInsufficientStock
	}

	var line Line
	if idx >= 0 {
		e.lines[idx].Quantity += quantity
		line = e.lines[idx].clone()
	} else {
		line = Line{ProductID: productID, Quantity: quantity, Variant: variant.clone()}
		e.lines = append(e.lines, line.clone())
	}
	warning := e.persistLocked(ctx, "add_item")
	event := Event{Kind: EventItemAdded, ProductID: productID, ItemCount: e.itemCountLocked(), Warning: warning}
	listeners := e.listenersLocked()
	e.mu.Unlock()

	notify(listeners, event)
	return line, warning
}

// RemoveItem 删除购物车行，不存在时不报错
func (e *Engine) RemoveItem(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	e.mu.Lock()
	idx := e.indexOf(productID)
	if idx >= 0 {
		e.lines = append(e.lines[:idx], e.lines[idx+1:]...)
	}
	warning := e.persistLocked(ctx, "remove_item")
	listeners := e.changedListenersLocked(idx >= 0)
	event := Event{Kind: EventItemRemoved, ProductID: productID, ItemCount: e.itemCountLocked(), Warning: warning}
	e.mu.Unlock()

	notify(listeners, event)
	return warning
}

// IncrementQuantity 数量加一，不存在时不做任何变更
func (e *Engine) IncrementQuantity(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)

	var stock = -1
	if e.enforce {
		product, err := e.catalog.Lookup(ctx, productID)
		if err != nil {
			return fmt.Errorf("lookup product %s: %w", productID, err)
		}
		if product != nil {
			stock = product.Stock
		}
	}

	e.mu.Lock()
	changed := false
	if idx := e.indexOf(productID); idx >= 0 {
		next := e.lines[idx].Quantity + 1
		if next <= math.MaxInt32 && (stock < 0 || next <= stock) {
			e.lines[idx].Quantity = next
			changed = true
		}
	}
	warning := e.persistLocked(ctx, "increment_quantity")
	listeners := e.changedListenersLocked(changed)
	event := Event{Kind: EventQuantityChanged, ProductID: productID, ItemCount: e.itemCountLocked(), Warning: warning}
	e.mu.Unlock()

	notify(listeners, event)
	return warning
}

// DecrementQuantity 数量减一，最少保留 1，删除需显式调用 RemoveItem
func (e *Engine) DecrementQuantity(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	e.mu.Lock()
	changed := false
	if idx := e.indexOf(productID); idx >= 0 && e.lines[idx].Quantity > 1 {
		e.lines[idx].Quantity--
		changed = true
	}
	warning := e.persistLocked(ctx, "decrement_quantity")
	listeners := e.changedListenersLocked(changed)
	event := Event{Kind: EventQuantityChanged, ProductID: productID, ItemCount: e.itemCountLocked(), Warning: warning}
	e.mu.Unlock()

	notify(listeners, event)
	return warning
}

// Clear 清空购物车
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	changed := len(e.lines) > 0
	e.lines = nil
	warning := e.persistLocked(ctx, "clear")
	listeners := e.changedListenersLocked(changed)
	event := Event{Kind: EventCleared, Warning: warning}
	e.mu.Unlock()

	notify(listeners, event)
	return warning
}

// ComputeSummary 按商品当前数据计算金额汇总，不产生任何副作用
func (e *Engine) ComputeSummary(ctx context.Context) (Summary, error) {
	lines := e.Lines()
	priced := make([]SummaryLine, 0, len(lines))
	for _, line := range lines {
		product, err := e.catalog.Lookup(ctx, line.ProductID)
		if err != nil {
			return Summary{}, fmt.Errorf("lookup product %s: %w", line.ProductID, err)
		}
		priced = append(priced, priceLine(line, product))
	}
	return e.pricing.summarize(priced), nil
}

// ItemCount 购物车商品总件数
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.itemCountLocked()
}

// Lines 返回购物车行的副本
func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneLines(e.lines)
}

// Line 获取单个商品的购物车行
func (e *Engine) Line(productID string) (Line, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexOf(strings.TrimSpace(productID))
	if idx < 0 {
		return Line{}, false
	}
	return e.lines[idx].clone(), true
}

// Pricing 当前计价配置
func (e *Engine) Pricing() Pricing {
	return e.pricing
}

// Subscribe 订阅变更通知，返回取消订阅函数
func (e *Engine) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.listeners[id] = listener
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

func (e *Engine) lookup(ctx context.Context, productID string) (*models.Product, error) {
	product, err := e.catalog.Lookup(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("lookup product %s: %w", productID, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (e *Engine) indexOf(productID string) int {
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (e *Engine) itemCountLocked() int {
	count := 0
	for _, line := range e.lines {
		count += line.Quantity
	}
	return count
}

func (e *Engine) persistLocked(ctx context.Context, op string) error {
	data, err := encodeLines(e.lines)
	if err != nil {
		e.log.Errorw("cart_encode_failed", "op", op, "error", err)
		return &PersistenceWarning{Op: op, Err: err}
	}
	if err := e.store.Save(ctx, data); err != nil {
		e.log.Warnw("cart_persist_failed", "op", op, "error", err)
		return &PersistenceWarning{Op: op, Err: err}
	}
	return nil
}

func (e *Engine) listenersLocked() []Listener {
	if len(e.listeners) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(e.listeners))
	for id := uint64(0); id < e.nextSubID; id++ {
		if listener, ok := e.listeners[id]; ok {
			out = append(out, listener)
		}
	}
	return out
}

func (e *Engine) changedListenersLocked(changed bool) []Listener {
	if !changed {
		return nil
	}
	return e.listenersLocked()
}

func notify(listeners []Listener, event Event) {
	for _, listener := range listeners {
		listener(event)
	}
}
