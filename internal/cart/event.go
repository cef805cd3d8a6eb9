package cart

// EventKind 变更类型
type EventKind string

const (
	EventItemAdded       EventKind = "item_added"
	EventItemRemoved     EventKind = "item_removed"
	EventQuantityChanged EventKind = "quantity_changed"
	EventCleared         EventKind = "cleared"
)

// Event 购物车变更通知
type Event struct {
	Kind      EventKind
	ProductID string
	ItemCount int
	// Warning 非空表示本次变更未能持久化
	Warning error
}

// Listener 变更监听器，在变更完成后同步调用
type Listener func(Event)
