package repository

import (
	"strings"

	"github.com/mara-shop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNoAndEmail(orderNo, email string) (*models.Order, error)
	ListBySession(sessionKey string, page, pageSize int) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	Update(order *models.Order) error
	SetCommittedQuantity(itemID uint, quantity int) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return firstOrNil[models.Order](r.db.Preload("Items"), id)
}

// GetByOrderNoAndEmail 按订单号与邮箱查询订单（游客查单，邮箱不区分大小写）
func (r *GormOrderRepository) GetByOrderNoAndEmail(orderNo, email string) (*models.Order, error) {
	query := r.db.Preload("Items").Where("order_no = ? AND LOWER(email) = ?",
		strings.TrimSpace(orderNo), strings.ToLower(strings.TrimSpace(email)))
	return firstOrNil[models.Order](query)
}

// ListBySession 获取购物车会话下的订单
func (r *GormOrderRepository) ListBySession(sessionKey string, page, pageSize int) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("session_key = ?", sessionKey)

	return findPage[models.Order](query, pageQuery{
		Page:     page,
		PageSize: pageSize,
		Order:    "id desc",
		Preloads: []string{"Items"},
	})
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.Email != "" {
		query = query.Where("LOWER(email) = ?", strings.ToLower(filter.Email))
	}
	if filter.SessionKey != "" {
		query = query.Where("session_key = ?", filter.SessionKey)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	return findPage[models.Order](query, pageQuery{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Order:    "id desc",
		Preloads: []string{"Items"},
	})
}

// Update 保存订单主表字段（不含订单项）
func (r *GormOrderRepository) Update(order *models.Order) error {
	return r.db.Omit(clause.Associations).Save(order).Error
}

// SetCommittedQuantity 记录订单项实际扣减的库存数量
func (r *GormOrderRepository) SetCommittedQuantity(itemID uint, quantity int) error {
	return r.db.Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		UpdateColumn("committed_quantity", quantity).Error
}
