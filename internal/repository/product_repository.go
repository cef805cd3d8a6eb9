package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/mara-shop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	ListCategories(onlyActive bool) ([]string, error)
	GetByID(id string) (*models.Product, error)
	Lookup(ctx context.Context, productID string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	DeductStock(productID string, quantity int) (int, error)
	RestoreStock(productID string, quantity int) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	if filter.IsNew != nil {
		query = query.Where("is_new = ?", *filter.IsNew)
	}
	if condition, args := searchClause(dialectOf(r.db), filter.Search, []string{"name", "description", "category"}); condition != "" {
		query = query.Where(condition, args...)
	}

	return findPage[models.Product](query, pageQuery{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Order:    "sort_order DESC, created_at DESC, id ASC",
	})
}

// ListCategories 去重后的分类名称
func (r *GormProductRepository) ListCategories(onlyActive bool) ([]string, error) {
	query := r.db.Model(&models.Product{}).Where("category <> ?", "")
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var categories []string
	if err := query.Distinct("category").Order("category ASC").Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID 根据 ID 获取商品（含下架商品）
func (r *GormProductRepository) GetByID(id string) (*models.Product, error) {
	return firstOrNil[models.Product](r.db.Where("id = ?", id))
}

// Lookup 购物车目录查询：仅返回上架商品，不存在时返回 nil, nil
func (r *GormProductRepository) Lookup(ctx context.Context, productID string) (*models.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, nil
	}
	return firstOrNil[models.Product](r.db.WithContext(ctx).Where("id = ? AND is_active = ?", productID, true))
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete 删除商品（软删除）
func (r *GormProductRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Product{}).Error
}

// DeductStock 扣减库存，库存不足时扣至 0，返回实际扣减数量（商品不存在时为 0）
// 需在事务中调用以持有行锁。
func (r *GormProductRepository) DeductStock(productID string, quantity int) (int, error) {
	if strings.TrimSpace(productID) == "" || quantity <= 0 {
		return 0, nil
	}
	var product models.Product
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "stock").
		Where("id = ?", productID).
		Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	deducted := quantity
	if product.Stock < deducted {
		deducted = product.Stock
	}
	if deducted <= 0 {
		return 0, nil
	}
	if err := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock - ?", deducted)).Error; err != nil {
		return 0, err
	}
	return deducted, nil
}

// RestoreStock 回补库存（取消已扣库存的订单时使用）
func (r *GormProductRepository) RestoreStock(productID string, quantity int) (int64, error) {
	if strings.TrimSpace(productID) == "" || quantity <= 0 {
		return 0, nil
	}
	result := r.db.Unscoped().Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
