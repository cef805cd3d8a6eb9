package service

import (
	"context"
	"strings"

	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/models"
	"github.com/mara-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxProductIDLength = 64

// ProductCacheInvalidator 商品缓存失效
type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, productID string) error
}

// ProductService 商品业务服务
type ProductService struct {
	repo  repository.ProductRepository
	cache ProductCacheInvalidator
}

// NewProductService 创建商品服务，cache 可为 nil
func NewProductService(repo repository.ProductRepository, cache ProductCacheInvalidator) *ProductService {
	return &ProductService{repo: repo, cache: cache}
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Category    string
	Images      []string
	Colors      []string
	Sizes       []string
	Stock       *int
	Rating      float64
	Reviews     int
	Featured    bool
	IsNew       bool
	IsActive    *bool
	SortOrder   int
}

// PublicProductQuery 前台商品查询条件
type PublicProductQuery struct {
	Category string
	Search   string
	Featured *bool
	IsNew    *bool
	Page     int
	PageSize int
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(query PublicProductQuery) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:       query.Page,
		PageSize:   query.PageSize,
		Category:   query.Category,
		Search:     query.Search,
		Featured:   query.Featured,
		IsNew:      query.IsNew,
		OnlyActive: true,
	})
}

// GetPublic 获取公开商品详情
func (s *ProductService) GetPublic(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrNotFound
	}
	return product, nil
}

// Categories 获取上架商品的分类
func (s *ProductService) Categories() ([]string, error) {
	return s.repo.ListCategories(true)
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(category, search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: category,
		Search:   search,
	})
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Create 创建商品，未指定 ID 时自动生成
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if !validProductID(id) {
		return nil, ErrProductIDInvalid
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	exist, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrProductIDExists
	}

	product := models.Product{ID: id, IsActive: true}
	applyProductInput(&product, input)
	if input.Stock == nil {
		product.Stock = 0
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, id string, input CreateProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	applyProductInput(product, input)
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, product.ID)
	return product, nil
}

// Delete 删除商品，购物车中引用该商品的行将变为失效行
func (s *ProductService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		logger.Warnw("product_cache_invalidate_failed", "product_id", productID, "error", err)
	}
}

func validateProductInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrProductNameRequired
	}
	if input.Price.IsNegative() {
		return ErrProductPriceInvalid
	}
	if input.Discount.IsNegative() || input.Discount.GreaterThan(decimal.NewFromInt(100)) {
		return ErrProductDiscountInvalid
	}
	if input.Stock != nil && *input.Stock < 0 {
		return ErrProductStockInvalid
	}
	return nil
}

func applyProductInput(product *models.Product, input CreateProductInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = models.NewMoneyFromDecimal(input.Price)
	product.Discount = input.Discount.Round(2)
	product.Category = strings.TrimSpace(input.Category)
	product.Images = models.StringArray(normalizeStringList(input.Images))
	product.Colors = models.StringArray(normalizeStringList(input.Colors))
	product.Sizes = models.StringArray(normalizeStringList(input.Sizes))
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	product.Rating = input.Rating
	product.Reviews = input.Reviews
	product.Featured = input.Featured
	product.IsNew = input.IsNew
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.SortOrder = input.SortOrder
}

func validProductID(id string) bool {
	if id == "" || len(id) > maxProductIDLength {
		return false
	}
	return !strings.ContainsAny(id, " \t\r\n/?#")
}

func normalizeStringList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
