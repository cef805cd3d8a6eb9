package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	Category   string
	Search     string
	Featured   *bool
	IsNew      *bool
	OnlyActive bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	Status      string
	OrderNo     string
	Email       string
	SessionKey  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
