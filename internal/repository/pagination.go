package repository

import (
	"errors"

	"gorm.io/gorm"
)

// pageQuery 列表分页读取参数
type pageQuery struct {
	Page     int
	PageSize int
	Order    string
	Preloads []string
}

// findPage 先统计总数再读取当前页；pageSize<=0 时读取全部
func findPage[T any](query *gorm.DB, p pageQuery) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]T, 0)
	if total == 0 {
		return rows, 0, nil
	}
	if p.PageSize > 0 {
		page := p.Page
		if page < 1 {
			page = 1
		}
		query = query.Limit(p.PageSize).Offset((page - 1) * p.PageSize)
	}
	for _, association := range p.Preloads {
		query = query.Preload(association)
	}
	if p.Order != "" {
		query = query.Order(p.Order)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// firstOrNil 读取首条记录，不存在时返回 nil, nil
func firstOrNil[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	if err := query.First(&row, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
