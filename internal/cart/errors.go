package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity 数量非法（必须为正整数）
	ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")
	// ErrProductNotFound 商品在目录中不存在
	ErrProductNotFound = errors.New("cart: product not found")
	// ErrInsufficientStock 超出可用库存（仅在开启库存校验时返回）
	ErrInsufficientStock = errors.New("cart: insufficient stock")
	// ErrPersistence 持久化失败（非致命，内存状态仍然有效）
	ErrPersistence = errors.New("cart: persistence failed")
	// ErrNilDependency 缺少必需依赖
	ErrNilDependency = errors.New("cart: catalog and persistence are required")
)

// PersistenceWarning 持久化告警：内存中的变更已生效，但本次未能落盘
type PersistenceWarning struct {
	Op  string
	Err error
}

func (w *PersistenceWarning) Error() string {
	if w.Err == nil {
		return fmt.Sprintf("cart: persistence %s failed", w.Op)
	}
	return fmt.Sprintf("cart: persistence %s failed: %v", w.Op, w.Err)
}

func (w *PersistenceWarning) Unwrap() []error {
	return []error{ErrPersistence, w.Err}
}

// IsPersistenceWarning 判断是否为可恢复的持久化告警
func IsPersistenceWarning(err error) bool {
	var warning *PersistenceWarning
	return errors.As(err, &warning)
}
