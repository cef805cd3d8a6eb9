package repository

import (
	"context"
	"strings"
	"time"

	"github.com/mara-shop/internal/cart"
	"github.com/mara-shop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSnapshotRepository 购物车快照数据访问接口
type CartSnapshotRepository interface {
	cart.Store
	Get(ctx context.Context, sessionKey string) (*models.CartSnapshot, error)
	Upsert(ctx context.Context, sessionKey string, payload []byte) error
	Delete(ctx context.Context, sessionKey string) error
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}

// GormCartSnapshotRepository GORM 实现
type GormCartSnapshotRepository struct {
	db *gorm.DB
}

// NewCartSnapshotRepository 创建购物车快照仓库
func NewCartSnapshotRepository(db *gorm.DB) *GormCartSnapshotRepository {
	return &GormCartSnapshotRepository{db: db}
}

// Session 返回指定会话的持久化句柄
func (r *GormCartSnapshotRepository) Session(key string) cart.Persistence {
	return &cartSnapshotSession{repo: r, key: strings.TrimSpace(key)}
}

// Get 获取会话快照，不存在时返回 nil, nil
func (r *GormCartSnapshotRepository) Get(ctx context.Context, sessionKey string) (*models.CartSnapshot, error) {
	return firstOrNil[models.CartSnapshot](r.db.WithContext(ctx).Where("session_key = ?", sessionKey))
}

// Upsert 写入会话快照
func (r *GormCartSnapshotRepository) Upsert(ctx context.Context, sessionKey string, payload []byte) error {
	snapshot := models.CartSnapshot{
		SessionKey: sessionKey,
		Payload:    payload,
		UpdatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snapshot).Error
}

// Delete 删除会话快照
func (r *GormCartSnapshotRepository) Delete(ctx context.Context, sessionKey string) error {
	return r.db.WithContext(ctx).Where("session_key = ?", strings.TrimSpace(sessionKey)).Delete(&models.CartSnapshot{}).Error
}

// PurgeBefore 清理指定时间之前未更新的快照
func (r *GormCartSnapshotRepository) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("updated_at < ?", before).Delete(&models.CartSnapshot{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

type cartSnapshotSession struct {
	repo *GormCartSnapshotRepository
	key  string
}

func (s *cartSnapshotSession) Load(ctx context.Context) ([]byte, error) {
	snapshot, err := s.repo.Get(ctx, s.key)
	if err != nil || snapshot == nil {
		return nil, err
	}
	return snapshot.Payload, nil
}

func (s *cartSnapshotSession) Save(ctx context.Context, blob []byte) error {
	return s.repo.Upsert(ctx, s.key, blob)
}
