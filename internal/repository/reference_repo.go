package repository

import (
	"context"

	"gorm.io/gorm"
)

// ReferenceFilter 基础资料列表过滤条件
type ReferenceFilter struct {
	Search          string
	IncludeInactive bool
	Offset          int
	Limit           int
}

// ReferenceRepository 基础资料（物料、地点、设备、收费站）通用数据访问接口
type ReferenceRepository[T any] interface {
	Create(ctx context.Context, m *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, f ReferenceFilter) ([]T, int64, error)
	Update(ctx context.Context, m *T) error
	// Deactivate 停用（基础资料被产量记录引用，不做物理删除）
	Deactivate(ctx context.Context, id string, updatedBy string) error
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
}

type referenceRepo[T any] struct {
	db *gorm.DB
}

// NewReferenceRepo 创建基础资料仓储
func NewReferenceRepo[T any](db *gorm.DB) ReferenceRepository[T] {
	return &referenceRepo[T]{db: db}
}

func (r *referenceRepo[T]) Create(ctx context.Context, m *T) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *referenceRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var m T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *referenceRepo[T]) List(ctx context.Context, f ReferenceFilter) ([]T, int64, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("code ILIKE ? OR name ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	err := q.Order("code ASC").Find(&items).Error
	return items, total, err
}

func (r *referenceRepo[T]) Update(ctx context.Context, m *T) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *referenceRepo[T]) Deactivate(ctx context.Context, id string, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_by": updatedBy,
		}).Error
}

func (r *referenceRepo[T]) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(new(T)).Where("code = ?", code)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}
