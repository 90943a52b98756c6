package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ops-panel/internal/repository"
)

// ── 基础资料业务错误 ──

var (
	ErrReferenceNotFound   = errors.New("基础资料不存在")
	ErrReferenceCodeExists = errors.New("编码已存在")
)

// ReferenceService 基础资料通用业务接口
type ReferenceService[T any] interface {
	Create(ctx context.Context, m *T, callerID string) (*T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, f repository.ReferenceFilter) ([]T, int64, error)
	Update(ctx context.Context, id string, apply func(*T), callerID string) (*T, error)
	// Deactivate 停用，已被产量记录引用的数据保持可读
	Deactivate(ctx context.Context, id string, callerID string) error
}

type referenceService[T any, P refPtr[T]] struct {
	label  string
	repo   repository.ReferenceRepository[T]
	logger *zap.Logger
}

func newReferenceService[T any, P refPtr[T]](label string, repo repository.ReferenceRepository[T], logger *zap.Logger) *referenceService[T, P] {
	return &referenceService[T, P]{
		label:  label,
		repo:   repo,
		logger: logger.With(zap.String("reference", label)),
	}
}

// ────────────────────── Create ──────────────────────

func (s *referenceService[T, P]) Create(ctx context.Context, m *T, callerID string) (*T, error) {
	ref := P(m).Ref()

	exists, err := s.repo.ExistsByCode(ctx, ref.Code, "")
	if err != nil {
		s.logger.Error("检查编码失败", zap.String("code", ref.Code), zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrReferenceCodeExists
	}

	ref.ID = ""
	ref.IsActive = true
	ref.CreatedBy = &callerID
	ref.UpdatedBy = &callerID

	if err := s.repo.Create(ctx, m); err != nil {
		s.logger.Error("创建基础资料失败", zap.Error(err))
		return nil, err
	}
	return m, nil
}

// ────────────────────── Read ──────────────────────

func (s *referenceService[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferenceNotFound
		}
		s.logger.Error("查询基础资料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (s *referenceService[T, P]) List(ctx context.Context, f repository.ReferenceFilter) ([]T, int64, error) {
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("列出基础资料失败", zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *referenceService[T, P]) Update(ctx context.Context, id string, apply func(*T), callerID string) (*T, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ref := P(m).Ref()
	oldCode := ref.Code
	apply(m)
	ref.ID = id

	if ref.Code != oldCode {
		exists, err := s.repo.ExistsByCode(ctx, ref.Code, id)
		if err != nil {
			s.logger.Error("检查编码失败", zap.String("code", ref.Code), zap.Error(err))
			return nil, err
		}
		if exists {
			return nil, ErrReferenceCodeExists
		}
	}

	ref.UpdatedBy = &callerID
	if err := s.repo.Update(ctx, m); err != nil {
		s.logger.Error("更新基础资料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return m, nil
}

// ────────────────────── Deactivate ──────────────────────

func (s *referenceService[T, P]) Deactivate(ctx context.Context, id string, callerID string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id, callerID); err != nil {
		s.logger.Error("停用基础资料失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
