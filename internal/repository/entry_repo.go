package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ops-panel/internal/model"
	pkgerrors "ops-panel/pkg/errors"
)

// EntryFilter 产量记录列表过滤条件
type EntryFilter struct {
	DateFrom    *model.Date
	DateTo      *model.Date
	Shift       string
	EquipmentID string
	Status      string
	Offset      int
	Limit       int
}

// EntryTransition 一次审批状态流转要写入的字段
// ApproverID/ApprovedAt 为 nil 时对应列被清空；AppendNote 非空时追加到 notes 末尾
type EntryTransition struct {
	To         model.EntryStatus
	ApproverID *string
	ApprovedAt *time.Time
	AppendNote string
}

// EntryRepository 四类产量记录共用的数据访问接口
// 所有状态相关写操作都是带前置条件的单条 UPDATE/DELETE，条件不满足时返回 ErrStateConflict
type EntryRepository[T any] interface {
	Create(ctx context.Context, e *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, f EntryFilter) ([]T, int64, error)
	// UpdateEditable 仅当记录仍为 PENDING/REJECTED 且属于 actorID 时覆盖可编辑字段
	UpdateEditable(ctx context.Context, e *T, actorID string) error
	// Transition 仅当当前状态为 from 时流转
	Transition(ctx context.Context, id string, from model.EntryStatus, t EntryTransition) error
	// DeleteOwnedPending 仅当记录为 PENDING 且属于 actorID 时删除
	DeleteOwnedPending(ctx context.Context, id string, actorID string) error
}

type entryRepo[T any] struct {
	db              *gorm.DB
	equipmentColumn string
}

// NewEntryRepo 创建产量记录仓储；equipmentColumn 为设备过滤对应的列名
func NewEntryRepo[T any](db *gorm.DB, equipmentColumn string) EntryRepository[T] {
	return &entryRepo[T]{db: db, equipmentColumn: equipmentColumn}
}

// 审批字段只能经 Transition 修改
var lockedEntryColumns = []string{"id", "status", "approver_id", "approved_at", "created_by_id", "created_at"}

func (r *entryRepo[T]) Create(ctx context.Context, e *T) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *entryRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var e T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *entryRepo[T]) List(ctx context.Context, f EntryFilter) ([]T, int64, error) {
	q := r.db.WithContext(ctx).Model(new(T))

	if f.DateFrom != nil {
		q = q.Where("date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("date <= ?", *f.DateTo)
	}
	if f.Shift != "" {
		q = q.Where("shift = ?", f.Shift)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.EquipmentID != "" {
		q = q.Where(r.equipmentColumn+" = ?", f.EquipmentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	err := q.Order("date DESC, created_at DESC").Find(&items).Error
	return items, total, err
}

func (r *entryRepo[T]) UpdateEditable(ctx context.Context, e *T, actorID string) error {
	result := r.db.WithContext(ctx).
		Model(e).
		Where("status IN ?", []model.EntryStatus{model.EntryPending, model.EntryRejected}).
		Where("created_by_id = ?", actorID).
		Select("*").
		Omit(lockedEntryColumns...).
		Updates(e)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

func (r *entryRepo[T]) Transition(ctx context.Context, id string, from model.EntryStatus, t EntryTransition) error {
	updates := map[string]interface{}{
		"status":      t.To,
		"approver_id": t.ApproverID,
		"approved_at": t.ApprovedAt,
	}
	if t.AppendNote != "" {
		// 在数据库内追加，避免覆盖并发写入的备注
		updates["notes"] = gorm.Expr("CASE WHEN notes = '' THEN ? ELSE notes || ? END", t.AppendNote, "\n"+t.AppendNote)
	}

	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

func (r *entryRepo[T]) DeleteOwnedPending(ctx context.Context, id string, actorID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ? AND created_by_id = ?", id, model.EntryPending, actorID).
		Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

// ── 破碎机进料 ──

// CrusherFeedRepository 进料记录仓储，额外提供产出率计算所需的汇总
type CrusherFeedRepository interface {
	EntryRepository[model.CrusherFeedEntry]
	// SumApprovedTonnage 统计同一破碎机、日期、班次下已审批进料的总吨位与条数
	SumApprovedTonnage(ctx context.Context, crusherID string, date model.Date, shift model.Shift) (decimal.Decimal, int64, error)
}

type crusherFeedRepo struct {
	EntryRepository[model.CrusherFeedEntry]
	db *gorm.DB
}

// NewCrusherFeedRepo 创建 CrusherFeedRepository 实例
func NewCrusherFeedRepo(db *gorm.DB) CrusherFeedRepository {
	return &crusherFeedRepo{
		EntryRepository: NewEntryRepo[model.CrusherFeedEntry](db, "crusher_id"),
		db:              db,
	}
}

func (r *crusherFeedRepo) SumApprovedTonnage(ctx context.Context, crusherID string, date model.Date, shift model.Shift) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.CrusherFeedEntry{}).
		Select("COALESCE(SUM(weigh_bridge_tonnage), 0) AS total, COUNT(*) AS count").
		Where("crusher_id = ? AND date = ? AND shift = ? AND status = ?", crusherID, date, shift, model.EntryApproved).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, row.Count, nil
}
