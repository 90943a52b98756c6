package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ops-panel/internal/model"
	"ops-panel/internal/repository"
	pkgerrors "ops-panel/pkg/errors"
	"ops-panel/pkg/metrics"
)

// ── 产量记录业务错误 ──

var (
	ErrEntryNotFound        = errors.New("产量记录不存在")
	ErrEntryForbidden       = errors.New("只有记录创建人可以执行此操作")
	ErrEntryNotPending      = errors.New("只有待审批的记录可以执行此操作")
	ErrEntryNotEditable     = errors.New("已审批的记录不可修改")
	ErrEntryNotRejected     = errors.New("只有已驳回的记录可以重新提交")
	ErrRejectReasonRequired = errors.New("驳回原因不能为空")
	ErrReferenceInvalid     = errors.New("引用的基础资料不存在或已停用")
)

// 审批结论写入备注时的前缀
const (
	approvalNotePrefix  = "Approval notes: "
	rejectionNotePrefix = "Rejection reason: "
)

// EntryService 四类产量记录共用的审批流程接口
type EntryService[T any] interface {
	Create(ctx context.Context, e *T, callerID string) (*T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, f repository.EntryFilter) ([]T, int64, error)
	// Update 合并修改并重算派生量，状态保持不变
	Update(ctx context.Context, id string, apply func(*T), callerID string) (*T, error)
	Approve(ctx context.Context, id string, approverID string, notes string) (*T, error)
	Reject(ctx context.Context, id string, approverID string, reason string) (*T, error)
	// Resubmit 驳回后由创建人重新提交，REJECTED → PENDING
	Resubmit(ctx context.Context, id string, callerID string) (*T, error)
	Remove(ctx context.Context, id string, callerID string) error
}

type entryPtr[T any] interface {
	*T
	model.ProductionEntry
}

// deriveFunc 校验引用的基础资料并写入派生字段
type deriveFunc[T any] func(ctx context.Context, e *T) error

type entryWorkflow[T any, P entryPtr[T]] struct {
	kind   string
	repo   repository.EntryRepository[T]
	derive deriveFunc[T]
	logger *zap.Logger
	now    func() time.Time
}

func newEntryWorkflow[T any, P entryPtr[T]](kind string, repo repository.EntryRepository[T], derive deriveFunc[T], logger *zap.Logger) *entryWorkflow[T, P] {
	return &entryWorkflow[T, P]{
		kind:   kind,
		repo:   repo,
		derive: derive,
		logger: logger.With(zap.String("entry_kind", kind)),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── Create ──────────────────────

func (w *entryWorkflow[T, P]) Create(ctx context.Context, e *T, callerID string) (*T, error) {
	h := P(e).Header()
	h.ID = ""
	h.Status = model.EntryPending
	h.CreatedByID = callerID
	h.ApproverID = nil
	h.ApprovedAt = nil

	if err := w.derive(ctx, e); err != nil {
		return nil, err
	}

	if err := w.repo.Create(ctx, e); err != nil {
		w.logger.Error("创建产量记录失败", zap.Error(err))
		return nil, err
	}

	metrics.EntryTransitions.WithLabelValues(w.kind, "create").Inc()
	return e, nil
}

// ────────────────────── Read ──────────────────────

func (w *entryWorkflow[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	return w.load(ctx, id)
}

func (w *entryWorkflow[T, P]) List(ctx context.Context, f repository.EntryFilter) ([]T, int64, error) {
	items, total, err := w.repo.List(ctx, f)
	if err != nil {
		w.logger.Error("查询产量记录列表失败", zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}

// ────────────────────── Update ──────────────────────

func (w *entryWorkflow[T, P]) Update(ctx context.Context, id string, apply func(*T), callerID string) (*T, error) {
	e, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}

	h := P(e).Header()
	if h.CreatedByID != callerID {
		return nil, ErrEntryForbidden
	}
	if h.Status == model.EntryApproved {
		return nil, ErrEntryNotEditable
	}

	oldNotes := h.Notes
	apply(e)
	h.Notes = keepDecisionNotes(oldNotes, h.Notes)
	if err := w.derive(ctx, e); err != nil {
		return nil, err
	}

	if err := w.repo.UpdateEditable(ctx, e, callerID); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return nil, ErrEntryNotEditable
		}
		w.logger.Error("更新产量记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	metrics.EntryTransitions.WithLabelValues(w.kind, "update").Inc()
	return e, nil
}

// keepDecisionNotes 备注中已有审批结论时，新备注追加在其后而不是覆盖
func keepDecisionNotes(old, updated string) string {
	if updated == old || strings.HasPrefix(updated, old) {
		return updated
	}
	if !strings.Contains(old, approvalNotePrefix) && !strings.Contains(old, rejectionNotePrefix) {
		return updated
	}
	if strings.TrimSpace(updated) == "" {
		return old
	}
	return old + "\n" + updated
}

// ────────────────────── Approve / Reject ──────────────────────

func (w *entryWorkflow[T, P]) Approve(ctx context.Context, id string, approverID string, notes string) (*T, error) {
	t := repository.EntryTransition{To: model.EntryApproved}
	if notes = strings.TrimSpace(notes); notes != "" {
		t.AppendNote = approvalNotePrefix + notes
	}
	return w.decide(ctx, id, approverID, t, "approve")
}

func (w *entryWorkflow[T, P]) Reject(ctx context.Context, id string, approverID string, reason string) (*T, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}
	t := repository.EntryTransition{
		To:         model.EntryRejected,
		AppendNote: rejectionNotePrefix + reason,
	}
	return w.decide(ctx, id, approverID, t, "reject")
}

// decide 审批或驳回：只接受 PENDING，写入审批人与审批时间
func (w *entryWorkflow[T, P]) decide(ctx context.Context, id string, approverID string, t repository.EntryTransition, action string) (*T, error) {
	e, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if P(e).Header().Status != model.EntryPending {
		return nil, ErrEntryNotPending
	}

	now := w.now()
	t.ApproverID = &approverID
	t.ApprovedAt = &now

	if err := w.repo.Transition(ctx, id, model.EntryPending, t); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return nil, ErrEntryNotPending
		}
		w.logger.Error("产量记录审批失败", zap.String("id", id), zap.String("action", action), zap.Error(err))
		return nil, err
	}

	metrics.EntryTransitions.WithLabelValues(w.kind, action).Inc()
	w.logger.Info("产量记录已审批",
		zap.String("id", id),
		zap.String("action", action),
		zap.String("approver_id", approverID),
	)
	return w.load(ctx, id)
}

// ────────────────────── Resubmit ──────────────────────

func (w *entryWorkflow[T, P]) Resubmit(ctx context.Context, id string, callerID string) (*T, error) {
	e, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}

	h := P(e).Header()
	if h.CreatedByID != callerID {
		return nil, ErrEntryForbidden
	}
	if h.Status != model.EntryRejected {
		return nil, ErrEntryNotRejected
	}

	t := repository.EntryTransition{To: model.EntryPending}
	if err := w.repo.Transition(ctx, id, model.EntryRejected, t); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return nil, ErrEntryNotRejected
		}
		w.logger.Error("重新提交产量记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	metrics.EntryTransitions.WithLabelValues(w.kind, "resubmit").Inc()
	return w.load(ctx, id)
}

// ────────────────────── Remove ──────────────────────

func (w *entryWorkflow[T, P]) Remove(ctx context.Context, id string, callerID string) error {
	e, err := w.load(ctx, id)
	if err != nil {
		return err
	}

	// 先校验创建人，无论记录处于何种状态
	h := P(e).Header()
	if h.CreatedByID != callerID {
		return ErrEntryForbidden
	}
	if h.Status != model.EntryPending {
		return ErrEntryNotPending
	}

	if err := w.repo.DeleteOwnedPending(ctx, id, callerID); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return ErrEntryNotPending
		}
		w.logger.Error("删除产量记录失败", zap.String("id", id), zap.Error(err))
		return err
	}

	metrics.EntryTransitions.WithLabelValues(w.kind, "remove").Inc()
	return nil
}

// ── 内部辅助方法 ──

func (w *entryWorkflow[T, P]) load(ctx context.Context, id string) (*T, error) {
	e, err := w.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		w.logger.Error("查询产量记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return e, nil
}

type refPtr[T any] interface {
	*T
	Ref() *model.ReferenceBase
}

// activeRef 加载并确认基础资料存在且启用，否则返回 ErrReferenceInvalid
func activeRef[T any, P refPtr[T]](ctx context.Context, store repository.ReferenceRepository[T], id string, label string) (*T, error) {
	m, err := store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrReferenceInvalid, label, id)
		}
		return nil, err
	}
	if !P(m).Ref().IsActive {
		return nil, fmt.Errorf("%w: %s %s", ErrReferenceInvalid, label, id)
	}
	return m, nil
}

// optionalRef 可选引用为空时跳过校验
func optionalRef[T any, P refPtr[T]](ctx context.Context, store repository.ReferenceRepository[T], id *string, label string) error {
	if id == nil || *id == "" {
		return nil
	}
	_, err := activeRef[T, P](ctx, store, *id, label)
	return err
}
