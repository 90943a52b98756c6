package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ops-panel/config"
	"ops-panel/internal/dto"
	"ops-panel/internal/model"
	"ops-panel/internal/repository"
	pkgerrors "ops-panel/pkg/errors"
	"ops-panel/pkg/metrics"
)

// PermTollDelete 删除已提交/已审批支付所需权限
const PermTollDelete = "toll:delete"

// ── 过路费支付业务错误 ──

var (
	ErrTollPaymentNotFound     = errors.New("过路费支付记录不存在")
	ErrTollPaymentForbidden    = errors.New("只有支付登记人可以执行此操作")
	ErrTollPaymentNotDraft     = errors.New("只有草稿状态的支付可以修改")
	ErrTollPaymentInvalidState = errors.New("当前状态不允许该操作")
	ErrTollPaymentPosted       = errors.New("已过账的支付不可删除")
	ErrTollDeleteForbidden     = errors.New("无权删除该支付记录")
)

// TollPaymentService 过路费支付台账接口
// 状态只能向前流转：DRAFT → SUBMITTED → APPROVED → POSTED
type TollPaymentService interface {
	Create(ctx context.Context, req *dto.CreateTollPaymentRequest, callerID string) (*model.TollPayment, error)
	GetByID(ctx context.Context, id string) (*model.TollPayment, error)
	List(ctx context.Context, req *dto.TollPaymentListRequest) ([]model.TollPayment, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTollPaymentRequest, callerID string) (*model.TollPayment, error)
	Submit(ctx context.Context, id string, callerID string) (*model.TollPayment, error)
	Approve(ctx context.Context, id string, callerID string) (*model.TollPayment, error)
	Post(ctx context.Context, id string, callerID string) (*model.TollPayment, error)
	// Delete 草稿可由登记人或持 toll:delete 者删除；已提交/已审批需 toll:delete；已过账不可删除
	Delete(ctx context.Context, id string, callerID string, permissions []string) error
}

type tollPaymentService struct {
	cfg    *config.TollConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewTollPaymentService 创建 TollPaymentService 实例
func NewTollPaymentService(cfg *config.TollConfig, repo *repository.Repository, logger *zap.Logger) TollPaymentService {
	return &tollPaymentService{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── Create ──────────────────────

func (s *tollPaymentService) Create(ctx context.Context, req *dto.CreateTollPaymentRequest, callerID string) (*model.TollPayment, error) {
	p := &model.TollPayment{
		Amount:        req.Amount,
		Currency:      req.Currency,
		VehicleType:   req.VehicleType,
		PaidAt:        req.PaidAt.UTC(),
		RouteID:       req.RouteID,
		TollStationID: req.TollStationID,
		TruckID:       req.TruckID,
		ReceiptNumber: req.ReceiptNumber,
		Status:        model.TollDraft,
		PaidByUserID:  callerID,
		Notes:         req.Notes,
	}
	if p.Currency == "" {
		p.Currency = s.cfg.Currency
	}
	p.CreatedBy = &callerID
	p.UpdatedBy = &callerID

	if err := s.checkReferences(ctx, p); err != nil {
		return nil, err
	}

	if err := s.repo.TollPayment.Create(ctx, p); err != nil {
		s.logger.Error("创建过路费支付失败", zap.Error(err))
		return nil, err
	}

	metrics.TollPaymentTransitions.WithLabelValues(string(model.TollDraft)).Inc()
	return p, nil
}

// ────────────────────── Read ──────────────────────

func (s *tollPaymentService) GetByID(ctx context.Context, id string) (*model.TollPayment, error) {
	p, err := s.repo.TollPayment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTollPaymentNotFound
		}
		s.logger.Error("查询过路费支付失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *tollPaymentService) List(ctx context.Context, req *dto.TollPaymentListRequest) ([]model.TollPayment, int64, error) {
	f := repository.TollPaymentFilter{
		RouteID:     req.RouteID,
		StationID:   req.TollStationID,
		VehicleType: req.VehicleType,
		Offset:      req.GetOffset(),
		Limit:       req.GetLimit(),
	}
	if req.Status != "" {
		f.Statuses = []model.TollPaymentStatus{model.TollPaymentStatus(req.Status)}
	}
	if req.DateFrom != "" {
		d, err := model.ParseDate(req.DateFrom)
		if err != nil {
			return nil, 0, ErrInvalidDateRange
		}
		f.PaidFrom = &d.Time
	}
	if req.DateTo != "" {
		d, err := model.ParseDate(req.DateTo)
		if err != nil {
			return nil, 0, ErrInvalidDateRange
		}
		end := d.AddDays(1).Time
		f.PaidTo = &end
	}

	items, total, err := s.repo.TollPayment.List(ctx, f)
	if err != nil {
		s.logger.Error("查询过路费支付列表失败", zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *tollPaymentService) Update(ctx context.Context, id string, req *dto.UpdateTollPaymentRequest, callerID string) (*model.TollPayment, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.PaidByUserID != callerID {
		return nil, ErrTollPaymentForbidden
	}
	if p.Status != model.TollDraft {
		return nil, ErrTollPaymentNotDraft
	}

	req.ApplyTo(p)
	p.PaidAt = p.PaidAt.UTC()
	p.UpdatedBy = &callerID
	if err := s.checkReferences(ctx, p); err != nil {
		return nil, err
	}

	if err := s.repo.TollPayment.UpdateDraft(ctx, p); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return nil, ErrTollPaymentNotDraft
		}
		s.logger.Error("更新过路费支付失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// ────────────────────── 状态流转 ──────────────────────

func (s *tollPaymentService) Submit(ctx context.Context, id string, callerID string) (*model.TollPayment, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.PaidByUserID != callerID {
		return nil, ErrTollPaymentForbidden
	}

	now := s.now()
	return s.transition(ctx, p, model.TollDraft, model.TollSubmitted, map[string]interface{}{
		"submitted_at": now,
		"updated_by":   callerID,
	})
}

func (s *tollPaymentService) Approve(ctx context.Context, id string, callerID string) (*model.TollPayment, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return s.transition(ctx, p, model.TollSubmitted, model.TollApproved, map[string]interface{}{
		"approved_by_id": callerID,
		"approved_at":    now,
		"updated_by":     callerID,
	})
}

func (s *tollPaymentService) Post(ctx context.Context, id string, callerID string) (*model.TollPayment, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return s.transition(ctx, p, model.TollApproved, model.TollPosted, map[string]interface{}{
		"posted_at":  now,
		"updated_by": callerID,
	})
}

func (s *tollPaymentService) transition(ctx context.Context, p *model.TollPayment, from, to model.TollPaymentStatus, fields map[string]interface{}) (*model.TollPayment, error) {
	if p.Status != from {
		return nil, ErrTollPaymentInvalidState
	}

	if err := s.repo.TollPayment.Transition(ctx, p.ID, from, to, fields); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return nil, ErrTollPaymentInvalidState
		}
		s.logger.Error("过路费支付状态流转失败",
			zap.String("id", p.ID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.TollPaymentTransitions.WithLabelValues(string(to)).Inc()
	return s.GetByID(ctx, p.ID)
}

// ────────────────────── Delete ──────────────────────

func (s *tollPaymentService) Delete(ctx context.Context, id string, callerID string, permissions []string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	canDelete := slices.Contains(permissions, PermTollDelete)
	switch p.Status {
	case model.TollPosted:
		return ErrTollPaymentPosted
	case model.TollDraft:
		if p.PaidByUserID != callerID && !canDelete {
			return ErrTollDeleteForbidden
		}
	default:
		if !canDelete {
			return ErrTollDeleteForbidden
		}
	}

	if err := s.repo.TollPayment.DeleteInStatus(ctx, id, p.Status); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return ErrTollPaymentInvalidState
		}
		s.logger.Error("删除过路费支付失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *tollPaymentService) checkReferences(ctx context.Context, p *model.TollPayment) error {
	if p.RouteID != nil && *p.RouteID != "" {
		route, err := s.repo.TollConfig.GetRoute(ctx, *p.RouteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReferenceInvalid
			}
			return err
		}
		if !route.IsActive {
			return ErrReferenceInvalid
		}
	}
	if err := optionalRef(ctx, s.repo.TollStation, p.TollStationID, "收费站"); err != nil {
		return err
	}
	return optionalRef(ctx, s.repo.Truck, p.TruckID, "车辆")
}
