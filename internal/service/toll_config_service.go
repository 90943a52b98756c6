package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ops-panel/config"
	"ops-panel/internal/dto"
	"ops-panel/internal/model"
	"ops-panel/internal/repository"
)

// ── 收费配置业务错误 ──

var (
	ErrTollRouteNotFound = errors.New("收费路线不存在")
	ErrTollRateNotFound  = errors.New("收费标准不存在")
	ErrTollRateOverlap   = errors.New("同一收费站、车型的收费标准生效区间重叠")
	ErrInvalidDateRange  = errors.New("日期区间无效：结束日期不能早于开始日期")
)

// TollConfigService 路线与收费标准配置接口（对账"应付"侧的数据来源）
type TollConfigService interface {
	CreateRoute(ctx context.Context, req *dto.CreateTollRouteRequest, callerID string) (*model.TollRoute, error)
	GetRoute(ctx context.Context, id string) (*model.TollRoute, error)
	ListRoutes(ctx context.Context, includeInactive bool) ([]model.TollRoute, error)
	// UpdateRoute 改名或启停用；停用的路线不再进入全量对账
	UpdateRoute(ctx context.Context, id string, req *dto.UpdateTollRouteRequest, callerID string) (*model.TollRoute, error)
	CreateRate(ctx context.Context, req *dto.CreateTollRateRequest, callerID string) (*model.TollRate, error)
	// UpdateRate 设置失效日期或启停用，调价时先关闭旧标准再新建
	UpdateRate(ctx context.Context, id string, req *dto.UpdateTollRateRequest, callerID string) (*model.TollRate, error)
	ListRates(ctx context.Context, req *dto.TollRateListRequest) ([]model.TollRate, error)
}

type tollConfigService struct {
	cfg    *config.TollConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTollConfigService 创建 TollConfigService 实例
func NewTollConfigService(cfg *config.TollConfig, repo *repository.Repository, logger *zap.Logger) TollConfigService {
	return &tollConfigService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── 路线 ──────────────────────

func (s *tollConfigService) CreateRoute(ctx context.Context, req *dto.CreateTollRouteRequest, callerID string) (*model.TollRoute, error) {
	route := &model.TollRoute{
		Code:     req.Code,
		Name:     req.Name,
		IsActive: true,
	}
	route.CreatedBy = &callerID
	route.UpdatedBy = &callerID

	for i, stationID := range req.StationIDs {
		station, err := activeRef(ctx, s.repo.TollStation, stationID, "收费站")
		if err != nil {
			return nil, err
		}
		route.Stations = append(route.Stations, model.RouteStation{
			StationID: stationID,
			Sequence:  i + 1,
			Station:   station,
		})
	}

	if err := s.repo.TollConfig.CreateRoute(ctx, route); err != nil {
		s.logger.Error("创建收费路线失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}
	return route, nil
}

func (s *tollConfigService) GetRoute(ctx context.Context, id string) (*model.TollRoute, error) {
	route, err := s.repo.TollConfig.GetRoute(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTollRouteNotFound
		}
		s.logger.Error("查询收费路线失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return route, nil
}

func (s *tollConfigService) ListRoutes(ctx context.Context, includeInactive bool) ([]model.TollRoute, error) {
	routes, err := s.repo.TollConfig.ListRoutes(ctx, includeInactive)
	if err != nil {
		s.logger.Error("列出收费路线失败", zap.Error(err))
		return nil, err
	}
	return routes, nil
}

func (s *tollConfigService) UpdateRoute(ctx context.Context, id string, req *dto.UpdateTollRouteRequest, callerID string) (*model.TollRoute, error) {
	route, err := s.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		route.Name = *req.Name
	}
	if req.IsActive != nil {
		route.IsActive = *req.IsActive
	}
	route.UpdatedBy = &callerID

	if err := s.repo.TollConfig.UpdateRoute(ctx, route); err != nil {
		s.logger.Error("更新收费路线失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("收费路线已更新",
		zap.String("id", id),
		zap.Bool("is_active", route.IsActive),
		zap.String("operator", callerID),
	)
	return route, nil
}

// ────────────────────── 收费标准 ──────────────────────

func (s *tollConfigService) CreateRate(ctx context.Context, req *dto.CreateTollRateRequest, callerID string) (*model.TollRate, error) {
	if req.EffectiveTo != nil && req.EffectiveTo.Before(req.EffectiveFrom.Time) {
		return nil, ErrInvalidDateRange
	}
	if _, err := activeRef(ctx, s.repo.TollStation, req.StationID, "收费站"); err != nil {
		return nil, err
	}

	overlapping, err := s.repo.TollConfig.ListRates(ctx, repository.TollRateFilter{
		StationIDs:  []string{req.StationID},
		VehicleType: req.VehicleType,
		From:        &req.EffectiveFrom,
		To:          req.EffectiveTo,
		ActiveOnly:  true,
	})
	if err != nil {
		s.logger.Error("查询收费标准失败", zap.Error(err))
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrTollRateOverlap
	}

	rate := &model.TollRate{
		StationID:     req.StationID,
		VehicleType:   req.VehicleType,
		Amount:        req.Amount,
		Currency:      req.Currency,
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
		IsActive:      true,
	}
	if rate.Currency == "" {
		rate.Currency = s.cfg.Currency
	}
	rate.CreatedBy = &callerID
	rate.UpdatedBy = &callerID

	if err := s.repo.TollConfig.CreateRate(ctx, rate); err != nil {
		s.logger.Error("创建收费标准失败", zap.Error(err))
		return nil, err
	}
	return rate, nil
}

func (s *tollConfigService) UpdateRate(ctx context.Context, id string, req *dto.UpdateTollRateRequest, callerID string) (*model.TollRate, error) {
	rate, err := s.repo.TollConfig.GetRate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTollRateNotFound
		}
		s.logger.Error("查询收费标准失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.EffectiveTo != nil {
		if req.EffectiveTo.Before(rate.EffectiveFrom.Time) {
			return nil, ErrInvalidDateRange
		}
		to := *req.EffectiveTo
		rate.EffectiveTo = &to
	}
	if req.IsActive != nil {
		rate.IsActive = *req.IsActive
	}

	// 重新启用或改变区间后仍需与其他生效标准不重叠
	if rate.IsActive {
		others, err := s.repo.TollConfig.ListRates(ctx, repository.TollRateFilter{
			StationIDs:  []string{rate.StationID},
			VehicleType: rate.VehicleType,
			From:        &rate.EffectiveFrom,
			To:          rate.EffectiveTo,
			ActiveOnly:  true,
		})
		if err != nil {
			s.logger.Error("查询收费标准失败", zap.Error(err))
			return nil, err
		}
		for _, other := range others {
			if other.ID != rate.ID {
				return nil, ErrTollRateOverlap
			}
		}
	}
	rate.UpdatedBy = &callerID

	if err := s.repo.TollConfig.UpdateRate(ctx, rate); err != nil {
		s.logger.Error("更新收费标准失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("收费标准已更新",
		zap.String("id", id),
		zap.Bool("is_active", rate.IsActive),
		zap.String("operator", callerID),
	)
	return rate, nil
}

func (s *tollConfigService) ListRates(ctx context.Context, req *dto.TollRateListRequest) ([]model.TollRate, error) {
	f := repository.TollRateFilter{VehicleType: req.VehicleType}
	if req.StationID != "" {
		f.StationIDs = []string{req.StationID}
	}
	if req.ActiveOn != "" {
		day, err := model.ParseDate(req.ActiveOn)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		f.From, f.To, f.ActiveOnly = &day, &day, true
	}

	rates, err := s.repo.TollConfig.ListRates(ctx, f)
	if err != nil {
		s.logger.Error("列出收费标准失败", zap.Error(err))
		return nil, err
	}
	return rates, nil
}
