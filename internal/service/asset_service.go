package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ops-panel/internal/dto"
	"ops-panel/internal/model"
	"ops-panel/internal/repository"
)

// ── 资产业务错误 ──

var (
	ErrAssetNotFound          = errors.New("资产不存在")
	ErrAssetCodeExists        = errors.New("资产编码已存在")
	ErrProfileNotFound        = errors.New("该资产尚未设置折旧方案")
	ErrSalvageExceedsCost     = errors.New("残值不能大于资产原值")
	ErrProfileBeforeAcquiring = errors.New("折旧开始日期不能早于购置日期")
)

// AssetService 固定资产与折旧方案管理接口
type AssetService interface {
	Create(ctx context.Context, req *dto.CreateAssetRequest, callerID string) (*model.Asset, error)
	GetByID(ctx context.Context, id string) (*model.Asset, error)
	List(ctx context.Context, req *dto.AssetListRequest) ([]model.Asset, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssetRequest, callerID string) (*model.Asset, error)

	GetProfile(ctx context.Context, assetID string) (*model.DepreciationProfile, error)
	UpsertProfile(ctx context.Context, assetID string, req *dto.UpsertDepreciationProfileRequest, callerID string) (*model.DepreciationProfile, error)
}

type assetService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssetService 创建 AssetService 实例
func NewAssetService(repo *repository.Repository, logger *zap.Logger) AssetService {
	return &assetService{repo: repo, logger: logger}
}

func (s *assetService) Create(ctx context.Context, req *dto.CreateAssetRequest, callerID string) (*model.Asset, error) {
	exists, err := s.repo.Asset.ExistsByCode(ctx, req.Code)
	if err != nil {
		s.logger.Error("检查资产编码失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrAssetCodeExists
	}

	a := &model.Asset{
		Code:            req.Code,
		Name:            req.Name,
		AcquisitionCost: req.AcquisitionCost,
		AcquisitionDate: req.AcquisitionDate,
		Status:          model.AssetActive,
	}
	a.CreatedBy = &callerID
	a.UpdatedBy = &callerID

	if err := s.repo.Asset.Create(ctx, a); err != nil {
		s.logger.Error("创建资产失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("资产已登记", zap.String("id", a.ID), zap.String("code", a.Code))
	return a, nil
}

func (s *assetService) GetByID(ctx context.Context, id string) (*model.Asset, error) {
	a, err := s.repo.Asset.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		s.logger.Error("查询资产失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (s *assetService) List(ctx context.Context, req *dto.AssetListRequest) ([]model.Asset, int64, error) {
	items, total, err := s.repo.Asset.List(ctx, repository.AssetFilter{
		Status: req.Status,
		Search: req.Search,
		Offset: req.GetOffset(),
		Limit:  req.GetLimit(),
	})
	if err != nil {
		s.logger.Error("查询资产列表失败", zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}

func (s *assetService) Update(ctx context.Context, id string, req *dto.UpdateAssetRequest, callerID string) (*model.Asset, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Status != nil {
		a.Status = model.AssetStatus(*req.Status)
	}
	a.UpdatedBy = &callerID

	if err := s.repo.Asset.Update(ctx, a); err != nil {
		s.logger.Error("更新资产失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// ── 折旧方案 ──

func (s *assetService) GetProfile(ctx context.Context, assetID string) (*model.DepreciationProfile, error) {
	if _, err := s.GetByID(ctx, assetID); err != nil {
		return nil, err
	}
	p, err := s.repo.Depreciation.GetProfileByAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("查询折旧方案失败", zap.String("asset_id", assetID), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *assetService) UpsertProfile(ctx context.Context, assetID string, req *dto.UpsertDepreciationProfileRequest, callerID string) (*model.DepreciationProfile, error) {
	a, err := s.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if req.SalvageValue.GreaterThan(a.AcquisitionCost) {
		return nil, ErrSalvageExceedsCost
	}
	if req.StartDate.Before(a.AcquisitionDate.Time) {
		return nil, ErrProfileBeforeAcquiring
	}

	p := &model.DepreciationProfile{
		AssetID:          assetID,
		Method:           model.DepreciationMethod(req.Method),
		UsefulLifeMonths: req.UsefulLifeMonths,
		SalvageValue:     req.SalvageValue,
		StartDate:        req.StartDate,
		IsActive:         true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.CreatedBy = &callerID
	p.UpdatedBy = &callerID

	if err := s.repo.Depreciation.SaveProfile(ctx, p); err != nil {
		s.logger.Error("保存折旧方案失败", zap.String("asset_id", assetID), zap.Error(err))
		return nil, err
	}

	// 冲突更新时 RETURNING 不一定回填 id，重新读取
	saved, err := s.repo.Depreciation.GetProfileByAsset(ctx, assetID)
	if err != nil {
		s.logger.Error("读取折旧方案失败", zap.String("asset_id", assetID), zap.Error(err))
		return nil, err
	}
	return saved, nil
}
