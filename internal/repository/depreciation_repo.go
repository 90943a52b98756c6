package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ops-panel/internal/model"
)

// AssetFilter 资产列表过滤条件
type AssetFilter struct {
	Status string
	Search string
	Offset int
	Limit  int
}

// AssetRepository 固定资产数据访问接口
type AssetRepository interface {
	Create(ctx context.Context, a *model.Asset) error
	GetByID(ctx context.Context, id string) (*model.Asset, error)
	List(ctx context.Context, f AssetFilter) ([]model.Asset, int64, error)
	Update(ctx context.Context, a *model.Asset) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

type assetRepo struct {
	db *gorm.DB
}

// NewAssetRepo 创建 AssetRepository 实例
func NewAssetRepo(db *gorm.DB) AssetRepository {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, a *model.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assetRepo) GetByID(ctx context.Context, id string) (*model.Asset, error) {
	var a model.Asset
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepo) List(ctx context.Context, f AssetFilter) ([]model.Asset, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Asset{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("code ILIKE ? OR name ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]model.Asset, 0)
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	err := q.Order("code ASC").Find(&items).Error
	return items, total, err
}

func (r *assetRepo) Update(ctx context.Context, a *model.Asset) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *assetRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Asset{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// ── 折旧 ──

// DepreciationRepository 折旧方案与折旧明细数据访问接口
type DepreciationRepository interface {
	GetProfileByAsset(ctx context.Context, assetID string) (*model.DepreciationProfile, error)
	// SaveProfile 按 asset_id 新增或覆盖折旧方案
	SaveProfile(ctx context.Context, p *model.DepreciationProfile) error
	// ListActiveProfiles 返回启用的方案（预加载资产）
	ListActiveProfiles(ctx context.Context) ([]model.DepreciationProfile, error)
	// LatestEntry 返回方案最近一期明细，不存在时返回 gorm.ErrRecordNotFound
	LatestEntry(ctx context.Context, profileID string) (*model.DepreciationEntry, error)
	HasEntry(ctx context.Context, profileID string, period string) (bool, error)
	// CreateEntryIfAbsent 依赖 (profile_id, period) 唯一约束，已存在时不写入并返回 false
	CreateEntryIfAbsent(ctx context.Context, e *model.DepreciationEntry) (bool, error)
	GetEntry(ctx context.Context, assetID string, period string) (*model.DepreciationEntry, error)
	ListEntriesByAsset(ctx context.Context, assetID string) ([]model.DepreciationEntry, error)
	ListUnpostedByPeriod(ctx context.Context, period string) ([]model.DepreciationEntry, error)
	// MarkPosted 仅对未过账明细生效，返回是否实际发生变更
	MarkPosted(ctx context.Context, entryID string, actorID string, at time.Time) (bool, error)
}

type depreciationRepo struct {
	db *gorm.DB
}

// NewDepreciationRepo 创建 DepreciationRepository 实例
func NewDepreciationRepo(db *gorm.DB) DepreciationRepository {
	return &depreciationRepo{db: db}
}

func (r *depreciationRepo) GetProfileByAsset(ctx context.Context, assetID string) (*model.DepreciationProfile, error) {
	var p model.DepreciationProfile
	if err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *depreciationRepo) SaveProfile(ctx context.Context, p *model.DepreciationProfile) error {
	return r.db.WithContext(ctx).
		Omit("Asset").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "asset_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"method", "useful_life_months", "salvage_value", "start_date", "is_active", "updated_at", "updated_by",
			}),
		}).
		Create(p).Error
}

func (r *depreciationRepo) ListActiveProfiles(ctx context.Context) ([]model.DepreciationProfile, error) {
	profiles := make([]model.DepreciationProfile, 0)
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *depreciationRepo) LatestEntry(ctx context.Context, profileID string) (*model.DepreciationEntry, error) {
	var e model.DepreciationEntry
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("period DESC").
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *depreciationRepo) HasEntry(ctx context.Context, profileID string, period string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DepreciationEntry{}).
		Where("profile_id = ? AND period = ?", profileID, period).
		Count(&count).Error
	return count > 0, err
}

func (r *depreciationRepo) CreateEntryIfAbsent(ctx context.Context, e *model.DepreciationEntry) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "period"}},
			DoNothing: true,
		}).
		Create(e)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *depreciationRepo) GetEntry(ctx context.Context, assetID string, period string) (*model.DepreciationEntry, error) {
	var e model.DepreciationEntry
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND period = ?", assetID, period).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *depreciationRepo) ListEntriesByAsset(ctx context.Context, assetID string) ([]model.DepreciationEntry, error) {
	entries := make([]model.DepreciationEntry, 0)
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("period ASC").
		Find(&entries).Error
	return entries, err
}

func (r *depreciationRepo) ListUnpostedByPeriod(ctx context.Context, period string) ([]model.DepreciationEntry, error) {
	entries := make([]model.DepreciationEntry, 0)
	err := r.db.WithContext(ctx).
		Where("period = ? AND is_posted = ?", period, false).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *depreciationRepo) MarkPosted(ctx context.Context, entryID string, actorID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.DepreciationEntry{}).
		Where("id = ? AND is_posted = ?", entryID, false).
		Updates(map[string]interface{}{
			"is_posted":    true,
			"posted_at":    at,
			"posted_by_id": actorID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
