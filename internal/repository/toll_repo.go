package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ops-panel/internal/model"
	pkgerrors "ops-panel/pkg/errors"
)

// TollPaymentFilter 支付台账过滤条件，PaidFrom 含、PaidTo 不含
type TollPaymentFilter struct {
	PaidFrom    *time.Time
	PaidTo      *time.Time
	Statuses    []model.TollPaymentStatus
	RouteID     string
	StationID   string
	VehicleType string
	Currency    string
	Offset      int
	Limit       int
}

// StationTotal 按收费站汇总的实付金额，StationID 为空表示未关联收费站
type StationTotal struct {
	StationID string
	Total     decimal.Decimal
	Count     int64
}

// CurrencyTotal 按币种汇总的实付金额
type CurrencyTotal struct {
	Currency string
	Total    decimal.Decimal
	Count    int64
}

// TollPaymentRepository 过路费支付台账数据访问接口
type TollPaymentRepository interface {
	Create(ctx context.Context, p *model.TollPayment) error
	GetByID(ctx context.Context, id string) (*model.TollPayment, error)
	List(ctx context.Context, f TollPaymentFilter) ([]model.TollPayment, int64, error)
	// UpdateDraft 仅当记录仍为 DRAFT 且属于 PaidByUserID 时覆盖内容
	UpdateDraft(ctx context.Context, p *model.TollPayment) error
	// Transition 仅当当前状态为 from 时流转，fields 为随状态一并写入的列
	Transition(ctx context.Context, id string, from, to model.TollPaymentStatus, fields map[string]interface{}) error
	// DeleteInStatus 仅当当前状态仍为 status 时删除
	DeleteInStatus(ctx context.Context, id string, status model.TollPaymentStatus) error
	SumByStation(ctx context.Context, f TollPaymentFilter) ([]StationTotal, error)
	SumByCurrency(ctx context.Context, f TollPaymentFilter) ([]CurrencyTotal, error)
}

type tollPaymentRepo struct {
	db *gorm.DB
}

// NewTollPaymentRepo 创建 TollPaymentRepository 实例
func NewTollPaymentRepo(db *gorm.DB) TollPaymentRepository {
	return &tollPaymentRepo{db: db}
}

func (r *tollPaymentRepo) Create(ctx context.Context, p *model.TollPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *tollPaymentRepo) GetByID(ctx context.Context, id string) (*model.TollPayment, error) {
	var p model.TollPayment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *tollPaymentRepo) filtered(ctx context.Context, f TollPaymentFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.TollPayment{})
	if f.PaidFrom != nil {
		q = q.Where("paid_at >= ?", *f.PaidFrom)
	}
	if f.PaidTo != nil {
		q = q.Where("paid_at < ?", *f.PaidTo)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.RouteID != "" {
		q = q.Where("route_id = ?", f.RouteID)
	}
	if f.StationID != "" {
		q = q.Where("toll_station_id = ?", f.StationID)
	}
	if f.VehicleType != "" {
		q = q.Where("vehicle_type = ?", f.VehicleType)
	}
	if f.Currency != "" {
		q = q.Where("currency = ?", f.Currency)
	}
	return q
}

func (r *tollPaymentRepo) List(ctx context.Context, f TollPaymentFilter) ([]model.TollPayment, int64, error) {
	q := r.filtered(ctx, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]model.TollPayment, 0)
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	err := q.Order("paid_at DESC").Find(&items).Error
	return items, total, err
}

func (r *tollPaymentRepo) UpdateDraft(ctx context.Context, p *model.TollPayment) error {
	result := r.db.WithContext(ctx).
		Model(p).
		Where("status = ? AND paid_by_user_id = ?", model.TollDraft, p.PaidByUserID).
		Select("amount", "currency", "vehicle_type", "paid_at", "route_id", "toll_station_id",
			"truck_id", "receipt_number", "notes", "updated_by").
		Updates(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

func (r *tollPaymentRepo) Transition(ctx context.Context, id string, from, to model.TollPaymentStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.WithContext(ctx).
		Model(&model.TollPayment{}).
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

func (r *tollPaymentRepo) DeleteInStatus(ctx context.Context, id string, status model.TollPaymentStatus) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, status).
		Delete(&model.TollPayment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

func (r *tollPaymentRepo) SumByStation(ctx context.Context, f TollPaymentFilter) ([]StationTotal, error) {
	f.Offset, f.Limit = 0, 0
	var rows []StationTotal
	err := r.filtered(ctx, f).
		Select("COALESCE(toll_station_id::text, '') AS station_id, SUM(amount) AS total, COUNT(*) AS count").
		Group("COALESCE(toll_station_id::text, '')").
		Scan(&rows).Error
	return rows, err
}

func (r *tollPaymentRepo) SumByCurrency(ctx context.Context, f TollPaymentFilter) ([]CurrencyTotal, error) {
	f.Offset, f.Limit = 0, 0
	var rows []CurrencyTotal
	err := r.filtered(ctx, f).
		Select("currency, SUM(amount) AS total, COUNT(*) AS count").
		Group("currency").
		Order("currency ASC").
		Scan(&rows).Error
	return rows, err
}

// ── 收费配置 ──

// TollRateFilter 收费标准过滤条件
// From/To 非空时只返回生效区间与 [From, To] 有交集的标准
type TollRateFilter struct {
	StationIDs  []string
	VehicleType string
	From        *model.Date
	To          *model.Date
	Currency    string
	ActiveOnly  bool
}

// TollConfigRepository 路线与收费标准数据访问接口
type TollConfigRepository interface {
	// CreateRoute 在一个事务内写入路线及其收费站顺序
	CreateRoute(ctx context.Context, route *model.TollRoute) error
	GetRoute(ctx context.Context, id string) (*model.TollRoute, error)
	ListRoutes(ctx context.Context, includeInactive bool) ([]model.TollRoute, error)
	// UpdateRoute 只写名称与启用状态，收费站顺序创建后不可改
	UpdateRoute(ctx context.Context, route *model.TollRoute) error
	CreateRate(ctx context.Context, rate *model.TollRate) error
	GetRate(ctx context.Context, id string) (*model.TollRate, error)
	// UpdateRate 只写失效日期与启用状态，金额与生效日期不可改
	UpdateRate(ctx context.Context, rate *model.TollRate) error
	ListRates(ctx context.Context, f TollRateFilter) ([]model.TollRate, error)
}

type tollConfigRepo struct {
	db *gorm.DB
}

// NewTollConfigRepo 创建 TollConfigRepository 实例
func NewTollConfigRepo(db *gorm.DB) TollConfigRepository {
	return &tollConfigRepo{db: db}
}

func (r *tollConfigRepo) CreateRoute(ctx context.Context, route *model.TollRoute) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stations := route.Stations
		if err := tx.Omit("Stations").Create(route).Error; err != nil {
			return err
		}
		for i := range stations {
			stations[i].RouteID = route.ID
		}
		if len(stations) > 0 {
			if err := tx.Omit("Station").Create(&stations).Error; err != nil {
				return err
			}
		}
		route.Stations = stations
		return nil
	})
}

func (r *tollConfigRepo) preloadStations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Stations", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Preload("Stations.Station")
}

func (r *tollConfigRepo) GetRoute(ctx context.Context, id string) (*model.TollRoute, error) {
	var route model.TollRoute
	err := r.preloadStations(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&route).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *tollConfigRepo) ListRoutes(ctx context.Context, includeInactive bool) ([]model.TollRoute, error) {
	q := r.preloadStations(r.db.WithContext(ctx))
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	routes := make([]model.TollRoute, 0)
	err := q.Order("code ASC").Find(&routes).Error
	return routes, err
}

func (r *tollConfigRepo) UpdateRoute(ctx context.Context, route *model.TollRoute) error {
	return r.db.WithContext(ctx).
		Model(route).
		Select("name", "is_active", "updated_by", "updated_at").
		Updates(route).Error
}

func (r *tollConfigRepo) CreateRate(ctx context.Context, rate *model.TollRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *tollConfigRepo) GetRate(ctx context.Context, id string) (*model.TollRate, error) {
	var rate model.TollRate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *tollConfigRepo) UpdateRate(ctx context.Context, rate *model.TollRate) error {
	return r.db.WithContext(ctx).
		Model(rate).
		Select("effective_to", "is_active", "updated_by", "updated_at").
		Updates(rate).Error
}

func (r *tollConfigRepo) ListRates(ctx context.Context, f TollRateFilter) ([]model.TollRate, error) {
	q := r.db.WithContext(ctx).Model(&model.TollRate{})
	if len(f.StationIDs) > 0 {
		q = q.Where("station_id IN ?", f.StationIDs)
	}
	if f.VehicleType != "" {
		q = q.Where("vehicle_type = ?", f.VehicleType)
	}
	if f.Currency != "" {
		q = q.Where("currency = ?", f.Currency)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.To != nil {
		q = q.Where("effective_from <= ?", *f.To)
	}
	if f.From != nil {
		q = q.Where("effective_to IS NULL OR effective_to >= ?", *f.From)
	}

	rates := make([]model.TollRate, 0)
	err := q.Order("station_id ASC, effective_from DESC").Find(&rates).Error
	return rates, err
}
