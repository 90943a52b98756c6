package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"ops-panel/internal/model"
)

// ── 产量记录公共 DTO ──

// EntryListRequest 产量记录列表查询参数
// 设备过滤参数（excavatorId / truckId / crusherId）由各类记录的 handler 单独读取
type EntryListRequest struct {
	PaginationRequest
	DateFrom string `form:"dateFrom" binding:"omitempty,isodate"`
	DateTo   string `form:"dateTo"   binding:"omitempty,isodate"`
	Shift    string `form:"shift"    binding:"omitempty,shift"`
	Status   string `form:"status"   binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// ApproveEntryRequest 审批通过
type ApproveEntryRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// RejectEntryRequest 驳回，必须给出原因
type RejectEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// ── 挖掘机记录 ──

// CreateExcavatorEntryRequest 创建挖掘机产量记录
type CreateExcavatorEntryRequest struct {
	Date           model.Date          `json:"date"           binding:"required"`
	Shift          string              `json:"shift"          binding:"required,shift"`
	ExcavatorID    string              `json:"excavatorId"    binding:"required,uuid"`
	MaterialTypeID string              `json:"materialTypeId" binding:"required,uuid"`
	PitLocationID  *string             `json:"pitLocationId"  binding:"omitempty,uuid"`
	BucketCount    int                 `json:"bucketCount"    binding:"gte=0"`
	OperatingHours decimal.NullDecimal `json:"operatingHours" binding:"omitempty,gte=0"`
	Notes          string              `json:"notes"          binding:"max=2000"`
}

// NewEntry 转为待审批记录
func (r *CreateExcavatorEntryRequest) NewEntry() *model.ExcavatorEntry {
	return &model.ExcavatorEntry{
		EntryHeader:    newHeader(r.Date, r.Shift, r.Notes),
		ExcavatorID:    r.ExcavatorID,
		MaterialTypeID: r.MaterialTypeID,
		PitLocationID:  r.PitLocationID,
		BucketCount:    r.BucketCount,
		OperatingHours: r.OperatingHours,
	}
}

// UpdateExcavatorEntryRequest 修改挖掘机产量记录（仅非空字段生效）
type UpdateExcavatorEntryRequest struct {
	Date           *model.Date      `json:"date"`
	Shift          *string          `json:"shift"          binding:"omitempty,shift"`
	ExcavatorID    *string          `json:"excavatorId"    binding:"omitempty,uuid"`
	MaterialTypeID *string          `json:"materialTypeId" binding:"omitempty,uuid"`
	PitLocationID  *string          `json:"pitLocationId"  binding:"omitempty,uuid"`
	BucketCount    *int             `json:"bucketCount"    binding:"omitempty,gte=0"`
	OperatingHours *decimal.Decimal `json:"operatingHours" binding:"omitempty,gte=0"`
	Notes          *string          `json:"notes"          binding:"omitempty,max=2000"`
}

// ApplyTo 将修改合并进记录
func (r *UpdateExcavatorEntryRequest) ApplyTo(e *model.ExcavatorEntry) {
	applyHeader(&e.EntryHeader, r.Date, r.Shift, r.Notes)
	if r.ExcavatorID != nil {
		e.ExcavatorID = *r.ExcavatorID
	}
	if r.MaterialTypeID != nil {
		e.MaterialTypeID = *r.MaterialTypeID
	}
	if r.PitLocationID != nil {
		e.PitLocationID = r.PitLocationID
	}
	if r.BucketCount != nil {
		e.BucketCount = *r.BucketCount
	}
	if r.OperatingHours != nil {
		e.OperatingHours = decimal.NewNullDecimal(*r.OperatingHours)
	}
}

// ── 运输记录 ──

// CreateHaulingEntryRequest 创建运输记录
type CreateHaulingEntryRequest struct {
	Date                model.Date          `json:"date"                binding:"required"`
	Shift               string              `json:"shift"               binding:"required,shift"`
	TruckID             string              `json:"truckId"             binding:"required,uuid"`
	ExcavatorID         *string             `json:"excavatorId"         binding:"omitempty,uuid"`
	MaterialTypeID      string              `json:"materialTypeId"      binding:"required,uuid"`
	PitLocationID       *string             `json:"pitLocationId"       binding:"omitempty,uuid"`
	StockpileLocationID *string             `json:"stockpileLocationId" binding:"omitempty,uuid"`
	TripCount           int                 `json:"tripCount"           binding:"gte=0"`
	DistanceKm          decimal.NullDecimal `json:"distanceKm"          binding:"omitempty,gte=0"`
	Notes               string              `json:"notes"               binding:"max=2000"`
}

// NewEntry 转为待审批记录
func (r *CreateHaulingEntryRequest) NewEntry() *model.HaulingEntry {
	return &model.HaulingEntry{
		EntryHeader:         newHeader(r.Date, r.Shift, r.Notes),
		TruckID:             r.TruckID,
		ExcavatorID:         r.ExcavatorID,
		MaterialTypeID:      r.MaterialTypeID,
		PitLocationID:       r.PitLocationID,
		StockpileLocationID: r.StockpileLocationID,
		TripCount:           r.TripCount,
		DistanceKm:          r.DistanceKm,
	}
}

// UpdateHaulingEntryRequest 修改运输记录
type UpdateHaulingEntryRequest struct {
	Date                *model.Date      `json:"date"`
	Shift               *string          `json:"shift"               binding:"omitempty,shift"`
	TruckID             *string          `json:"truckId"             binding:"omitempty,uuid"`
	ExcavatorID         *string          `json:"excavatorId"         binding:"omitempty,uuid"`
	MaterialTypeID      *string          `json:"materialTypeId"      binding:"omitempty,uuid"`
	PitLocationID       *string          `json:"pitLocationId"       binding:"omitempty,uuid"`
	StockpileLocationID *string          `json:"stockpileLocationId" binding:"omitempty,uuid"`
	TripCount           *int             `json:"tripCount"           binding:"omitempty,gte=0"`
	DistanceKm          *decimal.Decimal `json:"distanceKm"          binding:"omitempty,gte=0"`
	Notes               *string          `json:"notes"               binding:"omitempty,max=2000"`
}

// ApplyTo 将修改合并进记录
func (r *UpdateHaulingEntryRequest) ApplyTo(e *model.HaulingEntry) {
	applyHeader(&e.EntryHeader, r.Date, r.Shift, r.Notes)
	if r.TruckID != nil {
		e.TruckID = *r.TruckID
	}
	if r.ExcavatorID != nil {
		e.ExcavatorID = r.ExcavatorID
	}
	if r.MaterialTypeID != nil {
		e.MaterialTypeID = *r.MaterialTypeID
	}
	if r.PitLocationID != nil {
		e.PitLocationID = r.PitLocationID
	}
	if r.StockpileLocationID != nil {
		e.StockpileLocationID = r.StockpileLocationID
	}
	if r.TripCount != nil {
		e.TripCount = *r.TripCount
	}
	if r.DistanceKm != nil {
		e.DistanceKm = decimal.NewNullDecimal(*r.DistanceKm)
	}
}

// ── 破碎机进料 ──

// CreateCrusherFeedEntryRequest 创建进料记录
type CreateCrusherFeedEntryRequest struct {
	Date                model.Date      `json:"date"                binding:"required"`
	Shift               string          `json:"shift"               binding:"required,shift"`
	CrusherID           string          `json:"crusherId"           binding:"required,uuid"`
	MaterialTypeID      string          `json:"materialTypeId"      binding:"required,uuid"`
	StockpileLocationID *string         `json:"stockpileLocationId" binding:"omitempty,uuid"`
	WeighBridgeTonnage  decimal.Decimal `json:"weighBridgeTonnage"  binding:"gte=0"`
	FeedStartTime       time.Time       `json:"feedStartTime"       binding:"required"`
	FeedEndTime         time.Time       `json:"feedEndTime"         binding:"required"`
	Notes               string          `json:"notes"               binding:"max=2000"`
}

// NewEntry 转为待审批记录
func (r *CreateCrusherFeedEntryRequest) NewEntry() *model.CrusherFeedEntry {
	return &model.CrusherFeedEntry{
		EntryHeader:         newHeader(r.Date, r.Shift, r.Notes),
		CrusherID:           r.CrusherID,
		MaterialTypeID:      r.MaterialTypeID,
		StockpileLocationID: r.StockpileLocationID,
		WeighBridgeTonnage:  r.WeighBridgeTonnage,
		FeedStartTime:       r.FeedStartTime,
		FeedEndTime:         r.FeedEndTime,
	}
}

// UpdateCrusherFeedEntryRequest 修改进料记录
type UpdateCrusherFeedEntryRequest struct {
	Date                *model.Date      `json:"date"`
	Shift               *string          `json:"shift"               binding:"omitempty,shift"`
	CrusherID           *string          `json:"crusherId"           binding:"omitempty,uuid"`
	MaterialTypeID      *string          `json:"materialTypeId"      binding:"omitempty,uuid"`
	StockpileLocationID *string          `json:"stockpileLocationId" binding:"omitempty,uuid"`
	WeighBridgeTonnage  *decimal.Decimal `json:"weighBridgeTonnage"  binding:"omitempty,gte=0"`
	FeedStartTime       *time.Time       `json:"feedStartTime"`
	FeedEndTime         *time.Time       `json:"feedEndTime"`
	Notes               *string          `json:"notes"               binding:"omitempty,max=2000"`
}

// ApplyTo 将修改合并进记录
func (r *UpdateCrusherFeedEntryRequest) ApplyTo(e *model.CrusherFeedEntry) {
	applyHeader(&e.EntryHeader, r.Date, r.Shift, r.Notes)
	if r.CrusherID != nil {
		e.CrusherID = *r.CrusherID
	}
	if r.MaterialTypeID != nil {
		e.MaterialTypeID = *r.MaterialTypeID
	}
	if r.StockpileLocationID != nil {
		e.StockpileLocationID = r.StockpileLocationID
	}
	if r.WeighBridgeTonnage != nil {
		e.WeighBridgeTonnage = *r.WeighBridgeTonnage
	}
	if r.FeedStartTime != nil {
		e.FeedStartTime = *r.FeedStartTime
	}
	if r.FeedEndTime != nil {
		e.FeedEndTime = *r.FeedEndTime
	}
}

// ── 破碎机产出 ──

// CreateCrusherOutputEntryRequest 创建产出记录
type CreateCrusherOutputEntryRequest struct {
	Date                model.Date      `json:"date"                binding:"required"`
	Shift               string          `json:"shift"               binding:"required,shift"`
	CrusherID           string          `json:"crusherId"           binding:"required,uuid"`
	ProductTypeID       string          `json:"productTypeId"       binding:"required,uuid"`
	StockpileLocationID *string         `json:"stockpileLocationId" binding:"omitempty,uuid"`
	OutputTonnage       decimal.Decimal `json:"outputTonnage"       binding:"gte=0"`
	Notes               string          `json:"notes"               binding:"max=2000"`
}

// NewEntry 转为待审批记录
func (r *CreateCrusherOutputEntryRequest) NewEntry() *model.CrusherOutputEntry {
	return &model.CrusherOutputEntry{
		EntryHeader:         newHeader(r.Date, r.Shift, r.Notes),
		CrusherID:           r.CrusherID,
		ProductTypeID:       r.ProductTypeID,
		StockpileLocationID: r.StockpileLocationID,
		OutputTonnage:       r.OutputTonnage,
	}
}

// UpdateCrusherOutputEntryRequest 修改产出记录
type UpdateCrusherOutputEntryRequest struct {
	Date                *model.Date      `json:"date"`
	Shift               *string          `json:"shift"               binding:"omitempty,shift"`
	CrusherID           *string          `json:"crusherId"           binding:"omitempty,uuid"`
	ProductTypeID       *string          `json:"productTypeId"       binding:"omitempty,uuid"`
	StockpileLocationID *string          `json:"stockpileLocationId" binding:"omitempty,uuid"`
	OutputTonnage       *decimal.Decimal `json:"outputTonnage"       binding:"omitempty,gte=0"`
	Notes               *string          `json:"notes"               binding:"omitempty,max=2000"`
}

// ApplyTo 将修改合并进记录
func (r *UpdateCrusherOutputEntryRequest) ApplyTo(e *model.CrusherOutputEntry) {
	applyHeader(&e.EntryHeader, r.Date, r.Shift, r.Notes)
	if r.CrusherID != nil {
		e.CrusherID = *r.CrusherID
	}
	if r.ProductTypeID != nil {
		e.ProductTypeID = *r.ProductTypeID
	}
	if r.StockpileLocationID != nil {
		e.StockpileLocationID = r.StockpileLocationID
	}
	if r.OutputTonnage != nil {
		e.OutputTonnage = *r.OutputTonnage
	}
}

// ── 内部辅助 ──

func newHeader(date model.Date, shift, notes string) model.EntryHeader {
	return model.EntryHeader{
		Date:  date,
		Shift: model.Shift(shift),
		Notes: notes,
	}
}

func applyHeader(h *model.EntryHeader, date *model.Date, shift, notes *string) {
	if date != nil && !date.IsZero() {
		h.Date = *date
	}
	if shift != nil {
		h.Shift = model.Shift(*shift)
	}
	if notes != nil {
		h.Notes = *notes
	}
}
