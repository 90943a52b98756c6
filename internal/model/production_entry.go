package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus 产量记录审批状态
type EntryStatus string

const (
	EntryPending  EntryStatus = "PENDING"
	EntryApproved EntryStatus = "APPROVED"
	EntryRejected EntryStatus = "REJECTED"
)

// Shift 班次
type Shift string

const (
	ShiftDay   Shift = "DAY"
	ShiftNight Shift = "NIGHT"
)

// ProductionEntry 四类产量记录的公共行为
type ProductionEntry interface {
	Header() *EntryHeader
	// EquipmentRef 记录所属设备 ID（挖掘机 / 车辆 / 破碎机）
	EquipmentRef() string
}

// EntryHeader 产量记录公共字段：标识、班次与审批生命周期
type EntryHeader struct {
	ID          string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Date        Date        `gorm:"type:date;not null"                             json:"date"`
	Shift       Shift       `gorm:"type:varchar(10);not null"                      json:"shift"`
	Status      EntryStatus `gorm:"type:varchar(10);not null"                      json:"status"`
	ApproverID  *string     `gorm:"type:uuid"                                      json:"approverId"`
	ApprovedAt  *time.Time  `json:"approvedAt"`
	CreatedByID string      `gorm:"type:uuid;not null"                             json:"createdById"`
	Notes       string      `gorm:"type:text;not null"                             json:"notes"`
	CreatedAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updatedAt"`
}

// Header 返回公共字段
func (h *EntryHeader) Header() *EntryHeader { return h }

// ExcavatorEntry 挖掘机产量记录，对应 excavator_entries
type ExcavatorEntry struct {
	EntryHeader
	ExcavatorID    string              `gorm:"type:uuid;not null"   json:"excavatorId"`
	MaterialTypeID string              `gorm:"type:uuid;not null"   json:"materialTypeId"`
	PitLocationID  *string             `gorm:"type:uuid"            json:"pitLocationId"`
	BucketCount    int                 `gorm:"not null"             json:"bucketCount"`
	OperatingHours decimal.NullDecimal `gorm:"type:numeric(6,2)"    json:"operatingHours"`

	// 派生字段（创建/更新时计算并冗余存储）
	EstimatedVolume  decimal.NullDecimal `gorm:"type:numeric(14,3)" json:"estimatedVolume"`  // m³
	EstimatedTonnage decimal.NullDecimal `gorm:"type:numeric(14,3)" json:"estimatedTonnage"` // t
}

func (ExcavatorEntry) TableName() string { return "excavator_entries" }

func (e *ExcavatorEntry) EquipmentRef() string { return e.ExcavatorID }

// HaulingEntry 运输记录，对应 hauling_entries
type HaulingEntry struct {
	EntryHeader
	TruckID             string              `gorm:"type:uuid;not null" json:"truckId"`
	ExcavatorID         *string             `gorm:"type:uuid"          json:"excavatorId"`
	MaterialTypeID      string              `gorm:"type:uuid;not null" json:"materialTypeId"`
	PitLocationID       *string             `gorm:"type:uuid"          json:"pitLocationId"`
	StockpileLocationID *string             `gorm:"type:uuid"          json:"stockpileLocationId"`
	TripCount           int                 `gorm:"not null"           json:"tripCount"`
	DistanceKm          decimal.NullDecimal `gorm:"type:numeric(8,2)"  json:"distanceKm"`

	TotalHauled decimal.NullDecimal `gorm:"type:numeric(14,3)" json:"totalHauled"` // t
}

func (HaulingEntry) TableName() string { return "hauling_entries" }

func (e *HaulingEntry) EquipmentRef() string { return e.TruckID }

// CrusherFeedEntry 破碎机进料记录，对应 crusher_feed_entries
type CrusherFeedEntry struct {
	EntryHeader
	CrusherID           string          `gorm:"type:uuid;not null"           json:"crusherId"`
	MaterialTypeID      string          `gorm:"type:uuid;not null"           json:"materialTypeId"`
	StockpileLocationID *string         `gorm:"type:uuid"                    json:"stockpileLocationId"`
	WeighBridgeTonnage  decimal.Decimal `gorm:"type:numeric(14,3);not null"  json:"weighBridgeTonnage"`
	FeedStartTime       time.Time       `gorm:"not null"                     json:"feedStartTime"`
	FeedEndTime         time.Time       `gorm:"not null"                     json:"feedEndTime"`

	FeedRate decimal.NullDecimal `gorm:"type:numeric(14,4)" json:"feedRate"` // t/h
}

func (CrusherFeedEntry) TableName() string { return "crusher_feed_entries" }

func (e *CrusherFeedEntry) EquipmentRef() string { return e.CrusherID }

// CrusherOutputEntry 破碎机产出记录，对应 crusher_output_entries
type CrusherOutputEntry struct {
	EntryHeader
	CrusherID           string          `gorm:"type:uuid;not null"          json:"crusherId"`
	ProductTypeID       string          `gorm:"type:uuid;not null"          json:"productTypeId"`
	StockpileLocationID *string         `gorm:"type:uuid"                   json:"stockpileLocationId"`
	OutputTonnage       decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"outputTonnage"`

	YieldPercentage decimal.NullDecimal `gorm:"type:numeric(7,2)" json:"yieldPercentage"`
}

func (CrusherOutputEntry) TableName() string { return "crusher_output_entries" }

func (e *CrusherOutputEntry) EquipmentRef() string { return e.CrusherID }
