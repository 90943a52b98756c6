package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetStatus 资产状态
type AssetStatus string

const (
	AssetActive   AssetStatus = "ACTIVE"
	AssetDisposed AssetStatus = "DISPOSED"
)

// DepreciationMethod 折旧方法
type DepreciationMethod string

const (
	StraightLine     DepreciationMethod = "STRAIGHT_LINE"
	DecliningBalance DepreciationMethod = "DECLINING_BALANCE"
)

// Asset 固定资产表，对应 assets
type Asset struct {
	ID              string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code            string          `gorm:"type:varchar(32);not null"                      json:"code"`
	Name            string          `gorm:"type:varchar(150);not null"                     json:"name"`
	AcquisitionCost decimal.Decimal `gorm:"type:numeric(16,2);not null"                    json:"acquisitionCost"`
	AcquisitionDate Date            `gorm:"type:date;not null"                             json:"acquisitionDate"`
	Status          AssetStatus     `gorm:"type:varchar(10);not null"                      json:"status"`
	BaseModel
}

func (Asset) TableName() string { return "assets" }

// DepreciationProfile 折旧方案（每个资产一条）， 对应 depreciation_profiles
type DepreciationProfile struct {
	ID               string             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AssetID          string             `gorm:"type:uuid;not null;uniqueIndex"                 json:"assetId"`
	Method           DepreciationMethod `gorm:"type:varchar(20);not null"                      json:"method"`
	UsefulLifeMonths int                `gorm:"not null"                                       json:"usefulLifeMonths"`
	SalvageValue     decimal.Decimal    `gorm:"type:numeric(16,2);not null"                    json:"salvageValue"`
	StartDate        Date               `gorm:"type:date;not null"                             json:"startDate"`
	IsActive         bool               `gorm:"not null"                                       json:"isActive"`
	BaseModel

	// 关联
	Asset *Asset `gorm:"foreignKey:AssetID;references:ID" json:"asset,omitempty"`
}

func (DepreciationProfile) TableName() string { return "depreciation_profiles" }

// DepreciationEntry 折旧明细，对应 depreciation_entries
// (profile_id, period) 唯一，保证同一期间不会重复计提。
type DepreciationEntry struct {
	ID                      string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"id"`
	ProfileID               string          `gorm:"type:uuid;not null;uniqueIndex:uq_dep_profile_period" json:"profileId"`
	AssetID                 string          `gorm:"type:uuid;not null"                              json:"assetId"`
	Period                  string          `gorm:"type:varchar(7);not null;uniqueIndex:uq_dep_profile_period" json:"period"`
	Amount                  decimal.Decimal `gorm:"type:numeric(16,2);not null"                     json:"amount"`
	AccumulatedDepreciation decimal.Decimal `gorm:"type:numeric(16,2);not null"                     json:"accumulatedDepreciation"`
	BookValueAfter          decimal.Decimal `gorm:"type:numeric(16,2);not null"                     json:"bookValueAfter"`
	IsPosted                bool            `gorm:"not null"                                        json:"isPosted"`
	PostedAt                *time.Time      `json:"postedAt"`
	PostedByID              *string         `gorm:"type:uuid"                                       json:"postedById"`
	CreatedByID             string          `gorm:"type:uuid;not null"                              json:"createdById"`
	CreatedAt               time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"              json:"createdAt"`
}

func (DepreciationEntry) TableName() string { return "depreciation_entries" }
