package dto

import (
	"github.com/shopspring/decimal"

	"ops-panel/internal/model"
)

// ── 固定资产 ──

// CreateAssetRequest 登记固定资产
type CreateAssetRequest struct {
	Code            string          `json:"code"            binding:"required,max=32"`
	Name            string          `json:"name"            binding:"required,max=150"`
	AcquisitionCost decimal.Decimal `json:"acquisitionCost" binding:"gte=0"`
	AcquisitionDate model.Date      `json:"acquisitionDate" binding:"required"`
}

// UpdateAssetRequest 修改资产（含报废）
type UpdateAssetRequest struct {
	Name   *string `json:"name"   binding:"omitempty,min=1,max=150"`
	Status *string `json:"status" binding:"omitempty,oneof=ACTIVE DISPOSED"`
}

// AssetListRequest 资产列表查询参数
type AssetListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE DISPOSED"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

// UpsertDepreciationProfileRequest 设置折旧方案（每个资产一条）
type UpsertDepreciationProfileRequest struct {
	Method           string          `json:"method"           binding:"required,oneof=STRAIGHT_LINE DECLINING_BALANCE"`
	UsefulLifeMonths int             `json:"usefulLifeMonths" binding:"required,min=1,max=1200"`
	SalvageValue     decimal.Decimal `json:"salvageValue"     binding:"gte=0"`
	StartDate        model.Date      `json:"startDate"        binding:"required"`
	IsActive         *bool           `json:"isActive"`
}

// ── 计提与过账 ──

// RunMonthlyRequest 月度折旧
type RunMonthlyRequest struct {
	Period string `json:"period" binding:"required,period"`
}

// DepreciationRunItem 单个折旧方案的处理结果
type DepreciationRunItem struct {
	ProfileID string           `json:"profileId"`
	AssetID   string           `json:"assetId"`
	AssetCode string           `json:"assetCode,omitempty"`
	EntryID   string           `json:"entryId,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

// RunMonthlyResult 月度折旧批处理结果（逐项隔离，不因单项失败中断）
type RunMonthlyResult struct {
	Period  string                `json:"period"`
	Created []DepreciationRunItem `json:"created"`
	Skipped []DepreciationRunItem `json:"skipped"`
	Failed  []DepreciationRunItem `json:"failed"`
}

// PostItem 单条折旧明细的过账结果
type PostItem struct {
	EntryID string `json:"entryId"`
	AssetID string `json:"assetId"`
	Reason  string `json:"reason,omitempty"`
}

// PostPeriodResult 期间批量过账结果
type PostPeriodResult struct {
	Period string     `json:"period"`
	Posted []PostItem `json:"posted"`
	Failed []PostItem `json:"failed"`
}

// DepreciationScheduleRow 折旧计划表的一行（实际计提或预测）
type DepreciationScheduleRow struct {
	Period                  string          `json:"period"`
	Amount                  decimal.Decimal `json:"amount"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulatedDepreciation"`
	BookValueAfter          decimal.Decimal `json:"bookValueAfter"`
	IsPosted                bool            `json:"isPosted"`
	Projected               bool            `json:"projected"`
}
