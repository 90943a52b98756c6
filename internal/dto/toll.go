package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"ops-panel/internal/model"
)

// ── 过路费支付 ──

// CreateTollPaymentRequest 登记过路费支付（DRAFT）
type CreateTollPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"        binding:"gt=0"`
	Currency      string          `json:"currency"      binding:"omitempty,len=3,uppercase"`
	VehicleType   string          `json:"vehicleType"   binding:"required,max=30"`
	PaidAt        time.Time       `json:"paidAt"        binding:"required"`
	RouteID       *string         `json:"routeId"       binding:"omitempty,uuid"`
	TollStationID *string         `json:"tollStationId" binding:"omitempty,uuid"`
	TruckID       *string         `json:"truckId"       binding:"omitempty,uuid"`
	ReceiptNumber string          `json:"receiptNumber" binding:"max=64"`
	Notes         string          `json:"notes"         binding:"max=2000"`
}

// UpdateTollPaymentRequest 修改草稿
type UpdateTollPaymentRequest struct {
	Amount        *decimal.Decimal `json:"amount"        binding:"omitempty,gt=0"`
	Currency      *string          `json:"currency"      binding:"omitempty,len=3,uppercase"`
	VehicleType   *string          `json:"vehicleType"   binding:"omitempty,min=1,max=30"`
	PaidAt        *time.Time       `json:"paidAt"`
	RouteID       *string          `json:"routeId"       binding:"omitempty,uuid"`
	TollStationID *string          `json:"tollStationId" binding:"omitempty,uuid"`
	TruckID       *string          `json:"truckId"       binding:"omitempty,uuid"`
	ReceiptNumber *string          `json:"receiptNumber" binding:"omitempty,max=64"`
	Notes         *string          `json:"notes"         binding:"omitempty,max=2000"`
}

// ApplyTo 将修改合并进支付记录
func (r *UpdateTollPaymentRequest) ApplyTo(p *model.TollPayment) {
	if r.Amount != nil {
		p.Amount = *r.Amount
	}
	if r.Currency != nil {
		p.Currency = *r.Currency
	}
	if r.VehicleType != nil {
		p.VehicleType = *r.VehicleType
	}
	if r.PaidAt != nil {
		p.PaidAt = *r.PaidAt
	}
	if r.RouteID != nil {
		p.RouteID = r.RouteID
	}
	if r.TollStationID != nil {
		p.TollStationID = r.TollStationID
	}
	if r.TruckID != nil {
		p.TruckID = r.TruckID
	}
	if r.ReceiptNumber != nil {
		p.ReceiptNumber = *r.ReceiptNumber
	}
	if r.Notes != nil {
		p.Notes = *r.Notes
	}
}

// TollPaymentListRequest 支付列表查询参数
type TollPaymentListRequest struct {
	PaginationRequest
	DateFrom      string `form:"dateFrom"      binding:"omitempty,isodate"`
	DateTo        string `form:"dateTo"        binding:"omitempty,isodate"`
	Status        string `form:"status"        binding:"omitempty,oneof=DRAFT SUBMITTED APPROVED POSTED"`
	RouteID       string `form:"routeId"       binding:"omitempty,uuid"`
	TollStationID string `form:"tollStationId" binding:"omitempty,uuid"`
	VehicleType   string `form:"vehicleType"   binding:"omitempty,max=30"`
}

// ── 收费配置 ──

// CreateTollRouteRequest 创建路线，StationIDs 的顺序即通行顺序
type CreateTollRouteRequest struct {
	Code       string   `json:"code"       binding:"required,max=32"`
	Name       string   `json:"name"       binding:"required,max=100"`
	StationIDs []string `json:"stationIds" binding:"required,min=1,unique,dive,uuid"`
}

// UpdateTollRouteRequest 修改路线名称或启停用，nil 表示不修改
type UpdateTollRouteRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"isActive"`
}

// TollRouteListRequest 路线列表查询参数
type TollRouteListRequest struct {
	IncludeInactive bool `form:"includeInactive"`
}

// CreateTollRateRequest 创建收费标准
type CreateTollRateRequest struct {
	StationID     string          `json:"stationId"     binding:"required,uuid"`
	VehicleType   string          `json:"vehicleType"   binding:"required,max=30"`
	Amount        decimal.Decimal `json:"amount"        binding:"gte=0"`
	Currency      string          `json:"currency"      binding:"omitempty,len=3,uppercase"`
	EffectiveFrom model.Date      `json:"effectiveFrom" binding:"required"`
	EffectiveTo   *model.Date     `json:"effectiveTo"`
}

// UpdateTollRateRequest 关闭或停用收费标准；金额与生效日期不可改，调价请新建标准
type UpdateTollRateRequest struct {
	EffectiveTo *model.Date `json:"effectiveTo"`
	IsActive    *bool       `json:"isActive"`
}

// TollRateListRequest 收费标准查询参数
type TollRateListRequest struct {
	StationID   string `form:"stationId"   binding:"omitempty,uuid"`
	VehicleType string `form:"vehicleType" binding:"omitempty,max=30"`
	ActiveOn    string `form:"activeOn"    binding:"omitempty,isodate"`
}

// ── 对账 ──

// ReconcileRequest 对账请求，日期区间含首尾
type ReconcileRequest struct {
	StartDate   model.Date `json:"startDate"   binding:"required"`
	EndDate     model.Date `json:"endDate"     binding:"required"`
	RouteID     *string    `json:"routeId"     binding:"omitempty,uuid"`
	VehicleType string     `json:"vehicleType" binding:"omitempty,max=30"`
	// Currency 为空时取默认币种；两侧只统计该币种
	Currency    string     `json:"currency"    binding:"omitempty,len=3,uppercase"`
}

// ReconciliationReport 应付 vs 实付对账结果
type ReconciliationReport struct {
	StartDate         model.Date              `json:"startDate"`
	EndDate           model.Date              `json:"endDate"`
	RouteID           *string                 `json:"routeId"`
	VehicleType       string                  `json:"vehicleType"`
	Currency          string                  `json:"currency"`
	ExpectedTotal     decimal.Decimal         `json:"expectedTotal"`
	ActualTotal       decimal.Decimal         `json:"actualTotal"`
	Variance          decimal.Decimal         `json:"variance"`
	ExpectedCrossings int                     `json:"expectedCrossings"`
	UnratedCrossings  int                     `json:"unratedCrossings"`
	PaymentCount      int                     `json:"paymentCount"`
	ByStation         []StationReconciliation `json:"byStation"`
	// OtherCurrencies 区间内其他币种的实付，不计入 ActualTotal
	OtherCurrencies   []CurrencyTotal         `json:"otherCurrencies"`
}

// CurrencyTotal 单一币种的实付汇总
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// StationReconciliation 单个收费站的对账明细；StationID 为空表示未关联收费站的支付
type StationReconciliation struct {
	StationID         string          `json:"stationId"`
	StationCode       string          `json:"stationCode"`
	StationName       string          `json:"stationName"`
	ExpectedCrossings int             `json:"expectedCrossings"`
	UnratedCrossings  int             `json:"unratedCrossings"`
	Expected          decimal.Decimal `json:"expected"`
	Actual            decimal.Decimal `json:"actual"`
	Variance          decimal.Decimal `json:"variance"`
	PaymentCount      int             `json:"paymentCount"`
}
