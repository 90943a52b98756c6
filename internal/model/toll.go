package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TollPaymentStatus 过路费支付状态（只允许向前流转）
type TollPaymentStatus string

const (
	TollDraft     TollPaymentStatus = "DRAFT"
	TollSubmitted TollPaymentStatus = "SUBMITTED"
	TollApproved  TollPaymentStatus = "APPROVED"
	TollPosted    TollPaymentStatus = "POSTED"
)

// TollRoute 收费路线表，对应 toll_routes
type TollRoute struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code     string `gorm:"type:varchar(32);not null"                      json:"code"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive bool   `gorm:"not null"                                       json:"isActive"`
	BaseModel

	// 关联
	Stations []RouteStation `gorm:"foreignKey:RouteID;references:ID" json:"stations,omitempty"`
}

func (TollRoute) TableName() string { return "toll_routes" }

// RouteStation 路线-收费站配对（按 Sequence 排序）， 对应 toll_route_stations
type RouteStation struct {
	RouteID   string `gorm:"type:uuid;primaryKey" json:"routeId"`
	StationID string `gorm:"type:uuid;primaryKey" json:"stationId"`
	Sequence  int    `gorm:"not null"             json:"sequence"`

	Station *TollStation `gorm:"foreignKey:StationID;references:ID" json:"station,omitempty"`
}

func (RouteStation) TableName() string { return "toll_route_stations" }

// TollRate 收费标准，对应 toll_rates
// 生效区间为 [EffectiveFrom, EffectiveTo]，EffectiveTo 为空表示长期有效。
type TollRate struct {
	ID            string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StationID     string          `gorm:"type:uuid;not null"                             json:"stationId"`
	VehicleType   string          `gorm:"type:varchar(30);not null"                      json:"vehicleType"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null"                    json:"amount"`
	Currency      string          `gorm:"type:varchar(3);not null"                       json:"currency"`
	EffectiveFrom Date            `gorm:"type:date;not null"                             json:"effectiveFrom"`
	EffectiveTo   *Date           `gorm:"type:date"                                      json:"effectiveTo"`
	IsActive      bool            `gorm:"not null"                                       json:"isActive"`
	BaseModel
}

func (TollRate) TableName() string { return "toll_rates" }

// EffectiveOn 判断收费标准在 day 当天是否生效
func (r *TollRate) EffectiveOn(day Date) bool {
	if !r.IsActive || day.Before(r.EffectiveFrom.Time) {
		return false
	}
	return r.EffectiveTo == nil || !day.After(r.EffectiveTo.Time)
}

// TollPayment 过路费支付台账，对应 toll_payments
type TollPayment struct {
	ID            string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Amount        decimal.Decimal   `gorm:"type:numeric(14,2);not null"                    json:"amount"`
	Currency      string            `gorm:"type:varchar(3);not null"                       json:"currency"`
	VehicleType   string            `gorm:"type:varchar(30);not null"                      json:"vehicleType"`
	PaidAt        time.Time         `gorm:"not null"                                       json:"paidAt"`
	RouteID       *string           `gorm:"type:uuid"                                      json:"routeId"`
	TollStationID *string           `gorm:"type:uuid"                                      json:"tollStationId"`
	TruckID       *string           `gorm:"type:uuid"                                      json:"truckId"`
	ReceiptNumber string            `gorm:"type:varchar(64)"                               json:"receiptNumber,omitempty"`
	Status        TollPaymentStatus `gorm:"type:varchar(12);not null"                      json:"status"`
	PaidByUserID  string            `gorm:"type:uuid;not null"                             json:"paidByUserId"`
	SubmittedAt   *time.Time        `json:"submittedAt"`
	ApprovedByID  *string           `gorm:"type:uuid"                                      json:"approvedById"`
	ApprovedAt    *time.Time        `json:"approvedAt"`
	PostedAt      *time.Time        `json:"postedAt"`
	Notes         string            `gorm:"type:text;not null"                             json:"notes"`
	BaseModel
}

func (TollPayment) TableName() string { return "toll_payments" }
