package dto

import (
	"github.com/shopspring/decimal"

	"ops-panel/internal/model"
)

// ── 基础资料公共 DTO ──

// ReferenceListRequest 基础资料列表查询参数
type ReferenceListRequest struct {
	PaginationRequest
	Search          string `form:"search"          binding:"omitempty,max=100"`
	IncludeInactive bool   `form:"includeInactive"`
}

// ReferenceFields 新建基础资料的公共字段
type ReferenceFields struct {
	Code string `json:"code" binding:"required,max=32"`
	Name string `json:"name" binding:"required,min=1,max=100"`
}

func (f ReferenceFields) base() model.ReferenceBase {
	return model.ReferenceBase{Code: f.Code, Name: f.Name, IsActive: true}
}

// ReferencePatch 修改基础资料的公共字段
type ReferencePatch struct {
	Code     *string `json:"code"     binding:"omitempty,max=32"`
	Name     *string `json:"name"     binding:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"isActive"`
}

func (p ReferencePatch) apply(r *model.ReferenceBase) {
	if p.Code != nil {
		r.Code = *p.Code
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
}

// ── 物料 / 成品 ──

type CreateMaterialTypeRequest struct {
	ReferenceFields
	Density decimal.NullDecimal `json:"density" binding:"omitempty,gt=0"`
}

func (r *CreateMaterialTypeRequest) NewModel() *model.MaterialType {
	return &model.MaterialType{ReferenceBase: r.base(), Density: r.Density}
}

type UpdateMaterialTypeRequest struct {
	ReferencePatch
	Density *decimal.Decimal `json:"density" binding:"omitempty,gt=0"`
}

func (r *UpdateMaterialTypeRequest) ApplyTo(m *model.MaterialType) {
	r.apply(&m.ReferenceBase)
	if r.Density != nil {
		m.Density = decimal.NewNullDecimal(*r.Density)
	}
}

type CreateProductTypeRequest struct {
	ReferenceFields
	SizeSpec string `json:"sizeSpec" binding:"max=50"`
}

func (r *CreateProductTypeRequest) NewModel() *model.ProductType {
	return &model.ProductType{ReferenceBase: r.base(), SizeSpec: r.SizeSpec}
}

type UpdateProductTypeRequest struct {
	ReferencePatch
	SizeSpec *string `json:"sizeSpec" binding:"omitempty,max=50"`
}

func (r *UpdateProductTypeRequest) ApplyTo(m *model.ProductType) {
	r.apply(&m.ReferenceBase)
	if r.SizeSpec != nil {
		m.SizeSpec = *r.SizeSpec
	}
}

// ── 采场 / 料场 ──

type CreatePitLocationRequest struct {
	ReferenceFields
	Description string `json:"description" binding:"max=255"`
}

func (r *CreatePitLocationRequest) NewModel() *model.PitLocation {
	return &model.PitLocation{ReferenceBase: r.base(), Description: r.Description}
}

type UpdatePitLocationRequest struct {
	ReferencePatch
	Description *string `json:"description" binding:"omitempty,max=255"`
}

func (r *UpdatePitLocationRequest) ApplyTo(m *model.PitLocation) {
	r.apply(&m.ReferenceBase)
	if r.Description != nil {
		m.Description = *r.Description
	}
}

type CreateStockpileLocationRequest struct {
	ReferenceFields
	Description string `json:"description" binding:"max=255"`
}

func (r *CreateStockpileLocationRequest) NewModel() *model.StockpileLocation {
	return &model.StockpileLocation{ReferenceBase: r.base(), Description: r.Description}
}

type UpdateStockpileLocationRequest struct {
	ReferencePatch
	Description *string `json:"description" binding:"omitempty,max=255"`
}

func (r *UpdateStockpileLocationRequest) ApplyTo(m *model.StockpileLocation) {
	r.apply(&m.ReferenceBase)
	if r.Description != nil {
		m.Description = *r.Description
	}
}

// ── 设备 ──

type CreateCrusherRequest struct {
	ReferenceFields
	RatedCapacity decimal.NullDecimal `json:"ratedCapacity" binding:"omitempty,gt=0"`
}

func (r *CreateCrusherRequest) NewModel() *model.Crusher {
	return &model.Crusher{ReferenceBase: r.base(), RatedCapacity: r.RatedCapacity}
}

type UpdateCrusherRequest struct {
	ReferencePatch
	RatedCapacity *decimal.Decimal `json:"ratedCapacity" binding:"omitempty,gt=0"`
}

func (r *UpdateCrusherRequest) ApplyTo(m *model.Crusher) {
	r.apply(&m.ReferenceBase)
	if r.RatedCapacity != nil {
		m.RatedCapacity = decimal.NewNullDecimal(*r.RatedCapacity)
	}
}

type CreateTruckRequest struct {
	ReferenceFields
	PlateNumber  string          `json:"plateNumber"  binding:"max=20"`
	VehicleType  string          `json:"vehicleType"  binding:"required,max=30"`
	LoadCapacity decimal.Decimal `json:"loadCapacity" binding:"gte=0"`
}

func (r *CreateTruckRequest) NewModel() *model.Truck {
	return &model.Truck{
		ReferenceBase: r.base(),
		PlateNumber:   r.PlateNumber,
		VehicleType:   r.VehicleType,
		LoadCapacity:  r.LoadCapacity,
	}
}

type UpdateTruckRequest struct {
	ReferencePatch
	PlateNumber  *string          `json:"plateNumber"  binding:"omitempty,max=20"`
	VehicleType  *string          `json:"vehicleType"  binding:"omitempty,min=1,max=30"`
	LoadCapacity *decimal.Decimal `json:"loadCapacity" binding:"omitempty,gte=0"`
}

func (r *UpdateTruckRequest) ApplyTo(m *model.Truck) {
	r.apply(&m.ReferenceBase)
	if r.PlateNumber != nil {
		m.PlateNumber = *r.PlateNumber
	}
	if r.VehicleType != nil {
		m.VehicleType = *r.VehicleType
	}
	if r.LoadCapacity != nil {
		m.LoadCapacity = *r.LoadCapacity
	}
}

type CreateExcavatorRequest struct {
	ReferenceFields
	BucketCapacity decimal.Decimal `json:"bucketCapacity" binding:"gte=0"`
}

func (r *CreateExcavatorRequest) NewModel() *model.Excavator {
	return &model.Excavator{ReferenceBase: r.base(), BucketCapacity: r.BucketCapacity}
}

type UpdateExcavatorRequest struct {
	ReferencePatch
	BucketCapacity *decimal.Decimal `json:"bucketCapacity" binding:"omitempty,gte=0"`
}

func (r *UpdateExcavatorRequest) ApplyTo(m *model.Excavator) {
	r.apply(&m.ReferenceBase)
	if r.BucketCapacity != nil {
		m.BucketCapacity = *r.BucketCapacity
	}
}

// ── 收费站 ──

type CreateTollStationRequest struct {
	ReferenceFields
}

func (r *CreateTollStationRequest) NewModel() *model.TollStation {
	return &model.TollStation{ReferenceBase: r.base()}
}

type UpdateTollStationRequest struct {
	ReferencePatch
}

func (r *UpdateTollStationRequest) ApplyTo(m *model.TollStation) {
	r.apply(&m.ReferenceBase)
}
