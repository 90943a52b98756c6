package model

import "github.com/shopspring/decimal"

// MaterialType 物料类型表，对应 material_types
type MaterialType struct {
	ReferenceBase
	Density decimal.NullDecimal `gorm:"type:numeric(10,4)" json:"density"` // t/m³
}

func (MaterialType) TableName() string { return "material_types" }

// ProductType 成品类型表，对应 product_types
type ProductType struct {
	ReferenceBase
	SizeSpec string `gorm:"type:varchar(50)" json:"sizeSpec,omitempty"` // 如 "20-40mm"
}

func (ProductType) TableName() string { return "product_types" }

// PitLocation 采场表，对应 pit_locations
type PitLocation struct {
	ReferenceBase
	Description string `gorm:"type:varchar(255)" json:"description,omitempty"`
}

func (PitLocation) TableName() string { return "pit_locations" }

// StockpileLocation 料场表，对应 stockpile_locations
type StockpileLocation struct {
	ReferenceBase
	Description string `gorm:"type:varchar(255)" json:"description,omitempty"`
}

func (StockpileLocation) TableName() string { return "stockpile_locations" }

// Crusher 破碎机表，对应 crushers
type Crusher struct {
	ReferenceBase
	RatedCapacity decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"ratedCapacity"` // t/h
}

func (Crusher) TableName() string { return "crushers" }

// Truck 运输车辆表，对应 trucks
type Truck struct {
	ReferenceBase
	PlateNumber  string          `gorm:"type:varchar(20)"             json:"plateNumber,omitempty"`
	VehicleType  string          `gorm:"type:varchar(30);not null"    json:"vehicleType"`
	LoadCapacity decimal.Decimal `gorm:"type:numeric(10,3);not null"  json:"loadCapacity"` // t
}

func (Truck) TableName() string { return "trucks" }

// Excavator 挖掘机表，对应 excavators
type Excavator struct {
	ReferenceBase
	BucketCapacity decimal.Decimal `gorm:"type:numeric(8,3);not null" json:"bucketCapacity"` // m³
}

func (Excavator) TableName() string { return "excavators" }

// TollStation 收费站表，对应 toll_stations
type TollStation struct {
	ReferenceBase
}

func (TollStation) TableName() string { return "toll_stations" }
