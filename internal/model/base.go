package model

import (
	"time"
)

// BaseModel 通用审计字段（配置类/台账类模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"createdBy,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updatedBy,omitempty"`
}

// ReferenceBase 基础资料公共字段（设备、物料、地点、收费站）
// 基础资料被产量记录引用，不做物理删除，仅通过 IsActive 停用。
type ReferenceBase struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code     string `gorm:"type:varchar(32);not null"                      json:"code"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive bool   `gorm:"not null"                                       json:"isActive"`
	BaseModel
}

// Ref 返回公共字段，供泛型仓储/服务访问
func (r *ReferenceBase) Ref() *ReferenceBase { return r }
