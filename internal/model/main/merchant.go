package mainmodel

import "time"

// Merchant is the internal per-provider merchant row. One row exists per
// provider name; orders reference it through the provider branch.
type Merchant struct {
	ID         uint64     `gorm:"column:id;primaryKey" json:"id"`
	Name       string     `gorm:"column:name;type:varchar(50);uniqueIndex;not null" json:"name"` // provider name
	Status     int8       `gorm:"column:status;type:tinyint(1);not null;default:1" json:"status"`
	CreateTime *time.Time `gorm:"column:create_time;autoCreateTime" json:"createTime"`
}

func (Merchant) TableName() string { return "merchant" }
