package mainmodel

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Credentials is the provider-specific secret blob stored as JSON. The
// provider package reshapes it into a typed config and fails fast on missing
// required fields.
type Credentials map[string]string

func (c *Credentials) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("Credentials scan failed: %v", value)
	}
	return json.Unmarshal(bytes, c)
}

func (c Credentials) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Schedule marks on which day classes this credential set is active.
type Schedule struct {
	Weekday bool `json:"weekday"`
	Weekend bool `json:"weekend"`
}

func (s *Schedule) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("Schedule scan failed: %v", value)
	}
	return json.Unmarshal(bytes, s)
}

func (s Schedule) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// SubMerchant is one provider credential set scoped to an internal merchant.
// For a given (merchant, provider) at most one row may be active per schedule
// flag unless the row covers both weekday and weekend.
type SubMerchant struct {
	ID          uint64          `gorm:"column:id;primaryKey" json:"id"`
	MerchantID  uint64          `gorm:"column:merchant_id;not null;index:idx_merchant_provider" json:"merchantId"`
	Provider    string          `gorm:"column:provider;type:varchar(20);not null;index:idx_merchant_provider" json:"provider"` // hilogate|oy|gidi|2c2p|gv
	Name        string          `gorm:"column:name;type:varchar(100)" json:"name"`
	Credentials Credentials     `gorm:"column:credentials;type:json;not null" json:"-"`
	Schedule    Schedule        `gorm:"column:schedule;type:json;not null" json:"schedule"`
	Fee         decimal.Decimal `gorm:"column:fee;type:decimal(10,4);not null;default:0" json:"fee"`
	Status      int8            `gorm:"column:status;type:tinyint(1);not null;default:1" json:"status"`
	CreateTime  *time.Time      `gorm:"column:create_time;autoCreateTime" json:"createTime"`
	UpdateTime  *time.Time      `gorm:"column:update_time;autoUpdateTime" json:"updateTime"`
}

func (SubMerchant) TableName() string { return "sub_merchant" }
