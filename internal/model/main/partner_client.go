package mainmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartnerClient is a tenant of the aggregator. Balance is the running
// settled-minus-withdrawn ledger; it is only ever mutated inside the same DB
// transaction as the status change that justifies the mutation.
type PartnerClient struct {
	ID              uint64           `gorm:"column:id;primaryKey" json:"id"`
	Name            string           `gorm:"column:name;type:varchar(100);not null" json:"name"`
	ApiKey          string           `gorm:"column:api_key;type:varchar(64);uniqueIndex;not null" json:"apiKey"`
	ApiSecret       string           `gorm:"column:api_secret;type:varchar(64);not null" json:"-"`
	Status          int8             `gorm:"column:status;type:tinyint(1);not null;default:1" json:"status"` // 1:active 0:disabled
	Balance         decimal.Decimal  `gorm:"column:balance;type:decimal(18,2);not null;default:0" json:"balance"`
	FeePercent      decimal.Decimal  `gorm:"column:fee_percent;type:decimal(10,4);not null;default:0" json:"feePercent"`
	FeeFlat         decimal.Decimal  `gorm:"column:fee_flat;type:decimal(18,2);not null;default:0" json:"feeFlat"`
	WeekendFeePct   decimal.Decimal  `gorm:"column:weekend_fee_percent;type:decimal(10,4);not null;default:0" json:"weekendFeePercent"`
	WeekendFeeFlat  decimal.Decimal  `gorm:"column:weekend_fee_flat;type:decimal(18,2);not null;default:0" json:"weekendFeeFlat"`
	WithdrawFeePct  decimal.Decimal  `gorm:"column:withdraw_fee_percent;type:decimal(10,4);not null;default:0" json:"withdrawFeePercent"`
	WithdrawFeeFlat decimal.Decimal  `gorm:"column:withdraw_fee_flat;type:decimal(18,2);not null;default:0" json:"withdrawFeeFlat"`
	DefaultProvider string           `gorm:"column:default_provider;type:varchar(20)" json:"defaultProvider"`
	ForceSchedule   *string          `gorm:"column:force_schedule;type:varchar(10)" json:"forceSchedule"` // weekday|weekend, overrides auto-detection
	CallbackURL     string           `gorm:"column:callback_url;type:varchar(255)" json:"callbackUrl"`
	CallbackSecret  string           `gorm:"column:callback_secret;type:varchar(64)" json:"-"`
	ParentClientID  *uint64          `gorm:"column:parent_client_id" json:"parentClientId"`
	CreateTime      *time.Time       `gorm:"column:create_time;autoCreateTime" json:"createTime"`
	UpdateTime      *time.Time       `gorm:"column:update_time;autoUpdateTime" json:"updateTime"`
}

func (PartnerClient) TableName() string { return "partner_client" }
