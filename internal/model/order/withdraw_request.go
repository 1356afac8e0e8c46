package ordermodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawRequest is one disbursement attempt. The partner balance is
// debited in the same transaction that creates the PENDING row and refunded
// in the same transaction that flips it to FAILED.
type WithdrawRequest struct {
	ID               uint64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RefID            string           `gorm:"column:ref_id;type:varchar(40);uniqueIndex;not null" json:"refId"` // wd-<unix-ms>
	PartnerClientID  uint64           `gorm:"column:partner_client_id;not null;index" json:"partnerClientId"`
	SubMerchantID    uint64           `gorm:"column:sub_merchant_id;not null" json:"subMerchantId"`
	SourceProvider   string           `gorm:"column:source_provider;type:varchar(20);not null" json:"sourceProvider"`
	Amount           decimal.Decimal  `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`     // gross requested
	NetAmount        decimal.Decimal  `gorm:"column:net_amount;type:decimal(18,2);not null" json:"netAmount"` // after withdraw fee
	WithdrawFeePct   decimal.Decimal  `gorm:"column:withdraw_fee_percent;type:decimal(10,4);not null" json:"withdrawFeePercent"`
	WithdrawFeeFlat  decimal.Decimal  `gorm:"column:withdraw_fee_flat;type:decimal(18,2);not null" json:"withdrawFeeFlat"`
	PGFee            *decimal.Decimal `gorm:"column:pg_fee;type:decimal(18,2)" json:"pgFee"`
	Status           string           `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	BankCode         string           `gorm:"column:bank_code;type:varchar(20);not null" json:"bankCode"`
	BankName         string           `gorm:"column:bank_name;type:varchar(60)" json:"bankName"`
	AccountNumber    string           `gorm:"column:account_number;type:varchar(40);not null" json:"accountNumber"`
	AccountName      string           `gorm:"column:account_name;type:varchar(100)" json:"accountName"`
	AccountNameAlias string           `gorm:"column:account_name_alias;type:varchar(100)" json:"accountNameAlias"`
	PaymentGatewayID *string          `gorm:"column:payment_gateway_id;type:varchar(64)" json:"paymentGatewayId"` // provider txn id
	CompletedAt      *time.Time       `gorm:"column:completed_at" json:"completedAt"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (WithdrawRequest) TableName() string { return "withdraw_request" }
