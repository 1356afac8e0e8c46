package ordermodel

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RawJSON stores an upstream payload verbatim for audit.
type RawJSON json.RawMessage

func (r *RawJSON) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("RawJSON scan failed: %v", value)
	}
	*r = append((*r)[:0], bytes...)
	return nil
}

func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

// Order is one payment attempt. The order id doubles as the external
// reference id sent to the provider. pending_amount and settlement_amount
// are mutually exclusive: pending while PAID, settlement once SETTLED.
type Order struct {
	ID                  uint64           `gorm:"column:id;primaryKey" json:"id"`
	PartnerClientID     uint64           `gorm:"column:partner_client_id;not null;index:idx_partner_time" json:"partnerClientId"`
	MerchantID          uint64           `gorm:"column:merchant_id;not null" json:"merchantId"`
	SubMerchantID       uint64           `gorm:"column:sub_merchant_id;not null" json:"subMerchantId"`
	Channel             string           `gorm:"column:channel;type:varchar(20);not null" json:"channel"` // provider name
	Amount              decimal.Decimal  `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"` // gross, minor units
	Status              string           `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	SettlementStatus    *string          `gorm:"column:settlement_status;type:varchar(40)" json:"settlementStatus"`
	QRPayload           *string          `gorm:"column:qr_payload;type:text" json:"qrPayload"`
	CheckoutURL         string           `gorm:"column:checkout_url;type:varchar(255);not null" json:"checkoutUrl"`
	ProviderCheckoutURL *string          `gorm:"column:provider_checkout_url;type:varchar(512)" json:"-"` // provider-signed URL served via the QR proxy, never returned to clients
	FeeLauncx           *decimal.Decimal `gorm:"column:fee_launcx;type:decimal(18,3)" json:"feeLauncx"`
	Fee3rdParty         *decimal.Decimal `gorm:"column:fee_3rd_party;type:decimal(18,3)" json:"fee3rdParty"`
	PendingAmount       *decimal.Decimal `gorm:"column:pending_amount;type:decimal(18,2)" json:"pendingAmount"`
	SettlementAmount    *decimal.Decimal `gorm:"column:settlement_amount;type:decimal(18,2)" json:"settlementAmount"`
	RRN                 *string          `gorm:"column:rrn;type:varchar(64)" json:"rrn"`
	Buyer               string           `gorm:"column:buyer;type:varchar(100)" json:"buyer"`
	PlayerID            *string          `gorm:"column:player_id;type:varchar(64)" json:"playerId"`
	PaymentReceivedTime *time.Time       `gorm:"column:payment_received_time" json:"paymentReceivedTime"`
	SettlementTime      *time.Time       `gorm:"column:settlement_time" json:"settlementTime"`
	TrxExpirationTime   *time.Time       `gorm:"column:trx_expiration_time" json:"trxExpirationTime"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime;index:idx_partner_time" json:"createdAt"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }
