package ordermodel

import "time"

// TransactionRequest is the audit row persisted before calling a provider.
type TransactionRequest struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID         uint64    `gorm:"column:order_id;not null;index" json:"orderId"`
	PartnerClientID uint64    `gorm:"column:partner_client_id;not null" json:"partnerClientId"`
	Provider        string    `gorm:"column:provider;type:varchar(20);not null" json:"provider"`
	Payload         RawJSON   `gorm:"column:payload;type:json" json:"payload"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (TransactionRequest) TableName() string { return "transaction_request" }

// TransactionCallback is the raw inbound webhook audit log, one row per
// logical webhook keyed by reference_id. Re-deliveries update the row
// instead of appending duplicates, which is what makes webhook replay
// idempotent at the audit level.
type TransactionCallback struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReferenceID string    `gorm:"column:reference_id;type:varchar(64);uniqueIndex;not null" json:"referenceId"`
	Provider    string    `gorm:"column:provider;type:varchar(20);not null" json:"provider"`
	Payload     RawJSON   `gorm:"column:payload;type:json;not null" json:"payload"`
	ReceivedAt  time.Time `gorm:"column:received_at;not null" json:"receivedAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (TransactionCallback) TableName() string { return "transaction_callback" }
