package dto

import "github.com/shopspring/decimal"

// ChargeResult is the uniform outcome of a provider create-transaction call.
// Exactly one of QRPayload / CheckoutURL may be empty depending on provider.
type ChargeResult struct {
	QRPayload   string
	CheckoutURL string
	ProviderRef string
	Raw         []byte
}

// DisburseResult is the uniform outcome of a provider disbursement call.
type DisburseResult struct {
	Status            string
	TrxID             string
	IsTransferProcess bool
	Raw               []byte
}

// AccountValidation is the outcome of a bank-account inquiry.
type AccountValidation struct {
	Valid         bool
	AccountHolder string
}

type BankCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// StatusResult is a normalized provider status-check outcome used by the
// settlement reconciler.
type StatusResult struct {
	Settled          bool
	SettlementStatus string
	SettlementAmount decimal.Decimal
	Fee              decimal.Decimal
	RRN              string
}

// OrderEvent is published to the order_events exchange on lifecycle changes.
type OrderEvent struct {
	OrderID         string          `json:"order_id"`
	PartnerClientID uint64          `json:"partner_client_id"`
	Channel         string          `json:"channel"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	Ts              int64           `json:"ts"`
}

// ResendCheckEvent asks the out-of-process resend worker to re-query a
// provider if the order's webhook has not arrived by Due (unix ms).
type ResendCheckEvent struct {
	OrderID string `json:"order_id"`
	Due     int64  `json:"due"`
}

// SettlementSummary is published after a full reconciliation run.
type SettlementSummary struct {
	Batches      int             `json:"batches"`
	Scanned      int             `json:"scanned"`
	Settled      int             `json:"settled"`
	Skipped      int             `json:"skipped"`
	NetMoved     decimal.Decimal `json:"net_moved"`
	StartedAt    int64           `json:"started_at"`
	FinishedAt   int64           `json:"finished_at"`
	TriggeredBy  string          `json:"triggered_by"` // hourly|daily
}
