package dto

import "github.com/shopspring/decimal"

// CreateTransactionReq is the partner-facing create-payment request.
// merchantName carries the requested provider channel; the orchestrator may
// override it (force config > partner default > merchantName).
type CreateTransactionReq struct {
	MerchantName   string          `json:"merchantName" binding:"required"`
	Price          decimal.Decimal `json:"price" binding:"required"`
	Buyer          string          `json:"buyer" binding:"required"`
	PlayerID       string          `json:"playerId"`
	Flow           string          `json:"flow" binding:"omitempty,oneof=embed redirect"`
	SubMerchantID  uint64          `json:"subMerchantId"`
	SourceProvider string          `json:"sourceProvider"`
}

type CreateTransactionResp struct {
	OrderID     string          `json:"orderId"`
	CheckoutURL string          `json:"checkoutUrl"`
	QRPayload   string          `json:"qrPayload,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// PartnerCallbackPayload is what we deliver to the partner's callbackUrl.
// Signed with HMAC-SHA256 over the serialized body.
type PartnerCallbackPayload struct {
	OrderID          string          `json:"orderId"`
	Status           string          `json:"status"`
	SettlementStatus string          `json:"settlementStatus,omitempty"`
	GrossAmount      decimal.Decimal `json:"grossAmount"`
	FeeLauncx        decimal.Decimal `json:"feeLauncx"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	QRPayload        string          `json:"qrPayload,omitempty"`
	Timestamp        int64           `json:"timestamp"`
	Nonce            string          `json:"nonce"`
}
