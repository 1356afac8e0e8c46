package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/utils"
)

// HilogateCallback is the inbound Hilogate webhook body. Verified against the
// X-Signature header over the exact raw bytes.
type HilogateCallback struct {
	RefID            string          `json:"ref_id"`
	Amount           decimal.Decimal `json:"amount"`
	Method           string          `json:"method"`
	Status           string          `json:"status"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	TotalFee         decimal.Decimal `json:"total_fee"`
	QRString         string          `json:"qr_string"`
	RRN              string          `json:"rrn"`
	SettlementStatus string          `json:"settlement_status"`
	UpdatedAt        TimeValue       `json:"updated_at"`
	ExpiresAt        TimeValue       `json:"expires_at"`
}

// TimeValue unwraps Hilogate's `{ "value": "..." }` timestamp envelope.
type TimeValue struct {
	Value string `json:"value"`
}

// OYCallback carries Jakarta-local "YYYY-MM-DD HH:mm:ss" date strings. OY
// does not sign inbound callbacks; the handler validates structurally.
type OYCallback struct {
	PartnerTrxID        string          `json:"partner_trx_id"`
	PaymentStatus       string          `json:"payment_status"`
	ReceiveAmount       decimal.Decimal `json:"receive_amount"`
	SettlementStatus    string          `json:"settlement_status"`
	PaymentReceivedTime string          `json:"payment_received_time"`
	SettlementTime      string          `json:"settlement_time"`
	TrxExpirationTime   string          `json:"trx_expiration_time"`
}

// GidiCallback tolerates the three reference-id spellings Gidi has shipped.
type GidiCallback struct {
	InvoiceID      string          `json:"invoiceId"`
	RefIDSnake     string          `json:"ref_id"`
	RefIDCamel     string          `json:"refId"`
	Amount         decimal.Decimal `json:"amount"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	Status         string          `json:"status"`
	SettlementStat string          `json:"settlement_status"`
	PaymentTime    string          `json:"payment_time"`
	SettlementTime string          `json:"settlement_time"`
	ExpirationTime string          `json:"expiration_time"`
	Signature      string          `json:"signature"`
}

// ReferenceID returns whichever reference field is populated.
func (g GidiCallback) ReferenceID() string {
	if g.InvoiceID != "" {
		return g.InvoiceID
	}
	if g.RefIDSnake != "" {
		return g.RefIDSnake
	}
	return g.RefIDCamel
}

// EffectiveAmount prefers amount over gross_amount.
func (g GidiCallback) EffectiveAmount() decimal.Decimal {
	if !g.Amount.IsZero() {
		return g.Amount
	}
	return g.GrossAmount
}

// WithdrawalCallback is the shared payout webhook. Hilogate sends status as
// a plain string; OY sends an object with a code. The raw Status field is
// kept as json.RawMessage and disambiguated by shape.
type WithdrawalCallback struct {
	RefID             string              `json:"ref_id"`
	PartnerTrxID      string              `json:"partner_trx_id"`
	Status            json.RawMessage     `json:"status"`
	TotalFee          decimal.Decimal     `json:"total_fee"`
	Fee               decimal.Decimal     `json:"fee"`
	TransferFee       decimal.Decimal     `json:"transfer_fee"`
	AdminFee          *WithdrawalAdminFee `json:"admin_fee"`
	TrxID             string              `json:"trx_id"`
	TrxIDCamel        string              `json:"trxId"`
	CompletedAt       string              `json:"completed_at"`
	LastUpdatedDate   string              `json:"last_updated_date"`
	MerchantSignature string              `json:"merchant_signature"`
}

type WithdrawalAdminFee struct {
	TotalFee decimal.Decimal `json:"total_fee"`
}

type oyStatusObject struct {
	Code    utils.StringOrNumber `json:"code"`
	Message string               `json:"message"`
}

// ReferenceID returns whichever reference field is populated.
func (w WithdrawalCallback) ReferenceID() string {
	if w.RefID != "" {
		return w.RefID
	}
	return w.PartnerTrxID
}

// GatewayTrxID returns whichever provider transaction id is populated.
func (w WithdrawalCallback) GatewayTrxID() string {
	if w.TrxID != "" {
		return w.TrxID
	}
	return w.TrxIDCamel
}

// StatusInfo reports (statusText, isOY). An object-shaped status means OY
// (code "000" = success); a string status means Hilogate.
func (w WithdrawalCallback) StatusInfo() (string, bool) {
	if len(w.Status) == 0 {
		return "", false
	}
	var obj oyStatusObject
	if err := json.Unmarshal(w.Status, &obj); err == nil && obj.Code != "" {
		return obj.Code.String(), true
	}
	var s string
	if err := json.Unmarshal(w.Status, &s); err == nil {
		return s, false
	}
	return "", false
}

// EffectiveFee picks the first populated fee field across provider shapes.
func (w WithdrawalCallback) EffectiveFee() decimal.Decimal {
	if !w.TotalFee.IsZero() {
		return w.TotalFee
	}
	if !w.Fee.IsZero() {
		return w.Fee
	}
	if !w.TransferFee.IsZero() {
		return w.TransferFee
	}
	if w.AdminFee != nil {
		return w.AdminFee.TotalFee
	}
	return decimal.Zero
}
