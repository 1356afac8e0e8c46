package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/utils"
)

// OY authenticates with static headers (X-Api-Key / X-Oy-Username) and does
// not sign requests. Settlement checks are two calls because the status
// endpoint alone does not carry the settlement amount and fee.
type OY struct {
	Cfg     OYConfig
	BaseURL string
}

func NewOY(cfg OYConfig) *OY {
	return &OY{Cfg: cfg, BaseURL: config.C.Providers.OY.BaseURL}
}

func (o *OY) Name() string { return constant.ProviderOY }

func (o *OY) headers() map[string]string {
	return map[string]string{
		"X-Api-Key":     o.Cfg.ApiKey,
		"X-Oy-Username": o.Cfg.Username,
	}
}

type oyStatus struct {
	Code    utils.StringOrNumber `json:"code"`
	Message string               `json:"message"`
}

func (s oyStatus) ok() bool { return s.Code.String() == "000" }

func (o *OY) CreateTransaction(ctx context.Context, refID string, amount decimal.Decimal, buyer string) (*dto.ChargeResult, error) {
	payload := map[string]interface{}{
		"partner_trx_id":              refID,
		"amount":                      amount,
		"is_open":                     false,
		"list_enabled_payment_method": "QRIS",
	}
	raw, err := doJSON(ctx, http.MethodPost, o.BaseURL+"/api/payment-checkout/create-v2", o.headers(), payload)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Status         oyStatus `json:"status"`
		PaymentLinkURL string   `json:"payment_link_url"`
		QRISURL        string   `json:"qris_url"`
		TrxID          string   `json:"trx_id"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("oy create: decode response: %w", err)
	}
	if !resp.Status.ok() {
		return nil, fmt.Errorf("oy create: upstream code %s: %s", resp.Status.Code, resp.Status.Message)
	}
	checkout := resp.QRISURL
	if checkout == "" {
		checkout = resp.PaymentLinkURL
	}
	if checkout == "" {
		return nil, fmt.Errorf("oy create: empty payment url, body: %s", string(raw))
	}
	// The signed image URL is not returned to clients directly; the
	// orchestrator wraps it in a same-origin proxy URL.
	return &dto.ChargeResult{CheckoutURL: checkout, ProviderRef: resp.TrxID, Raw: raw}, nil
}

func (o *OY) CreateDisbursement(ctx context.Context, req DisburseRequest) (*dto.DisburseResult, error) {
	payload := map[string]interface{}{
		"partner_trx_id":    req.RefID,
		"amount":            req.Amount,
		"recipient_bank":    req.BankCode,
		"recipient_account": req.AccountNumber,
		"note":              req.Remark,
	}
	raw, err := doJSON(ctx, http.MethodPost, o.BaseURL+"/api/remit", o.headers(), payload)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Status oyStatus `json:"status"`
		TrxID  string   `json:"trx_id"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("oy disburse: decode response: %w", err)
	}
	status := "PENDING"
	if !resp.Status.ok() {
		status = "FAILED"
	}
	return &dto.DisburseResult{Status: status, TrxID: resp.TrxID, IsTransferProcess: resp.Status.ok(), Raw: raw}, nil
}

func (o *OY) ValidateAccount(ctx context.Context, accountNumber, bankCode string) (*dto.AccountValidation, error) {
	payload := map[string]interface{}{
		"bank_code":      bankCode,
		"account_number": accountNumber,
	}
	raw, err := doJSON(ctx, http.MethodPost, o.BaseURL+"/api/account-inquiry", o.headers(), payload)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Status      oyStatus `json:"status"`
		AccountName string   `json:"account_name"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("oy inquiry: decode response: %w", err)
	}
	return &dto.AccountValidation{Valid: resp.Status.ok(), AccountHolder: resp.AccountName}, nil
}

func (o *OY) GetBankCodes(ctx context.Context) ([]dto.BankCode, error) {
	raw, err := doJSON(ctx, http.MethodGet, o.BaseURL+"/api/banks", o.headers(), nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Data []dto.BankCode `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("oy banks: decode response: %w", err)
	}
	return resp.Data, nil
}

// CheckStatus runs the two-step check: check-status for the lifecycle state,
// then the transaction detail for the real settlement amount and fee.
// Settled means status code 000 with settlement_status out of WAITING.
func (o *OY) CheckStatus(ctx context.Context, refID string) (*dto.StatusResult, error) {
	payload := map[string]interface{}{
		"partner_trx_id": refID,
		"send_callback":  false,
	}
	raw, err := doJSON(ctx, http.MethodPost, o.BaseURL+"/api/payment-checkout/check-status", o.headers(), payload)
	if err != nil {
		return nil, err
	}
	var st struct {
		Status           oyStatus `json:"status"`
		PaymentStatus    string   `json:"payment_status"`
		SettlementStatus string   `json:"settlement_status"`
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("oy check-status: decode response: %w", err)
	}

	settlementStatus := strings.ToUpper(st.SettlementStatus)
	result := &dto.StatusResult{SettlementStatus: settlementStatus}
	if !st.Status.ok() || settlementStatus == "WAITING" || settlementStatus == "" {
		return result, nil
	}

	detailURL := o.BaseURL + "/api/v1/transaction?partner_trx_id=" + url.QueryEscape(refID) + "&product_type=PAYMENT_ROUTING"
	rawDetail, err := doJSON(ctx, http.MethodGet, detailURL, o.headers(), nil)
	if err != nil {
		return nil, err
	}
	var detail struct {
		Status oyStatus `json:"status"`
		Data   struct {
			SettlementAmount decimal.Decimal `json:"settlement_amount"`
			AdminFee         struct {
				TotalFee decimal.Decimal `json:"total_fee"`
			} `json:"admin_fee"`
			TrxID string `json:"trx_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rawDetail, &detail); err != nil {
		return nil, fmt.Errorf("oy transaction detail: decode response: %w", err)
	}
	if !detail.Status.ok() {
		return result, nil
	}
	result.Settled = true
	result.SettlementAmount = detail.Data.SettlementAmount
	result.Fee = detail.Data.AdminFee.TotalFee
	result.RRN = detail.Data.TrxID
	return result, nil
}

// VerifyInboundSignature is a no-op: OY callbacks carry no signature field.
// The ingestor validates the payload structurally instead.
func (o *OY) VerifyInboundSignature(cb InboundCallback) error {
	return nil
}
