package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/utils"
)

// Hilogate signs every request with md5(path + body + secretKey) in the
// X-Signature header and identifies the merchant via X-Merchant-ID.
type Hilogate struct {
	Cfg     HilogateConfig
	BaseURL string
}

func NewHilogate(cfg HilogateConfig) *Hilogate {
	return &Hilogate{Cfg: cfg, BaseURL: config.C.Providers.Hilogate.BaseURL}
}

func (h *Hilogate) Name() string { return constant.ProviderHilogate }

func (h *Hilogate) headers(path string, body []byte) map[string]string {
	return map[string]string{
		"X-Merchant-ID": h.Cfg.MerchantID,
		"X-Signature":   utils.HilogateSignature(path, body, h.Cfg.SecretKey),
	}
}

func (h *Hilogate) post(ctx context.Context, path string, payload interface{}, out interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal hilogate payload: %w", err)
	}
	status, respBody, err := postRaw(ctx, h.BaseURL+path, h.headers(path, body), body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return respBody, fmt.Errorf("hilogate %s: bad status code: %d, body: %s", path, status, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return respBody, fmt.Errorf("hilogate %s: decode response: %w", path, err)
		}
	}
	return respBody, nil
}

func (h *Hilogate) get(ctx context.Context, path string, out interface{}) ([]byte, error) {
	respBody, err := doJSON(ctx, http.MethodGet, h.BaseURL+path, h.headers(path, nil), nil)
	if err != nil {
		return respBody, err
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return respBody, fmt.Errorf("hilogate %s: decode response: %w", path, err)
		}
	}
	return respBody, nil
}

func (h *Hilogate) CreateTransaction(ctx context.Context, refID string, amount decimal.Decimal, buyer string) (*dto.ChargeResult, error) {
	payload := map[string]interface{}{
		"ref_id": refID,
		"amount": amount,
		"method": "qris",
	}
	var resp struct {
		Data struct {
			QRString string `json:"qr_string"`
			TrxID    string `json:"trx_id"`
		} `json:"data"`
	}
	raw, err := h.post(ctx, "/api/v1/transactions", payload, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data.QRString == "" {
		return nil, fmt.Errorf("hilogate create transaction: empty qr_string, body: %s", string(raw))
	}
	return &dto.ChargeResult{QRPayload: resp.Data.QRString, ProviderRef: resp.Data.TrxID, Raw: raw}, nil
}

func (h *Hilogate) CreateDisbursement(ctx context.Context, req DisburseRequest) (*dto.DisburseResult, error) {
	payload := map[string]interface{}{
		"ref_id":         req.RefID,
		"amount":         req.Amount,
		"currency":       "IDR",
		"account_number": req.AccountNumber,
		"account_name":   req.AccountName,
		"bank_code":      req.BankCode,
		"description":    req.Remark,
	}
	var resp struct {
		Data struct {
			Status            string `json:"status"`
			TrxID             string `json:"trx_id"`
			IsTransferProcess bool   `json:"is_transfer_process"`
		} `json:"data"`
	}
	raw, err := h.post(ctx, "/api/v1/withdrawals", payload, &resp)
	if err != nil {
		return nil, err
	}
	return &dto.DisburseResult{
		Status:            strings.ToUpper(resp.Data.Status),
		TrxID:             resp.Data.TrxID,
		IsTransferProcess: resp.Data.IsTransferProcess,
		Raw:               raw,
	}, nil
}

func (h *Hilogate) ValidateAccount(ctx context.Context, accountNumber, bankCode string) (*dto.AccountValidation, error) {
	payload := map[string]interface{}{
		"account_number": accountNumber,
		"bank_code":      bankCode,
	}
	var resp struct {
		Data struct {
			Status        string `json:"status"`
			AccountHolder string `json:"account_holder"`
		} `json:"data"`
	}
	if _, err := h.post(ctx, "/api/v1/bank-accounts/validate", payload, &resp); err != nil {
		return nil, err
	}
	return &dto.AccountValidation{
		Valid:         strings.EqualFold(resp.Data.Status, "valid"),
		AccountHolder: resp.Data.AccountHolder,
	}, nil
}

func (h *Hilogate) GetBankCodes(ctx context.Context) ([]dto.BankCode, error) {
	var resp struct {
		Data []dto.BankCode `json:"data"`
	}
	if _, err := h.get(ctx, "/api/v1/banks", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// hilogateSettledStatuses are the settlement_status values treated as
// settled by the reconciler.
var hilogateSettledStatuses = map[string]struct{}{
	"ACTIVE":    {},
	"SETTLED":   {},
	"COMPLETED": {},
}

// HilogateSettled reports whether a Hilogate settlement_status value means
// the funds already moved.
func HilogateSettled(settlementStatus string) bool {
	_, ok := hilogateSettledStatuses[strings.ToUpper(settlementStatus)]
	return ok
}

func (h *Hilogate) CheckStatus(ctx context.Context, refID string) (*dto.StatusResult, error) {
	path := "/api/v1/transactions/" + refID
	var resp struct {
		Data struct {
			SettlementStatus string          `json:"settlement_status"`
			NetAmount        decimal.Decimal `json:"net_amount"`
			TotalFee         decimal.Decimal `json:"total_fee"`
			RRN              string          `json:"rrn"`
		} `json:"data"`
	}
	if _, err := h.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	st := strings.ToUpper(resp.Data.SettlementStatus)
	_, settled := hilogateSettledStatuses[st]
	return &dto.StatusResult{
		Settled:          settled,
		SettlementStatus: st,
		SettlementAmount: resp.Data.NetAmount,
		Fee:              resp.Data.TotalFee,
		RRN:              resp.Data.RRN,
	}, nil
}

// VerifyInboundSignature checks md5(path + minimal JSON + secretKey) against
// the X-Signature header. The minimal JSON covers ref_id, amount and method
// in that exact field order.
func (h *Hilogate) VerifyInboundSignature(cb InboundCallback) error {
	minimal := fmt.Sprintf(`{"ref_id":%q,"amount":%s,"method":%q}`,
		cb.Fields["ref_id"], cb.Fields["amount"], cb.Fields["method"])
	want := utils.HilogateSignature(cb.Path, []byte(minimal), h.Cfg.SecretKey)
	if !utils.SignaturesEqual(cb.HeaderSignature, want) {
		log.Printf("[CALLBACK-HILOGATE] signature mismatch for ref %s", cb.Fields["ref_id"])
		return constant.NewError(constant.CodeSignatureError)
	}
	return nil
}
