package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/utils"
)

// Gidi generates a QRIS invoice. Every call carries two fresh random 32-hex
// ids (requestId, transactionId) and the double-nested SHA-256 signature:
//
//	inner = sha256(subMerchantId + requestId + transactionId + amount + credentialKey)
//	sig   = sha256(merchantId + inner)
//
// A DOUBLE_REQUEST_ID response means an id collided upstream; both ids are
// regenerated and the call retried a bounded number of times. A pending
// generate response is polled with the same id pair.
type Gidi struct {
	Cfg         GidiConfig
	BaseURL     string
	MaxFallback int           // regenerate-and-retry budget on DOUBLE_REQUEST_ID
	BaseDelay   time.Duration // poll backoff base; attempt n waits BaseDelay*n
	PollBudget  time.Duration // hard timeout for polling one id pair
}

func NewGidi(cfg GidiConfig) *Gidi {
	return &Gidi{
		Cfg:         cfg,
		BaseURL:     config.C.Providers.Gidi.BaseURL,
		MaxFallback: 2,
		BaseDelay:   500 * time.Millisecond,
		PollBudget:  15 * time.Second,
	}
}

func (g *Gidi) Name() string { return constant.ProviderGidi }

// newHexID returns a random 32-char lowercase hex id.
func newHexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

type gidiGenerateResp struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	Status        string `json:"status"`
	QRString      string `json:"qr_string"`
	InvoiceID     string `json:"invoiceId"`
	TransactionID string `json:"transactionId"`
}

func (g *Gidi) signCreate(requestID, transactionID, amount string) string {
	return utils.GidiSignature(g.Cfg.MerchantID, g.Cfg.SubMerchantID, g.Cfg.CredentialKey,
		requestID, transactionID, amount)
}

func (g *Gidi) generateOnce(ctx context.Context, refID, requestID, transactionID string, amount decimal.Decimal) (*gidiGenerateResp, []byte, error) {
	amountStr := amount.String()
	payload := map[string]interface{}{
		"merchantId":    g.Cfg.MerchantID,
		"subMerchantId": g.Cfg.SubMerchantID,
		"requestId":     requestID,
		"transactionId": transactionID,
		"invoiceId":     refID,
		"amount":        amountStr,
		"signature":     g.signCreate(requestID, transactionID, amountStr),
	}
	raw, err := doJSON(ctx, http.MethodPost, g.BaseURL+"/api/qris/generate", nil, payload)
	if err != nil {
		return nil, raw, err
	}
	var resp gidiGenerateResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, raw, fmt.Errorf("gidi generate: decode response: %w", err)
	}
	return &resp, raw, nil
}

func (g *Gidi) pollOnce(ctx context.Context, requestID, transactionID string) (*gidiGenerateResp, []byte, error) {
	payload := map[string]interface{}{
		"merchantId":    g.Cfg.MerchantID,
		"subMerchantId": g.Cfg.SubMerchantID,
		"requestId":     requestID,
		"transactionId": transactionID,
	}
	raw, err := doJSON(ctx, http.MethodPost, g.BaseURL+"/api/qris/inquiry", nil, payload)
	if err != nil {
		return nil, raw, err
	}
	var resp gidiGenerateResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, raw, fmt.Errorf("gidi inquiry: decode response: %w", err)
	}
	return &resp, raw, nil
}

func isGidiDoubleRequest(resp *gidiGenerateResp) bool {
	return strings.EqualFold(resp.Code, "DOUBLE_REQUEST_ID") ||
		strings.EqualFold(resp.Message, "DOUBLE_REQUEST_ID")
}

func isGidiPending(resp *gidiGenerateResp) bool {
	return strings.EqualFold(resp.Status, "pending")
}

// CreateTransaction drives the full generate flow: collision recovery,
// pending polling with the same id pair, and a single fresh-pair fallback
// after the poll budget is exhausted.
func (g *Gidi) CreateTransaction(ctx context.Context, refID string, amount decimal.Decimal, buyer string) (*dto.ChargeResult, error) {
	result, err := g.generateWithRecovery(ctx, refID, amount, true)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Gidi) generateWithRecovery(ctx context.Context, refID string, amount decimal.Decimal, allowFreshPair bool) (*dto.ChargeResult, error) {
	requestID, transactionID := newHexID(), newHexID()

	var resp *gidiGenerateResp
	var raw []byte
	var err error
	for attempt := 0; ; attempt++ {
		resp, raw, err = g.generateOnce(ctx, refID, requestID, transactionID, amount)
		if err != nil {
			return nil, err
		}
		if !isGidiDoubleRequest(resp) {
			break
		}
		if attempt >= g.MaxFallback {
			return nil, fmt.Errorf("gidi generate: DOUBLE_REQUEST_ID persisted after %d retries", attempt)
		}
		// Collided upstream; both ids must be regenerated together.
		requestID, transactionID = newHexID(), newHexID()
		log.Printf("[GIDI] DOUBLE_REQUEST_ID for ref %s, regenerated id pair (attempt %d)", refID, attempt+1)
	}

	if isGidiPending(resp) {
		resp, raw, err = g.pollPending(ctx, requestID, transactionID)
		if err != nil {
			if !allowFreshPair {
				return nil, err
			}
			// Last resort: one fresh id pair before surfacing the timeout.
			log.Printf("[GIDI] poll budget exhausted for ref %s, trying a fresh id pair", refID)
			return g.generateWithRecovery(ctx, refID, amount, false)
		}
	}

	if resp.QRString == "" {
		return nil, fmt.Errorf("gidi generate: no qr_string, code=%s message=%s", resp.Code, resp.Message)
	}
	return &dto.ChargeResult{QRPayload: resp.QRString, ProviderRef: resp.TransactionID, Raw: raw}, nil
}

func (g *Gidi) pollPending(ctx context.Context, requestID, transactionID string) (*gidiGenerateResp, []byte, error) {
	deadline := time.Now().Add(g.PollBudget)
	for attempt := 1; time.Now().Before(deadline); attempt++ {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(g.BaseDelay * time.Duration(attempt)):
		}
		resp, raw, err := g.pollOnce(ctx, requestID, transactionID)
		if err != nil {
			continue
		}
		if !isGidiPending(resp) {
			return resp, raw, nil
		}
	}
	return nil, nil, fmt.Errorf("gidi generate: still pending after %s", g.PollBudget)
}

// Gidi has no disbursement product; withdrawals route to other providers.
func (g *Gidi) CreateDisbursement(ctx context.Context, req DisburseRequest) (*dto.DisburseResult, error) {
	return nil, fmt.Errorf("gidi does not support disbursements")
}

func (g *Gidi) ValidateAccount(ctx context.Context, accountNumber, bankCode string) (*dto.AccountValidation, error) {
	return nil, fmt.Errorf("gidi does not support account validation")
}

func (g *Gidi) GetBankCodes(ctx context.Context) ([]dto.BankCode, error) {
	return nil, fmt.Errorf("gidi does not support bank listing")
}

func (g *Gidi) CheckStatus(ctx context.Context, refID string) (*dto.StatusResult, error) {
	payload := map[string]interface{}{
		"merchantId":    g.Cfg.MerchantID,
		"subMerchantId": g.Cfg.SubMerchantID,
		"invoiceId":     refID,
	}
	raw, err := doJSON(ctx, http.MethodPost, g.BaseURL+"/api/qris/status", nil, payload)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Status           string          `json:"status"`
		SettlementStatus string          `json:"settlement_status"`
		Amount           decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("gidi status: decode response: %w", err)
	}
	st := strings.ToUpper(resp.SettlementStatus)
	return &dto.StatusResult{
		Settled:          st == "SETTLED",
		SettlementStatus: st,
		SettlementAmount: resp.Amount,
	}, nil
}

// VerifyInboundSignature checks the body signature field against the nested
// scheme over subMerchantId + invoiceId + amount + status, keyed by this
// sub-merchant's credentialKey (never a global config).
func (g *Gidi) VerifyInboundSignature(cb InboundCallback) error {
	want := utils.GidiSignature(g.Cfg.MerchantID, g.Cfg.SubMerchantID, g.Cfg.CredentialKey,
		cb.Fields["invoiceId"], cb.Fields["amount"], cb.Fields["status"])
	if !utils.SignaturesEqual(cb.BodySignature, want) {
		log.Printf("[CALLBACK-GIDI] signature mismatch for invoice %s", cb.Fields["invoiceId"])
		return constant.NewError(constant.CodeSignatureError)
	}
	return nil
}
