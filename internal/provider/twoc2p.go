package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
)

// TwoC2P wraps every request payload in an HS256 JWT and every meaningful
// response arrives as a JWT that must be verified against the same shared
// secret before use. The checkout flow is multi-step: payment token, payment
// options, QR channel detail, then payment execution.
type TwoC2P struct {
	Cfg     TwoC2PConfig
	BaseURL string
}

func New2C2P(cfg TwoC2PConfig) *TwoC2P {
	return &TwoC2P{Cfg: cfg, BaseURL: config.C.Providers.TwoC2P.BaseURL}
}

func (t *TwoC2P) Name() string { return constant.Provider2C2P }

// encode2c2p signs claims into the request JWT.
func (t *TwoC2P) encode2c2p(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.Cfg.SecretKey))
}

// decode2c2p verifies a response JWT and returns its claims. An invalid or
// foreign-signed token is an error; the claims are never used unverified.
func (t *TwoC2P) decode2c2p(tokenStr string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (interface{}, error) {
		return []byte(t.Cfg.SecretKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("2c2p token verify failed: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("2c2p token: unexpected claims type")
	}
	return claims, nil
}

func (t *TwoC2P) postJWT(ctx context.Context, path string, claims jwt.MapClaims) (jwt.MapClaims, []byte, error) {
	payload, err := t.encode2c2p(claims)
	if err != nil {
		return nil, nil, fmt.Errorf("2c2p sign request: %w", err)
	}
	raw, err := doJSON(ctx, http.MethodPost, t.BaseURL+path, nil, map[string]string{"payload": payload})
	if err != nil {
		return nil, raw, err
	}
	var resp struct {
		Payload  string `json:"payload"`
		RespCode string `json:"respCode"`
		RespDesc string `json:"respDesc"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, raw, fmt.Errorf("2c2p %s: decode response: %w", path, err)
	}
	if resp.Payload == "" {
		return nil, raw, fmt.Errorf("2c2p %s: respCode=%s desc=%s", path, resp.RespCode, resp.RespDesc)
	}
	out, err := t.decode2c2p(resp.Payload)
	if err != nil {
		return nil, raw, err
	}
	return out, raw, nil
}

func claimString(c jwt.MapClaims, key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func (t *TwoC2P) CreateTransaction(ctx context.Context, refID string, amount decimal.Decimal, buyer string) (*dto.ChargeResult, error) {
	// Step 1: payment token. The amount goes out as an exact JSON number;
	// converting through float64 can drift on fractional values.
	tokenClaims, _, err := t.postJWT(ctx, "/payment/4.3/paymenttoken", jwt.MapClaims{
		"merchantID":   t.Cfg.MerchantID,
		"invoiceNo":    refID,
		"description":  "payment for " + buyer,
		"amount":       json.Number(amount.String()),
		"currencyCode": "IDR",
	})
	if err != nil {
		return nil, err
	}
	paymentToken := claimString(tokenClaims, "paymentToken")
	webPaymentURL := claimString(tokenClaims, "webPaymentUrl")
	if paymentToken == "" {
		return nil, fmt.Errorf("2c2p: empty paymentToken, respCode=%s", claimString(tokenClaims, "respCode"))
	}

	// Step 2: confirm a QR channel exists for this token.
	optionClaims, _, err := t.postJWT(ctx, "/payment/4.3/paymentoption", jwt.MapClaims{
		"paymentToken": paymentToken,
	})
	if err != nil {
		return nil, err
	}
	channelCode := claimString(optionClaims, "channelCode")
	if channelCode == "" {
		channelCode = "QR"
	}

	// Step 3: QR channel detail.
	if _, _, err := t.postJWT(ctx, "/payment/4.3/paymentoptiondetails", jwt.MapClaims{
		"paymentToken": paymentToken,
		"categoryCode": "QR",
		"groupCode":    channelCode,
	}); err != nil {
		return nil, err
	}

	// Step 4: execute the payment to obtain the QR data.
	payClaims, raw, err := t.postJWT(ctx, "/payment/4.3/payment", jwt.MapClaims{
		"paymentToken": paymentToken,
		"payment": map[string]interface{}{
			"code": map[string]string{"channelCode": channelCode},
			"data": map[string]string{"name": buyer},
		},
	})
	if err != nil {
		return nil, err
	}
	qrData := claimString(payClaims, "data")
	if qrData == "" && webPaymentURL == "" {
		return nil, fmt.Errorf("2c2p payment: no qr data and no web payment url")
	}
	return &dto.ChargeResult{QRPayload: qrData, CheckoutURL: webPaymentURL, ProviderRef: paymentToken, Raw: raw}, nil
}

func (t *TwoC2P) CreateDisbursement(ctx context.Context, req DisburseRequest) (*dto.DisburseResult, error) {
	return nil, fmt.Errorf("2c2p does not support disbursements")
}

func (t *TwoC2P) ValidateAccount(ctx context.Context, accountNumber, bankCode string) (*dto.AccountValidation, error) {
	return nil, fmt.Errorf("2c2p does not support account validation")
}

func (t *TwoC2P) GetBankCodes(ctx context.Context) ([]dto.BankCode, error) {
	return nil, fmt.Errorf("2c2p does not support bank listing")
}

func (t *TwoC2P) CheckStatus(ctx context.Context, refID string) (*dto.StatusResult, error) {
	claims, _, err := t.postJWT(ctx, "/payment/4.3/paymentinquiry", jwt.MapClaims{
		"merchantID": t.Cfg.MerchantID,
		"invoiceNo":  refID,
	})
	if err != nil {
		return nil, err
	}
	respCode := claimString(claims, "respCode")
	return &dto.StatusResult{
		Settled:          respCode == "0000",
		SettlementStatus: respCode,
	}, nil
}

// VerifyInboundSignature verifies a callback JWT payload.
func (t *TwoC2P) VerifyInboundSignature(cb InboundCallback) error {
	if _, err := t.decode2c2p(cb.BodySignature); err != nil {
		return constant.NewError(constant.CodeSignatureError)
	}
	return nil
}
