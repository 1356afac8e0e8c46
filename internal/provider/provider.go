// Package provider holds one adapter per external payment gateway behind a
// single Client contract. The adapter is selected once at the orchestration
// boundary; call sites never branch on provider names again.
package provider

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	mainmodel "launcx-order-api/internal/model/main"
	"launcx-order-api/internal/utils"
)

// doJSON runs one gateway HTTP call under the configured per-call deadline so
// a hung provider connection cannot stall the caller.
func doJSON(ctx context.Context, method, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderTimeout())
	defer cancel()
	return utils.HttpDoJSON(callCtx, method, url, headers, payload)
}

// postRaw is doJSON for pre-serialized bodies, where the bytes are signed and
// must not be re-marshaled.
func postRaw(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderTimeout())
	defer cancel()
	return utils.HttpPostRaw(callCtx, url, headers, body)
}

// DisburseRequest is the uniform disbursement input.
type DisburseRequest struct {
	RefID         string
	Amount        decimal.Decimal
	BankCode      string
	AccountNumber string
	AccountName   string
	Remark        string
}

// InboundCallback is what an adapter needs to verify a webhook. RawBody must
// be the exact bytes from the wire; signature schemes are byte-sensitive.
type InboundCallback struct {
	Path            string
	RawBody         []byte
	HeaderSignature string
	// Provider-specific signed fields (Gidi signs selected fields rather
	// than the body).
	Fields map[string]string
	// Signature carried inside the body, where the provider does that.
	BodySignature string
}

// Client is the uniform gateway contract.
type Client interface {
	Name() string
	CreateTransaction(ctx context.Context, refID string, amount decimal.Decimal, buyer string) (*dto.ChargeResult, error)
	CreateDisbursement(ctx context.Context, req DisburseRequest) (*dto.DisburseResult, error)
	ValidateAccount(ctx context.Context, accountNumber, bankCode string) (*dto.AccountValidation, error)
	GetBankCodes(ctx context.Context) ([]dto.BankCode, error)
	CheckStatus(ctx context.Context, refID string) (*dto.StatusResult, error)
	VerifyInboundSignature(cb InboundCallback) error
}

// New builds the adapter for a provider name from a sub-merchant credential
// blob. Unknown providers and credential kinds without an adapter (gv) fail
// here, before any money moves.
func New(name string, creds mainmodel.Credentials) (Client, error) {
	switch name {
	case constant.ProviderHilogate:
		cfg, err := ReshapeHilogate(creds)
		if err != nil {
			return nil, err
		}
		return NewHilogate(cfg), nil
	case constant.ProviderOY:
		cfg, err := ReshapeOY(creds)
		if err != nil {
			return nil, err
		}
		return NewOY(cfg), nil
	case constant.ProviderGidi:
		cfg, err := ReshapeGidi(creds)
		if err != nil {
			return nil, err
		}
		return NewGidi(cfg), nil
	case constant.Provider2C2P:
		cfg, err := Reshape2C2P(creds)
		if err != nil {
			return nil, err
		}
		return New2C2P(cfg), nil
	case constant.ProviderGV:
		return nil, fmt.Errorf("provider %s has no transaction adapter", name)
	default:
		return nil, constant.NewErrorMsg(constant.CodeUnknownProvider, fmt.Sprintf("unknown provider: %s", name))
	}
}

// Known reports whether name is a recognized provider identifier.
func Known(name string) bool {
	switch name {
	case constant.ProviderHilogate, constant.ProviderOY, constant.ProviderGidi,
		constant.Provider2C2P, constant.ProviderGV:
		return true
	}
	return false
}
