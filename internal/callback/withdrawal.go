package callback

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/provider"
	"launcx-order-api/internal/utils"
)

// withdrawalOutcome interprets the two status shapes: OY sends an object
// whose code "000" means success, Hilogate sends a plain status string.
// Only an explicit failure triggers the refund; in-flight and unknown
// statuses keep the row PENDING until the terminal callback arrives.
func withdrawalOutcome(statusText string, isOY bool) string {
	if isOY {
		switch statusText {
		case "000":
			return constant.WithdrawCompleted
		case "300":
			return constant.WithdrawFailed
		}
		// 101/102 and anything unrecognized: still in flight.
		return constant.WithdrawPending
	}
	switch strings.ToUpper(statusText) {
	case "SUCCESS", "COMPLETED", "DONE":
		return constant.WithdrawCompleted
	case "FAIL", "FAILED", "REJECTED", "ERROR", "DECLINED", "CANCELLED", "CANCELED", "EXPIRED":
		return constant.WithdrawFailed
	}
	return constant.WithdrawPending
}

// ProcessWithdrawal finalizes a PENDING withdrawal from a payout webhook.
// Replays are safe: once the row left PENDING the conditional update inside
// FinalizeWithdrawal matches nothing.
func (in *Ingestor) ProcessWithdrawal(path string, raw []byte, headerSig string) error {
	var cb dto.WithdrawalCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return constant.NewErrorMsg(constant.CodeInvalidParams, "malformed withdrawal callback body")
	}
	refID := cb.ReferenceID()
	if refID == "" {
		return constant.NewErrorMsg(constant.CodeMissingParams, "withdrawal callback missing reference id")
	}

	wd, err := in.OrderDao.GetWithdrawalByRefID(refID)
	if err != nil {
		return err
	}
	if wd == nil {
		return constant.NewErrorMsg(constant.CodeOrderNotFound, "withdrawal not found: "+refID)
	}

	if err := in.OrderDao.UpsertTransactionCallback(refID, wd.SourceProvider, raw); err != nil {
		log.Printf("[CALLBACK-WD] audit write failed for %s: %v", refID, err)
	}

	// Hilogate signs payout webhooks the same way as transaction webhooks.
	if wd.SourceProvider == constant.ProviderHilogate {
		sub, err := in.MainDao.GetSubMerchant(wd.SubMerchantID)
		if err != nil {
			return err
		}
		if sub == nil {
			return constant.NewErrorMsg(constant.CodeSystemError, "withdrawal references missing sub-merchant")
		}
		cfg, err := provider.ReshapeHilogate(sub.Credentials)
		if err != nil {
			return err
		}
		want := utils.HilogateSignature(path, raw, cfg.SecretKey)
		if !utils.SignaturesEqual(headerSig, want) {
			log.Printf("[CALLBACK-WD] signature mismatch for %s", refID)
			return constant.NewError(constant.CodeSignatureError)
		}
	}

	statusText, isOY := cb.StatusInfo()
	updates := map[string]interface{}{}
	if fee := cb.EffectiveFee(); !fee.IsZero() {
		updates["pg_fee"] = fee
	}
	if trxID := cb.GatewayTrxID(); trxID != "" {
		updates["payment_gateway_id"] = trxID
	}

	switch withdrawalOutcome(statusText, isOY) {
	case constant.WithdrawCompleted:
		now := time.Now()
		updates["completed_at"] = now
		applied, err := in.OrderDao.FinalizeWithdrawal(refID, constant.WithdrawCompleted, updates, decimal.Zero)
		if err != nil {
			return err
		}
		if applied {
			log.Printf("[CALLBACK-WD] %s completed, gateway trx %s", refID, cb.GatewayTrxID())
		}
		return nil
	case constant.WithdrawFailed:
		// Explicit gateway failure; the debited amount goes back to the
		// partner.
		applied, err := in.OrderDao.FinalizeWithdrawal(refID, constant.WithdrawFailed, updates, wd.Amount)
		if err != nil {
			return err
		}
		if applied {
			log.Printf("[CALLBACK-WD] %s failed with status %q, refunded %s", refID, statusText, wd.Amount)
		}
		return nil
	default:
		// Transfer still in flight; record what the gateway told us and wait.
		if len(updates) > 0 {
			if err := in.OrderDao.UpdateWithdrawalMeta(refID, updates); err != nil {
				return err
			}
		}
		log.Printf("[CALLBACK-WD] %s still in flight, status %q", refID, statusText)
		return nil
	}
}
