package callback

import (
	"encoding/json"
	"log"
	"time"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/provider"
	"launcx-order-api/internal/utils/timeutil"
)

// parseHilogateTime accepts both RFC3339 and the Jakarta-local format
// Hilogate has used at different times.
func parseHilogateTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := timeutil.ParseJakartaDateTime(s); err == nil {
		return &t
	}
	return nil
}

// ProcessHilogate verifies and applies one Hilogate transaction webhook.
// The signature covers the request path plus a minimal JSON of ref_id,
// amount and method, so the raw bytes and the header must come through
// untouched.
func (in *Ingestor) ProcessHilogate(path string, raw []byte, headerSig string) error {
	var cb dto.HilogateCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return constant.NewErrorMsg(constant.CodeInvalidParams, "malformed hilogate callback body")
	}
	if cb.RefID == "" {
		return constant.NewErrorMsg(constant.CodeMissingParams, "hilogate callback missing ref_id")
	}

	order, err := in.orderForRef(cb.RefID)
	if err != nil {
		return err
	}
	sub, err := in.adapterForOrder(order)
	if err != nil {
		return err
	}
	client, err := provider.New(constant.ProviderHilogate, sub.Credentials)
	if err != nil {
		return err
	}
	if err := client.VerifyInboundSignature(provider.InboundCallback{
		Path:            path,
		RawBody:         raw,
		HeaderSignature: headerSig,
		Fields: map[string]string{
			"ref_id": cb.RefID,
			"amount": cb.Amount.String(),
			"method": cb.Method,
		},
	}); err != nil {
		return err
	}

	up := PaymentUpdate{
		RefID:               cb.RefID,
		Provider:            constant.ProviderHilogate,
		RawBody:             raw,
		Status:              MapProviderStatus(cb.Status),
		Fee3rdParty:         &cb.TotalFee,
		PaymentReceivedTime: parseHilogateTime(cb.UpdatedAt.Value),
		TrxExpirationTime:   parseHilogateTime(cb.ExpiresAt.Value),
	}
	if cb.RRN != "" {
		up.RRN = &cb.RRN
	}
	if cb.QRString != "" {
		up.QRPayload = &cb.QRString
	}
	if cb.SettlementStatus != "" {
		ss := cb.SettlementStatus
		up.SettlementStatus = &ss
	}
	if up.Status == constant.OrderPaid && provider.HilogateSettled(cb.SettlementStatus) {
		up.Settled = true
		if !cb.NetAmount.IsZero() {
			net := cb.NetAmount
			up.SettlementAmount = &net
		}
	}

	log.Printf("[CALLBACK-HILOGATE] ref %s status %s settlement %s", cb.RefID, cb.Status, cb.SettlementStatus)
	return in.Apply(up)
}
