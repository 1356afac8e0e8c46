package callback

import (
	"encoding/json"
	"log"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/utils/timeutil"
)

// ProcessOY applies one OY payment-routing webhook. OY sends no signature;
// the payload is validated structurally and the referenced order must exist
// and belong to the oy channel.
func (in *Ingestor) ProcessOY(raw []byte) error {
	var cb dto.OYCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return constant.NewErrorMsg(constant.CodeInvalidParams, "malformed oy callback body")
	}
	if cb.PartnerTrxID == "" || cb.PaymentStatus == "" {
		return constant.NewErrorMsg(constant.CodeMissingParams, "oy callback missing partner_trx_id or payment_status")
	}

	order, err := in.orderForRef(cb.PartnerTrxID)
	if err != nil {
		return err
	}
	if order.Channel != constant.ProviderOY {
		return constant.NewErrorMsg(constant.CodeInvalidParams, "order does not belong to the oy channel")
	}

	up := PaymentUpdate{
		RefID:    cb.PartnerTrxID,
		Provider: constant.ProviderOY,
		RawBody:  raw,
		Status:   MapProviderStatus(cb.PaymentStatus),
	}
	if cb.SettlementStatus != "" {
		ss := cb.SettlementStatus
		up.SettlementStatus = &ss
	}
	if t, err := timeutil.ParseJakartaDateTime(cb.PaymentReceivedTime); err == nil {
		up.PaymentReceivedTime = &t
	}
	if t, err := timeutil.ParseJakartaDateTime(cb.TrxExpirationTime); err == nil {
		up.TrxExpirationTime = &t
	}
	if t, err := timeutil.ParseJakartaDateTime(cb.SettlementTime); err == nil {
		up.SettlementTime = &t
	}

	log.Printf("[CALLBACK-OY] ref %s status %s settlement %s", cb.PartnerTrxID, cb.PaymentStatus, cb.SettlementStatus)
	return in.Apply(up)
}
