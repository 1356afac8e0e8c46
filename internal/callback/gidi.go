package callback

import (
	"encoding/json"
	"log"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/provider"
	"launcx-order-api/internal/utils/timeutil"
)

// ProcessGidi verifies and applies one Gidi QRIS webhook. Gidi signs selected
// fields (invoiceId, amount, status) with the nested scheme rather than the
// body, keyed per sub-merchant.
func (in *Ingestor) ProcessGidi(raw []byte) error {
	var cb dto.GidiCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return constant.NewErrorMsg(constant.CodeInvalidParams, "malformed gidi callback body")
	}
	refID := cb.ReferenceID()
	if refID == "" {
		return constant.NewErrorMsg(constant.CodeMissingParams, "gidi callback missing reference id")
	}

	order, err := in.orderForRef(refID)
	if err != nil {
		return err
	}
	sub, err := in.adapterForOrder(order)
	if err != nil {
		return err
	}
	client, err := provider.New(constant.ProviderGidi, sub.Credentials)
	if err != nil {
		return err
	}
	if err := client.VerifyInboundSignature(provider.InboundCallback{
		RawBody:       raw,
		BodySignature: cb.Signature,
		Fields: map[string]string{
			"invoiceId": refID,
			"amount":    cb.EffectiveAmount().String(),
			"status":    cb.Status,
		},
	}); err != nil {
		return err
	}

	up := PaymentUpdate{
		RefID:    refID,
		Provider: constant.ProviderGidi,
		RawBody:  raw,
		Status:   MapProviderStatus(cb.Status),
	}
	if cb.SettlementStat != "" {
		ss := cb.SettlementStat
		up.SettlementStatus = &ss
	}
	if t, err := timeutil.ParseJakartaDateTime(cb.PaymentTime); err == nil {
		up.PaymentReceivedTime = &t
	}
	if t, err := timeutil.ParseJakartaDateTime(cb.ExpirationTime); err == nil {
		up.TrxExpirationTime = &t
	}
	if t, err := timeutil.ParseJakartaDateTime(cb.SettlementTime); err == nil {
		up.SettlementTime = &t
	}

	log.Printf("[CALLBACK-GIDI] ref %s status %s", refID, cb.Status)
	return in.Apply(up)
}
