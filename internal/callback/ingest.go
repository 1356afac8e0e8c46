// Package callback ingests provider webhooks: verify, audit, map status,
// move the order forward and enqueue the partner notification. Every write is
// a conditional status transition so re-delivered webhooks are harmless.
package callback

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dao"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/event"
	"launcx-order-api/internal/fee"
	mainmodel "launcx-order-api/internal/model/main"
	ordermodel "launcx-order-api/internal/model/order"
	"launcx-order-api/internal/system"
	"launcx-order-api/internal/utils"
)

// paidAliases are the provider spellings of "payment succeeded".
var paidAliases = map[string]struct{}{
	"SUCCESS":  {},
	"SUCCEED":  {},
	"DONE":     {},
	"COMPLETE": {},
	"PAID":     {},
}

// MapProviderStatus normalizes a provider payment status to the internal
// lifecycle. Unknown values pass through uppercased so nothing is silently
// swallowed as a success.
func MapProviderStatus(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := paidAliases[s]; ok {
		return constant.OrderPaid
	}
	switch s {
	case "EXPIRE", "EXPIRED":
		return constant.OrderExpired
	case "FAIL", "FAILED", "DECLINED", "CANCELLED", "CANCELED":
		return constant.OrderFailed
	}
	return s
}

// PaymentUpdate is the provider-neutral result of parsing one webhook.
type PaymentUpdate struct {
	RefID    string
	Provider string
	RawBody  []byte
	// Status is already mapped to the internal lifecycle.
	Status              string
	SettlementStatus    *string
	Fee3rdParty         *decimal.Decimal
	RRN                 *string
	QRPayload           *string
	PaymentReceivedTime *time.Time
	TrxExpirationTime   *time.Time
	SettlementTime      *time.Time
	// Settled marks callbacks that already carry settlement confirmation
	// (Hilogate sends these); the order is credited immediately instead of
	// waiting for the reconciler.
	Settled          bool
	SettlementAmount *decimal.Decimal
}

type Ingestor struct {
	OrderDao *dao.OrderDao
	MainDao  *dao.MainDao
	Events   event.Publisher
}

func NewIngestor(pub event.Publisher) *Ingestor {
	if pub == nil {
		pub = event.Nop{}
	}
	return &Ingestor{OrderDao: dao.NewOrderDao(), MainDao: dao.NewMainDao(), Events: pub}
}

// Apply runs the shared pipeline for one parsed webhook. The caller has
// already verified the provider signature.
func (in *Ingestor) Apply(up PaymentUpdate) error {
	if err := in.OrderDao.UpsertTransactionCallback(up.RefID, up.Provider, up.RawBody); err != nil {
		log.Printf("[CALLBACK] audit write failed for %s: %v", up.RefID, err)
	}

	orderID, err := strconv.ParseUint(up.RefID, 10, 64)
	if err != nil {
		return constant.NewErrorMsg(constant.CodeInvalidParams, fmt.Sprintf("bad reference id %q", up.RefID))
	}
	order, err := in.OrderDao.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return constant.NewError(constant.CodeOrderNotFound)
	}
	if order.Status == constant.OrderSettled {
		// Terminal; acknowledge the redelivery without touching anything.
		log.Printf("[CALLBACK] order %d already settled, ignoring %s update", orderID, up.Provider)
		return nil
	}

	switch up.Status {
	case constant.OrderPaid:
		return in.applyPaid(order, up)
	case constant.OrderExpired, constant.OrderFailed:
		rows, err := in.OrderDao.UpdateOrderWhereStatus(order.ID, constant.OrderPending, map[string]interface{}{
			"status": up.Status,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			log.Printf("[CALLBACK] order %d not PENDING, skip %s", order.ID, up.Status)
		}
		return nil
	default:
		log.Printf("[CALLBACK] order %d: unhandled provider status %q", order.ID, up.Status)
		return nil
	}
}

// applyPaid computes the platform fee, flips PENDING -> PAID, and settles
// immediately when the webhook already confirms settlement.
func (in *Ingestor) applyPaid(order *ordermodel.Order, up PaymentUpdate) error {
	partner, err := in.MainDao.GetPartnerByID(order.PartnerClientID)
	if err != nil {
		return err
	}
	if partner == nil {
		return constant.NewErrorMsg(constant.CodeSystemError, fmt.Sprintf("order %d has no partner", order.ID))
	}

	paidAt := time.Now()
	if up.PaymentReceivedTime != nil {
		paidAt = *up.PaymentReceivedTime
	}
	rates := fee.Rates{
		Percent:        partner.FeePercent,
		Flat:           partner.FeeFlat,
		WeekendPercent: partner.WeekendFeePct,
		WeekendFlat:    partner.WeekendFeeFlat,
	}
	feeLauncx := rates.For(order.Amount, paidAt, system.WeekendOverrides())
	pending := order.Amount.Sub(feeLauncx)

	updates := map[string]interface{}{
		"status":         constant.OrderPaid,
		"fee_launcx":     feeLauncx,
		"pending_amount": pending,
	}
	if up.Fee3rdParty != nil {
		updates["fee_3rd_party"] = *up.Fee3rdParty
	}
	if up.RRN != nil && *up.RRN != "" {
		updates["rrn"] = *up.RRN
	}
	if up.QRPayload != nil && *up.QRPayload != "" {
		updates["qr_payload"] = *up.QRPayload
	}
	if up.SettlementStatus != nil {
		updates["settlement_status"] = *up.SettlementStatus
	}
	if up.PaymentReceivedTime != nil {
		updates["payment_received_time"] = *up.PaymentReceivedTime
	}
	if up.TrxExpirationTime != nil {
		updates["trx_expiration_time"] = *up.TrxExpirationTime
	}

	rows, err := in.OrderDao.UpdateOrderWhereStatus(order.ID, constant.OrderPending, updates)
	if err != nil {
		return err
	}
	if rows > 0 {
		_ = in.Events.Publish("order.paid", dto.OrderEvent{
			OrderID:         strconv.FormatUint(order.ID, 10),
			PartnerClientID: order.PartnerClientID,
			Channel:         up.Provider,
			Status:          constant.OrderPaid,
			Amount:          order.Amount,
			Ts:              time.Now().UnixMilli(),
		})
		in.EnqueuePartnerCallback(partner, order.ID, constant.OrderPaid, up.SettlementStatus,
			order.Amount, feeLauncx, pending, order.QRPayload)
	} else {
		log.Printf("[CALLBACK] order %d already left PENDING, paid update skipped", order.ID)
	}

	if up.Settled {
		return in.settleFromCallback(order, partner, up, feeLauncx, pending)
	}
	return nil
}

// settleFromCallback credits the partner straight from a settlement-bearing
// webhook. Shares the conditional-update guard with the reconciler so only
// one of them ever credits.
func (in *Ingestor) settleFromCallback(order *ordermodel.Order, partner *mainmodel.PartnerClient, up PaymentUpdate, feeLauncx, pending decimal.Decimal) error {
	net := pending
	if up.SettlementAmount != nil && !up.SettlementAmount.IsZero() {
		net = *up.SettlementAmount
	}
	settledAt := time.Now()
	if up.SettlementTime != nil {
		settledAt = *up.SettlementTime
	}
	updates := map[string]interface{}{
		"status":            constant.OrderSettled,
		"settlement_amount": net,
		"pending_amount":    nil,
		"settlement_time":   settledAt,
	}
	if up.SettlementStatus != nil {
		updates["settlement_status"] = *up.SettlementStatus
	}
	settled, err := in.OrderDao.SettleOrderAndCredit(order.ID, order.PartnerClientID, updates, net)
	if err != nil {
		return err
	}
	if !settled {
		return nil
	}
	_ = in.Events.Publish("order.settled", dto.OrderEvent{
		OrderID:         strconv.FormatUint(order.ID, 10),
		PartnerClientID: order.PartnerClientID,
		Channel:         up.Provider,
		Status:          constant.OrderSettled,
		Amount:          order.Amount,
		NetAmount:       net,
		Ts:              time.Now().UnixMilli(),
	})
	in.EnqueuePartnerCallback(partner, order.ID, constant.OrderSettled, up.SettlementStatus,
		order.Amount, feeLauncx, net, order.QRPayload)
	return nil
}

// EnqueuePartnerCallback freezes the signed partner notification into the
// durable queue. Partners without a callback URL configured are skipped.
func (in *Ingestor) EnqueuePartnerCallback(partner *mainmodel.PartnerClient, orderID uint64, status string, settlementStatus *string, gross, feeLauncx, net decimal.Decimal, qrPayload *string) {
	if partner.CallbackURL == "" || partner.CallbackSecret == "" {
		return
	}
	payload := dto.PartnerCallbackPayload{
		OrderID:     strconv.FormatUint(orderID, 10),
		Status:      status,
		GrossAmount: gross,
		FeeLauncx:   feeLauncx,
		NetAmount:   net,
		Timestamp:   time.Now().UnixMilli(),
		Nonce:       uuid.NewString(),
	}
	if settlementStatus != nil {
		payload.SettlementStatus = *settlementStatus
	}
	if qrPayload != nil {
		payload.QRPayload = *qrPayload
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[CALLBACK] marshal partner payload failed for order %d: %v", orderID, err)
		return
	}
	job := &ordermodel.CallbackJob{
		URL:       partner.CallbackURL,
		Payload:   ordermodel.RawJSON(body),
		Signature: utils.PartnerSignature(body, partner.CallbackSecret),
	}
	if err := in.OrderDao.InsertCallbackJob(job); err != nil {
		log.Printf("[CALLBACK] enqueue partner job failed for order %d: %v", orderID, err)
	}
}

// adapterForOrder rebuilds the provider client from the credential set the
// order was created with, so signature checks use the right secret.
func (in *Ingestor) adapterForOrder(order *ordermodel.Order) (*mainmodel.SubMerchant, error) {
	sub, err := in.MainDao.GetSubMerchant(order.SubMerchantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, constant.NewErrorMsg(constant.CodeSystemError,
			fmt.Sprintf("order %d references missing sub-merchant %d", order.ID, order.SubMerchantID))
	}
	return sub, nil
}

// orderForRef loads the order a webhook references.
func (in *Ingestor) orderForRef(refID string) (*ordermodel.Order, error) {
	id, err := strconv.ParseUint(refID, 10, 64)
	if err != nil {
		return nil, constant.NewErrorMsg(constant.CodeInvalidParams, fmt.Sprintf("bad reference id %q", refID))
	}
	order, err := in.OrderDao.GetOrderByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, constant.NewError(constant.CodeOrderNotFound)
	}
	return order, nil
}
