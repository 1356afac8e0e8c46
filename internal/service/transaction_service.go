// Package service holds the orchestration layer between the HTTP handlers
// and the provider adapters.
package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/credential"
	"launcx-order-api/internal/dao"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/event"
	"launcx-order-api/internal/idgen"
	mainmodel "launcx-order-api/internal/model/main"
	ordermodel "launcx-order-api/internal/model/order"
	"launcx-order-api/internal/system"
	"launcx-order-api/internal/utils"
)

// ResendScheduler schedules a delayed status re-check for channels whose
// webhook sometimes never arrives. The worker consuming the schedule runs out
// of process.
type ResendScheduler interface {
	Schedule(orderID uint64, due time.Time)
}

// EventResendScheduler publishes the re-check request onto the order events
// exchange.
type EventResendScheduler struct {
	Events event.Publisher
}

func (s EventResendScheduler) Schedule(orderID uint64, due time.Time) {
	_ = s.Events.Publish("order.resend", dto.ResendCheckEvent{
		OrderID: strconv.FormatUint(orderID, 10),
		Due:     due.UnixMilli(),
	})
}

// How long to wait for a Hilogate webhook before re-querying.
const resendCheckDelay = 5 * time.Minute

type TransactionService struct {
	OrderDao *dao.OrderDao
	MainDao  *dao.MainDao
	Resolver *credential.Resolver
	Resend   ResendScheduler
}

func NewTransactionService(pub event.Publisher) *TransactionService {
	if pub == nil {
		pub = event.Nop{}
	}
	return &TransactionService{
		OrderDao: dao.NewOrderDao(),
		MainDao:  dao.NewMainDao(),
		Resolver: credential.NewResolver(),
		Resend:   EventResendScheduler{Events: pub},
	}
}

// qrProxyURL builds the same-origin URL that serves a provider-hosted QR.
func qrProxyURL(refID string) string {
	base := strings.TrimRight(config.C.Server.PublicURL, "/")
	if base == "" {
		base = strings.TrimRight(utils.PickCheckoutHost(config.C.Checkout.Hosts), "/")
	}
	return fmt.Sprintf("%s/api/v1/payment/%s/qr", base, refID)
}

// pickProvider resolves the channel for a new transaction. Config force wins,
// then the platform setting, then the partner's default, then whatever the
// request asked for.
func pickProvider(partner *mainmodel.PartnerClient, requested string) string {
	if f := config.C.Providers.Force; f != "" {
		return f
	}
	if f := system.ForceProvider(); f != "" {
		return f
	}
	if partner.DefaultProvider != "" {
		return partner.DefaultProvider
	}
	return requested
}

// Create runs one payment creation end to end: resolve the channel and
// credentials, call the gateway, persist the PENDING order.
func (s *TransactionService) Create(ctx context.Context, partner *mainmodel.PartnerClient, req dto.CreateTransactionReq) (*dto.CreateTransactionResp, error) {
	if !req.Price.IsPositive() {
		return nil, constant.NewErrorMsg(constant.CodeInvalidParams, "price must be positive")
	}

	providerName := pickProvider(partner, req.MerchantName)
	merchant, err := s.MainDao.GetMerchantByName(providerName)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, constant.NewErrorMsg(constant.CodeUnknownProvider,
			fmt.Sprintf("no internal merchant configured for channel %s", providerName))
	}

	creds, err := s.Resolver.ActiveProviders(merchant.ID, providerName, time.Now(), system.WeekendOverrides(), partner.ForceSchedule)
	if err != nil {
		return nil, err
	}
	// A pinned sub-merchant narrows the candidate list.
	if req.SubMerchantID != 0 {
		narrowed := creds[:0:0]
		for _, c := range creds {
			if c.SubMerchant.ID == req.SubMerchantID {
				narrowed = append(narrowed, c)
			}
		}
		if len(narrowed) == 0 {
			return nil, constant.NewErrorMsg(constant.CodeNoActiveProvider,
				fmt.Sprintf("sub-merchant %d is not active for channel %s", req.SubMerchantID, providerName))
		}
		creds = narrowed
	}

	orderID := idgen.NewFrom("order")
	refID := strconv.FormatUint(orderID, 10)

	raw := utils.MapToJSON(map[string]interface{}{
		"merchantName":   req.MerchantName,
		"price":          req.Price,
		"buyer":          req.Buyer,
		"playerId":       req.PlayerID,
		"flow":           req.Flow,
		"subMerchantId":  req.SubMerchantID,
		"sourceProvider": req.SourceProvider,
	})
	_ = s.OrderDao.InsertTransactionRequest(&ordermodel.TransactionRequest{
		OrderID:         orderID,
		PartnerClientID: partner.ID,
		Provider:        providerName,
		Payload:         ordermodel.RawJSON(raw),
	})

	// First credential set that accepts the charge wins; the rest are
	// fallback capacity.
	var charge *dto.ChargeResult
	var used credential.ActiveCredential
	var lastErr error
	for _, c := range creds {
		charge, lastErr = c.Client.CreateTransaction(ctx, refID, req.Price, req.Buyer)
		if lastErr == nil {
			used = c
			break
		}
		log.Printf("[TXN] %s via sub-merchant %d failed: %v", providerName, c.SubMerchant.ID, lastErr)
	}
	if charge == nil {
		return nil, constant.NewErrorMsg(constant.CodeUpstreamError,
			fmt.Sprintf("all %s credentials rejected the charge: %v", providerName, lastErr))
	}

	checkoutURL := charge.CheckoutURL
	var providerURL *string
	if providerName == constant.ProviderOY && checkoutURL != "" {
		// OY hands back a signed URL; clients get a same-origin proxy link
		// instead, and the signed URL stays server-side.
		u := checkoutURL
		providerURL = &u
		checkoutURL = qrProxyURL(refID)
	}
	if checkoutURL == "" {
		host := utils.PickCheckoutHost(config.C.Checkout.Hosts)
		checkoutURL = fmt.Sprintf("%s/payment/%s", host, refID)
	}

	order := &ordermodel.Order{
		ID:              orderID,
		PartnerClientID: partner.ID,
		MerchantID:      merchant.ID,
		SubMerchantID:   used.SubMerchant.ID,
		Channel:         providerName,
		Amount:          req.Price,
		Status:          constant.OrderPending,
		CheckoutURL:     checkoutURL,
		Buyer:           req.Buyer,
	}
	order.ProviderCheckoutURL = providerURL
	if charge.QRPayload != "" {
		qr := charge.QRPayload
		order.QRPayload = &qr
	}
	if req.PlayerID != "" {
		pid := req.PlayerID
		order.PlayerID = &pid
	}
	if err := s.OrderDao.InsertOrder(order); err != nil {
		return nil, err
	}

	if providerName == constant.ProviderHilogate && s.Resend != nil {
		// Hilogate webhooks occasionally never arrive; schedule a re-check.
		s.Resend.Schedule(orderID, time.Now().Add(resendCheckDelay))
	}

	resp := &dto.CreateTransactionResp{
		OrderID:     refID,
		CheckoutURL: checkoutURL,
		TotalAmount: req.Price,
	}
	if charge.QRPayload != "" {
		resp.QRPayload = charge.QRPayload
	}
	return resp, nil
}
