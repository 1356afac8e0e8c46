package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/credential"
	"launcx-order-api/internal/dao"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/fee"
	mainmodel "launcx-order-api/internal/model/main"
	ordermodel "launcx-order-api/internal/model/order"
	"launcx-order-api/internal/provider"
	"launcx-order-api/internal/system"
)

type WithdrawalService struct {
	OrderDao *dao.OrderDao
	MainDao  *dao.MainDao
	Resolver *credential.Resolver
}

func NewWithdrawalService() *WithdrawalService {
	return &WithdrawalService{
		OrderDao: dao.NewOrderDao(),
		MainDao:  dao.NewMainDao(),
		Resolver: credential.NewResolver(),
	}
}

// resolveClient picks the credential set that will carry the disbursement.
func (s *WithdrawalService) resolveClient(partner *mainmodel.PartnerClient, providerName string, subMerchantID uint64) (credential.ActiveCredential, error) {
	if providerName == "" {
		providerName = partner.DefaultProvider
	}
	if providerName == "" {
		providerName = constant.ProviderHilogate
	}
	merchant, err := s.MainDao.GetMerchantByName(providerName)
	if err != nil {
		return credential.ActiveCredential{}, err
	}
	if merchant == nil {
		return credential.ActiveCredential{}, constant.NewErrorMsg(constant.CodeUnknownProvider,
			fmt.Sprintf("no internal merchant configured for channel %s", providerName))
	}
	creds, err := s.Resolver.ActiveProviders(merchant.ID, providerName, time.Now(), system.WeekendOverrides(), partner.ForceSchedule)
	if err != nil {
		return credential.ActiveCredential{}, err
	}
	if subMerchantID != 0 {
		for _, c := range creds {
			if c.SubMerchant.ID == subMerchantID {
				return c, nil
			}
		}
		return credential.ActiveCredential{}, constant.NewErrorMsg(constant.CodeNoActiveProvider,
			fmt.Sprintf("sub-merchant %d is not active for channel %s", subMerchantID, providerName))
	}
	return creds[0], nil
}

// Create runs the withdrawal saga: validate the destination account, debit
// the balance together with the PENDING insert, then call the gateway. A
// synchronous gateway failure refunds immediately; otherwise the payout
// webhook finalizes the row.
func (s *WithdrawalService) Create(ctx context.Context, partner *mainmodel.PartnerClient, req dto.CreateWithdrawalReq) (*dto.CreateWithdrawalResp, error) {
	if !req.Amount.IsPositive() {
		return nil, constant.NewErrorMsg(constant.CodeInvalidParams, "amount must be positive")
	}

	cred, err := s.resolveClient(partner, req.Provider, req.SubMerchantID)
	if err != nil {
		return nil, err
	}
	client := cred.Client

	wdFee := fee.Calculate(req.Amount, partner.WithdrawFeePct, partner.WithdrawFeeFlat)
	net := req.Amount.Sub(wdFee)
	if !net.IsPositive() {
		return nil, constant.NewErrorMsg(constant.CodeInvalidParams, "amount does not cover the withdrawal fee")
	}

	accountName := req.AccountName
	alias := ""
	if v, err := client.ValidateAccount(ctx, req.AccountNumber, req.BankCode); err == nil {
		if !v.Valid {
			return nil, constant.NewError(constant.CodeInvalidBankAccount)
		}
		if v.AccountHolder != "" {
			alias = v.AccountHolder
			if accountName == "" {
				accountName = v.AccountHolder
			}
		}
	} else {
		// Providers without an inquiry endpoint still take the payout.
		log.Printf("[WD] account inquiry unavailable on %s: %v", client.Name(), err)
	}

	refID := fmt.Sprintf("wd-%d", time.Now().UnixMilli())
	wd := &ordermodel.WithdrawRequest{
		RefID:            refID,
		PartnerClientID:  partner.ID,
		SubMerchantID:    cred.SubMerchant.ID,
		SourceProvider:   client.Name(),
		Amount:           req.Amount,
		NetAmount:        net,
		WithdrawFeePct:   partner.WithdrawFeePct,
		WithdrawFeeFlat:  partner.WithdrawFeeFlat,
		Status:           constant.WithdrawPending,
		BankCode:         req.BankCode,
		AccountNumber:    req.AccountNumber,
		AccountName:      accountName,
		AccountNameAlias: alias,
	}
	if err := s.OrderDao.CreateWithdrawalAndDebit(wd, req.Amount); err != nil {
		return nil, err
	}

	res, err := client.CreateDisbursement(ctx, provider.DisburseRequest{
		RefID:         refID,
		Amount:        net,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		AccountName:   accountName,
		Remark:        fmt.Sprintf("withdrawal %s", refID),
	})
	if err != nil {
		// Synchronous rejection: refund in the same transaction that fails
		// the row. Replays are harmless once the row left PENDING.
		if _, ferr := s.OrderDao.FinalizeWithdrawal(refID, constant.WithdrawFailed, nil, req.Amount); ferr != nil {
			log.Printf("[WD] refund after gateway rejection failed for %s: %v", refID, ferr)
		}
		return nil, constant.NewErrorMsg(constant.CodeUpstreamError, fmt.Sprintf("disbursement rejected: %v", err))
	}

	if res.TrxID != "" {
		_ = s.OrderDao.UpdateWithdrawalMeta(refID, map[string]interface{}{"payment_gateway_id": res.TrxID})
	}

	status := constant.WithdrawPending
	if !res.IsTransferProcess && res.Status != "" {
		mapped := mapDisburseStatus(res.Status)
		if mapped == constant.WithdrawCompleted {
			now := time.Now()
			if applied, err := s.OrderDao.FinalizeWithdrawal(refID, constant.WithdrawCompleted, map[string]interface{}{
				"completed_at": now,
			}, decimal.Zero); err == nil && applied {
				status = constant.WithdrawCompleted
			}
		} else if mapped == constant.WithdrawFailed {
			if applied, err := s.OrderDao.FinalizeWithdrawal(refID, constant.WithdrawFailed, nil, req.Amount); err == nil && applied {
				status = constant.WithdrawFailed
			}
		}
	}

	return &dto.CreateWithdrawalResp{
		RefID:     refID,
		Status:    status,
		Amount:    req.Amount,
		NetAmount: net,
	}, nil
}

// mapDisburseStatus normalizes a synchronous disbursement status.
func mapDisburseStatus(raw string) string {
	switch raw {
	case "SUCCESS", "COMPLETED", "DONE":
		return constant.WithdrawCompleted
	case "FAILED", "FAIL", "REJECTED":
		return constant.WithdrawFailed
	}
	return constant.WithdrawPending
}

// ListBanks returns the destination bank directory from the partner's
// default channel.
func (s *WithdrawalService) ListBanks(ctx context.Context, partner *mainmodel.PartnerClient, providerName string) ([]dto.BankCode, error) {
	cred, err := s.resolveClient(partner, providerName, 0)
	if err != nil {
		return nil, err
	}
	return cred.Client.GetBankCodes(ctx)
}
