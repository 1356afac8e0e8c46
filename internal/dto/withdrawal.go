package dto

import "github.com/shopspring/decimal"

type CreateWithdrawalReq struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	BankCode      string          `json:"bankCode" binding:"required"`
	AccountNumber string          `json:"accountNumber" binding:"required"`
	AccountName   string          `json:"accountName"`
	Provider      string          `json:"provider"`
	SubMerchantID uint64          `json:"subMerchantId"`
}

type CreateWithdrawalResp struct {
	RefID     string          `json:"refId"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	NetAmount decimal.Decimal `json:"netAmount"`
}
