package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dal"
	"launcx-order-api/internal/dto"
	mainmodel "launcx-order-api/internal/model/main"
	ordermodel "launcx-order-api/internal/model/order"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&mainmodel.PartnerClient{}, &mainmodel.Merchant{}, &mainmodel.SubMerchant{},
		&ordermodel.WithdrawRequest{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	dal.DB = db
	return db
}

// A gateway rejection after the balance was debited must refund the partner
// in full and leave the withdrawal FAILED.
func TestWithdrawalGatewayRejectionRefundsBalance(t *testing.T) {
	db := newTestDB(t)
	config.C.Providers.TimeoutSec = 5

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bank-accounts/validate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"status":"valid","account_holder":"Test Holder"}}`)
	})
	mux.HandleFunc("/api/v1/withdrawals", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"channel unavailable"}`, http.StatusInternalServerError)
	})
	gateway := httptest.NewServer(mux)
	defer gateway.Close()
	config.C.Providers.Hilogate.BaseURL = gateway.URL

	startBalance := decimal.NewFromInt(100000)
	partner := &mainmodel.PartnerClient{
		ID: 1, Name: "acme", ApiKey: "key-1", ApiSecret: "shh", Status: 1,
		Balance:         startBalance,
		WithdrawFeePct:  decimal.NewFromInt(1),
		DefaultProvider: "hilogate",
	}
	if err := db.Create(partner).Error; err != nil {
		t.Fatalf("seed partner: %v", err)
	}
	if err := db.Create(&mainmodel.Merchant{ID: 1, Name: "hilogate", Status: 1}).Error; err != nil {
		t.Fatalf("seed merchant: %v", err)
	}
	sub := &mainmodel.SubMerchant{
		ID: 1, MerchantID: 1, Provider: "hilogate",
		Credentials: mainmodel.Credentials{"merchantId": "HM-1", "secretKey": "sk-test"},
		Schedule:    mainmodel.Schedule{Weekday: true, Weekend: true},
		Status:      1,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seed sub-merchant: %v", err)
	}

	svc := NewWithdrawalService()
	_, err := svc.Create(context.Background(), partner, dto.CreateWithdrawalReq{
		Amount:        decimal.NewFromInt(50000),
		BankCode:      "014",
		AccountNumber: "1234567890",
		AccountName:   "Test Holder",
	})
	if err == nil {
		t.Fatal("expected gateway rejection to surface as an error")
	}

	var reloaded mainmodel.PartnerClient
	if err := db.First(&reloaded, "id = ?", partner.ID).Error; err != nil {
		t.Fatalf("reload partner: %v", err)
	}
	if !reloaded.Balance.Equal(startBalance) {
		t.Errorf("balance = %s, want %s back after refund", reloaded.Balance, startBalance)
	}

	var wd ordermodel.WithdrawRequest
	if err := db.First(&wd).Error; err != nil {
		t.Fatalf("load withdrawal: %v", err)
	}
	if wd.Status != constant.WithdrawFailed {
		t.Errorf("withdrawal status = %q, want %q", wd.Status, constant.WithdrawFailed)
	}
	if !wd.Amount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("withdrawal amount = %s", wd.Amount)
	}
}

// An insufficient balance must reject before anything is debited or inserted.
func TestWithdrawalInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	config.C.Providers.TimeoutSec = 5

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bank-accounts/validate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"status":"valid","account_holder":"Test Holder"}}`)
	})
	gateway := httptest.NewServer(mux)
	defer gateway.Close()
	config.C.Providers.Hilogate.BaseURL = gateway.URL

	partner := &mainmodel.PartnerClient{
		ID: 1, Name: "acme", ApiKey: "key-1", ApiSecret: "shh", Status: 1,
		Balance:         decimal.NewFromInt(1000),
		DefaultProvider: "hilogate",
	}
	if err := db.Create(partner).Error; err != nil {
		t.Fatalf("seed partner: %v", err)
	}
	if err := db.Create(&mainmodel.Merchant{ID: 1, Name: "hilogate", Status: 1}).Error; err != nil {
		t.Fatalf("seed merchant: %v", err)
	}
	sub := &mainmodel.SubMerchant{
		ID: 1, MerchantID: 1, Provider: "hilogate",
		Credentials: mainmodel.Credentials{"merchantId": "HM-1", "secretKey": "sk-test"},
		Schedule:    mainmodel.Schedule{Weekday: true, Weekend: true},
		Status:      1,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seed sub-merchant: %v", err)
	}

	svc := NewWithdrawalService()
	_, err := svc.Create(context.Background(), partner, dto.CreateWithdrawalReq{
		Amount:        decimal.NewFromInt(50000),
		BankCode:      "014",
		AccountNumber: "1234567890",
	})
	if err == nil {
		t.Fatal("expected insufficient-funds rejection")
	}

	var reloaded mainmodel.PartnerClient
	db.First(&reloaded, "id = ?", partner.ID)
	if !reloaded.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance = %s, want untouched 1000", reloaded.Balance)
	}
	var n int64
	db.Model(&ordermodel.WithdrawRequest{}).Count(&n)
	if n != 0 {
		t.Errorf("withdrawal rows = %d, want 0", n)
	}
}
