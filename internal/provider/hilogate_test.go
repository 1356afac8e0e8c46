package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/utils"
)

func TestHilogateCreateTransactionSignsRequest(t *testing.T) {
	cfg := HilogateConfig{MerchantID: "mer-1", SecretKey: "sk-test"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Merchant-ID"); got != "mer-1" {
			t.Errorf("X-Merchant-ID = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		want := utils.HilogateSignature(r.URL.Path, body, cfg.SecretKey)
		if got := r.Header.Get("X-Signature"); got != want {
			t.Errorf("X-Signature = %q, want %q", got, want)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"qr_string": "qris-payload", "trx_id": "hg-1"},
		})
	}))
	defer srv.Close()

	h := &Hilogate{Cfg: cfg, BaseURL: srv.URL}
	res, err := h.CreateTransaction(context.Background(), "800001", decimal.NewFromInt(25000), "buyer")
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if res.QRPayload != "qris-payload" || res.ProviderRef != "hg-1" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestHilogateVerifyInboundSignature(t *testing.T) {
	h := &Hilogate{Cfg: HilogateConfig{MerchantID: "mer-1", SecretKey: "sk-test"}}
	path := "/api/v1/transactions/callback"
	fields := map[string]string{"ref_id": "800002", "amount": "25000", "method": "qris"}

	minimal := fmt.Sprintf(`{"ref_id":%q,"amount":%s,"method":%q}`,
		fields["ref_id"], fields["amount"], fields["method"])
	good := utils.HilogateSignature(path, []byte(minimal), "sk-test")

	if err := h.VerifyInboundSignature(InboundCallback{
		Path: path, HeaderSignature: good, Fields: fields,
	}); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
	if err := h.VerifyInboundSignature(InboundCallback{
		Path: path, HeaderSignature: "bogus", Fields: fields,
	}); err == nil {
		t.Error("invalid signature accepted")
	}
}

func TestHilogateSettled(t *testing.T) {
	for _, s := range []string{"ACTIVE", "SETTLED", "COMPLETED", "active", "settled"} {
		if !HilogateSettled(s) {
			t.Errorf("%q should count as settled", s)
		}
	}
	for _, s := range []string{"WAITING", "PENDING", ""} {
		if HilogateSettled(s) {
			t.Errorf("%q should not count as settled", s)
		}
	}
}

func TestHilogateCheckStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transactions/800003" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"settlement_status": "settled",
				"net_amount":        24500,
				"total_fee":         500,
				"rrn":               "rrn-1",
			},
		})
	}))
	defer srv.Close()

	h := &Hilogate{Cfg: HilogateConfig{MerchantID: "mer-1", SecretKey: "sk"}, BaseURL: srv.URL}
	st, err := h.CheckStatus(context.Background(), "800003")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if !st.Settled || st.SettlementStatus != "SETTLED" {
		t.Errorf("status = %+v", st)
	}
	if !st.SettlementAmount.Equal(decimal.NewFromInt(24500)) {
		t.Errorf("SettlementAmount = %s", st.SettlementAmount)
	}
	if st.RRN != "rrn-1" {
		t.Errorf("RRN = %q", st.RRN)
	}
}
