package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/utils"
)

func testGidi(baseURL string) *Gidi {
	return &Gidi{
		Cfg:         GidiConfig{MerchantID: "m-1", SubMerchantID: "sub-1", CredentialKey: "ck"},
		BaseURL:     baseURL,
		MaxFallback: 2,
		BaseDelay:   5 * time.Millisecond,
		PollBudget:  200 * time.Millisecond,
	}
}

func TestGidiRegeneratesIDPairOnDoubleRequest(t *testing.T) {
	var seenRequestIDs []string
	var seenTransactionIDs []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		seenRequestIDs = append(seenRequestIDs, req["requestId"].(string))
		seenTransactionIDs = append(seenTransactionIDs, req["transactionId"].(string))

		if len(seenRequestIDs) == 1 {
			_ = json.NewEncoder(w).Encode(map[string]string{"code": "DOUBLE_REQUEST_ID"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":        "success",
			"qr_string":     "00020101qris-payload",
			"transactionId": req["transactionId"].(string),
		})
	}))
	defer srv.Close()

	g := testGidi(srv.URL)
	res, err := g.CreateTransaction(context.Background(), "900001", decimal.NewFromInt(10000), "buyer")
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if res.QRPayload != "00020101qris-payload" {
		t.Errorf("QRPayload = %q", res.QRPayload)
	}
	if len(seenRequestIDs) != 2 {
		t.Fatalf("expected 2 generate calls, got %d", len(seenRequestIDs))
	}
	// Both ids must be regenerated together after a collision.
	if seenRequestIDs[0] == seenRequestIDs[1] {
		t.Error("requestId was not regenerated after DOUBLE_REQUEST_ID")
	}
	if seenTransactionIDs[0] == seenTransactionIDs[1] {
		t.Error("transactionId was not regenerated after DOUBLE_REQUEST_ID")
	}
}

func TestGidiGivesUpAfterFallbackBudget(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "DOUBLE_REQUEST_ID"})
	}))
	defer srv.Close()

	g := testGidi(srv.URL)
	_, err := g.CreateTransaction(context.Background(), "900002", decimal.NewFromInt(10000), "buyer")
	if err == nil {
		t.Fatal("expected an error when every attempt collides")
	}
	// initial attempt + MaxFallback retries
	if calls != g.MaxFallback+1 {
		t.Errorf("expected %d calls, got %d", g.MaxFallback+1, calls)
	}
}

func TestGidiPollsPendingWithSameIDPair(t *testing.T) {
	var generateReq map[string]interface{}
	var inquiryReq map[string]interface{}
	inquiries := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/api/qris/generate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&generateReq)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
	})
	mux.HandleFunc("/api/qris/inquiry", func(w http.ResponseWriter, r *http.Request) {
		inquiries++
		_ = json.NewDecoder(r.Body).Decode(&inquiryReq)
		if inquiries == 1 {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    "success",
			"qr_string": "qris-after-poll",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := testGidi(srv.URL)
	res, err := g.CreateTransaction(context.Background(), "900003", decimal.NewFromInt(5000), "buyer")
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if res.QRPayload != "qris-after-poll" {
		t.Errorf("QRPayload = %q", res.QRPayload)
	}
	if inquiryReq["requestId"] != generateReq["requestId"] {
		t.Error("poll must reuse the generate requestId")
	}
	if inquiryReq["transactionId"] != generateReq["transactionId"] {
		t.Error("poll must reuse the generate transactionId")
	}
}

func TestGidiVerifyInboundSignature(t *testing.T) {
	g := testGidi("http://unused")
	fields := map[string]string{"invoiceId": "900004", "amount": "10000", "status": "SUCCESS"}
	good := utils.GidiSignature(g.Cfg.MerchantID, g.Cfg.SubMerchantID, g.Cfg.CredentialKey,
		fields["invoiceId"], fields["amount"], fields["status"])

	if err := g.VerifyInboundSignature(InboundCallback{Fields: fields, BodySignature: good}); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
	if err := g.VerifyInboundSignature(InboundCallback{Fields: fields, BodySignature: "deadbeef"}); err == nil {
		t.Error("invalid signature accepted")
	}
}
