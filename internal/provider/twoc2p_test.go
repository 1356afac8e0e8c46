package provider

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

func Test2C2PAmountClaimKeepsDecimalExact(t *testing.T) {
	tw := &TwoC2P{Cfg: TwoC2PConfig{MerchantID: "m", SecretKey: "k"}}
	amount := decimal.RequireFromString("10000.05")

	tok, err := tw.encode2c2p(jwt.MapClaims{"amount": json.Number(amount.String())})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("not a JWT: %q", tok)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	// The wire amount must be the exact decimal, not a float approximation.
	if !strings.Contains(string(payload), `"amount":10000.05`) {
		t.Errorf("claims payload %s does not carry the exact amount", payload)
	}
}

func Test2C2PDecodeRejectsForeignSignature(t *testing.T) {
	signer := &TwoC2P{Cfg: TwoC2PConfig{MerchantID: "m", SecretKey: "other"}}
	tok, err := signer.encode2c2p(jwt.MapClaims{"respCode": "0000"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	tw := &TwoC2P{Cfg: TwoC2PConfig{MerchantID: "m", SecretKey: "mine"}}
	if _, err := tw.decode2c2p(tok); err == nil {
		t.Error("token signed with a foreign secret must not verify")
	}
}
