package provider

import (
	"fmt"

	mainmodel "launcx-order-api/internal/model/main"
)

// Credential reshaping. Raw sub-merchant blobs are validated into typed
// configs; a missing required field is an immediate error, never a
// partially-valid config.

type HilogateConfig struct {
	MerchantID string
	SecretKey  string
}

type OYConfig struct {
	Username string
	ApiKey   string
}

type GidiConfig struct {
	MerchantID    string
	SubMerchantID string
	CredentialKey string
}

type TwoC2PConfig struct {
	MerchantID string
	SecretKey  string
}

func need(creds mainmodel.Credentials, provider string, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok := creds[k]
		if !ok || v == "" {
			return nil, fmt.Errorf("%s credentials missing required field %q", provider, k)
		}
		out[k] = v
	}
	return out, nil
}

func ReshapeHilogate(creds mainmodel.Credentials) (HilogateConfig, error) {
	m, err := need(creds, "hilogate", "merchantId", "secretKey")
	if err != nil {
		return HilogateConfig{}, err
	}
	return HilogateConfig{MerchantID: m["merchantId"], SecretKey: m["secretKey"]}, nil
}

func ReshapeOY(creds mainmodel.Credentials) (OYConfig, error) {
	m, err := need(creds, "oy", "username", "apiKey")
	if err != nil {
		return OYConfig{}, err
	}
	return OYConfig{Username: m["username"], ApiKey: m["apiKey"]}, nil
}

func ReshapeGidi(creds mainmodel.Credentials) (GidiConfig, error) {
	m, err := need(creds, "gidi", "merchantId", "subMerchantId", "credentialKey")
	if err != nil {
		return GidiConfig{}, err
	}
	return GidiConfig{
		MerchantID:    m["merchantId"],
		SubMerchantID: m["subMerchantId"],
		CredentialKey: m["credentialKey"],
	}, nil
}

func Reshape2C2P(creds mainmodel.Credentials) (TwoC2PConfig, error) {
	m, err := need(creds, "2c2p", "merchantId", "secretKey")
	if err != nil {
		return TwoC2PConfig{}, err
	}
	return TwoC2PConfig{MerchantID: m["merchantId"], SecretKey: m["secretKey"]}, nil
}
