package utils

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HilogateSignature is md5(path + body + secretKey), sent/compared as the
// X-Signature header. The body must be the exact bytes on the wire.
func HilogateSignature(path string, body []byte, secretKey string) string {
	h := md5.New()
	h.Write([]byte(path))
	h.Write(body)
	h.Write([]byte(secretKey))
	return hex.EncodeToString(h.Sum(nil))
}

// GidiSignature is the double-nested scheme:
//
//	inner = sha256(subMerchantId + part1 + part2 + ... + credentialKey)
//	sig   = sha256(merchantId + inner)
//
// The variadic parts differ between the generate call and the inbound
// callback but the nesting is the same.
func GidiSignature(merchantID, subMerchantID, credentialKey string, parts ...string) string {
	inner := sha256.New()
	inner.Write([]byte(subMerchantID))
	for _, p := range parts {
		inner.Write([]byte(p))
	}
	inner.Write([]byte(credentialKey))
	innerHex := hex.EncodeToString(inner.Sum(nil))

	outer := sha256.Sum256([]byte(merchantID + innerHex))
	return hex.EncodeToString(outer[:])
}

// PartnerSignature is HMAC-SHA256 over the exact callback body, keyed by the
// partner's callbackSecret. Sent as X-Callback-Signature.
func PartnerSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPartnerSignature compares in constant time, case-insensitive hex.
func VerifyPartnerSignature(body []byte, secret, got string) bool {
	want := PartnerSignature(body, secret)
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}

// SignaturesEqual compares two hex signatures without leaking position info.
func SignaturesEqual(a, b string) bool {
	return hmac.Equal([]byte(strings.ToLower(a)), []byte(strings.ToLower(b)))
}
