// Package auth verifies the authenticity of incoming catalog webhooks.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ComputeWebhookSignature computes the base64-encoded HMAC-SHA256 of a
// webhook body, the signature format Shopify sends in the
// X-Shopify-Hmac-Sha256 header.
func ComputeWebhookSignature(secret []byte, body []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(body)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// VerifyWebhookSignature checks a received signature against the body.
// Constant-time comparison prevents timing attacks.
func VerifyWebhookSignature(secret []byte, body []byte, signature string) bool {
	expected := ComputeWebhookSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
