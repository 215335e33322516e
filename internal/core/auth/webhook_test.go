package auth

import (
	"testing"
)

func TestComputeWebhookSignature_Deterministic(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{"id":1001,"vendor":"Acme"}`)

	sig1 := ComputeWebhookSignature(secret, body)
	sig2 := ComputeWebhookSignature(secret, body)

	if sig1 != sig2 {
		t.Errorf("signatures differ for identical input: %q vs %q", sig1, sig2)
	}
	if sig1 == "" {
		t.Errorf("signature empty, want base64 HMAC")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{"id":1001}`)
	sig := ComputeWebhookSignature(secret, body)

	tests := []struct {
		name      string
		secret    []byte
		body      []byte
		signature string
		want      bool
	}{
		{"valid", secret, body, sig, true},
		{"wrong_secret", []byte("other-secret"), body, sig, false},
		{"tampered_body", secret, []byte(`{"id":1002}`), sig, false},
		{"garbage_signature", secret, body, "bm90LWEtc2lnbmF0dXJl", false},
		{"empty_signature", secret, body, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifyWebhookSignature(tt.secret, tt.body, tt.signature)
			if got != tt.want {
				t.Errorf("VerifyWebhookSignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyWebhookSignature_EmptyBody(t *testing.T) {
	secret := []byte("webhook-secret")
	sig := ComputeWebhookSignature(secret, nil)

	if !VerifyWebhookSignature(secret, nil, sig) {
		t.Errorf("VerifyWebhookSignature() = false, want true (empty body signs consistently)")
	}
}
