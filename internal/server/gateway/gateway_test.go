package gateway

import (
	"testing"
)

func TestVerifySignature_MatchesKnownVector(t *testing.T) {
	t.Parallel()

	secret := []byte("shared-secret")
	sig := Signature("order_abc", "pay_1", secret)

	if !VerifySignature("order_abc", "pay_1", sig, secret) {
		t.Fatalf("expected signature %q to verify", sig)
	}
}

func TestVerifySignature_RejectsTamperedInputs(t *testing.T) {
	t.Parallel()

	secret := []byte("shared-secret")
	sig := Signature("order_abc", "pay_1", secret)

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
	}{
		{"wrong order", "order_xyz", "pay_1", sig},
		{"wrong payment", "order_abc", "pay_2", sig},
		{"garbage signature", "order_abc", "pay_1", "deadbeef"},
		{"empty signature", "order_abc", "pay_1", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if VerifySignature(tc.orderID, tc.paymentID, tc.signature, secret) {
				t.Fatalf("signature unexpectedly verified")
			}
		})
	}
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	t.Parallel()

	sig := Signature("order_abc", "pay_1", []byte("right"))
	if VerifySignature("order_abc", "pay_1", sig, []byte("wrong")) {
		t.Fatalf("signature verified under the wrong secret")
	}
}
