//go:build !integration

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/ports/adapter"
)

// fakePortOne is an httptest stand-in for the PortOne REST API.
type fakePortOne struct {
	t          *testing.T
	tokenCalls int
	charge     func(body map[string]interface{}) interface{}
	refund     func(body map[string]interface{}) interface{}
}

func (f *fakePortOne) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/getToken", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++
		writeBody(w, map[string]interface{}{
			"code": 0,
			"response": map[string]interface{}{
				"access_token": "test-token",
				"expired_at":   time.Now().Add(time.Hour).Unix(),
			},
		})
	})
	mux.HandleFunc("/payments/onetime", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			f.t.Errorf("unexpected Authorization header %q", got)
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeBody(w, f.charge(body))
	})
	mux.HandleFunc("/payments/cancel", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeBody(w, f.refund(body))
	})
	return mux
}

func writeBody(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestPortOneGateway_Charge(t *testing.T) {
	ctx := context.Background()

	t.Run("should return a receipt on a settled charge", func(t *testing.T) {
		fake := &fakePortOne{t: t}
		fake.charge = func(body map[string]interface{}) interface{} {
			if body["merchant_uid"] != "SEM202603141234561a2b" {
				t.Errorf("unexpected merchant_uid %v", body["merchant_uid"])
			}
			if body["currency"] != "KRW" {
				t.Errorf("unexpected currency %v", body["currency"])
			}
			return map[string]interface{}{
				"code": 0,
				"response": map[string]interface{}{
					"success":        true,
					"transaction_id": "imp-99887766",
					"paid_amount":    50000,
				},
			}
		}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		g := NewPortOneGateway("key", "secret", srv.URL, false)
		receipt, err := g.Charge(ctx, adapter.ChargeRequest{
			MerchantOrderID: "SEM202603141234561a2b",
			Amount:          50000,
			Currency:        "KRW",
			BuyerName:       "Acme Labs",
		})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if receipt.TransactionID != "imp-99887766" {
			t.Errorf("unexpected transaction id %q", receipt.TransactionID)
		}
		if receipt.PaidAmount != 50000 {
			t.Errorf("unexpected paid amount %d", receipt.PaidAmount)
		}
	})

	t.Run("should surface a decline as a GatewayError", func(t *testing.T) {
		fake := &fakePortOne{t: t}
		fake.charge = func(map[string]interface{}) interface{} {
			return map[string]interface{}{
				"code": 0,
				"response": map[string]interface{}{
					"success":       false,
					"error_code":    "card_declined",
					"error_message": "insufficient funds",
				},
			}
		}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		g := NewPortOneGateway("key", "secret", srv.URL, false)
		_, err := g.Charge(ctx, adapter.ChargeRequest{MerchantOrderID: "o-1", Amount: 100})
		var ge *domain.GatewayError
		if !errors.As(err, &ge) {
			t.Fatalf("expected a GatewayError, got %v", err)
		}
		if ge.Code != "card_declined" {
			t.Errorf("expected code card_declined, got %q", ge.Code)
		}
	})

	t.Run("should reuse the cached token across calls", func(t *testing.T) {
		fake := &fakePortOne{t: t}
		fake.charge = func(map[string]interface{}) interface{} {
			return map[string]interface{}{
				"code": 0,
				"response": map[string]interface{}{
					"success": true, "transaction_id": "imp-1", "paid_amount": 1,
				},
			}
		}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		g := NewPortOneGateway("key", "secret", srv.URL, false)
		for i := 0; i < 3; i++ {
			if _, err := g.Charge(ctx, adapter.ChargeRequest{MerchantOrderID: "o-1", Amount: 1}); err != nil {
				t.Fatalf("charge %d failed: %v", i, err)
			}
		}
		if fake.tokenCalls != 1 {
			t.Errorf("expected a single token fetch, got %d", fake.tokenCalls)
		}
	})

	t.Run("should map a network failure to a GatewayError", func(t *testing.T) {
		g := NewPortOneGateway("key", "secret", "http://127.0.0.1:1", false)
		_, err := g.Charge(ctx, adapter.ChargeRequest{MerchantOrderID: "o-1", Amount: 1})
		var ge *domain.GatewayError
		if !errors.As(err, &ge) {
			t.Fatalf("expected a GatewayError, got %v", err)
		}
		if ge.Code != "network" {
			t.Errorf("expected code network, got %q", ge.Code)
		}
	})
}

func TestPortOneGateway_Refund(t *testing.T) {
	ctx := context.Background()

	t.Run("should cancel the transaction", func(t *testing.T) {
		fake := &fakePortOne{t: t}
		fake.refund = func(body map[string]interface{}) interface{} {
			if body["transaction_id"] != "imp-1" {
				t.Errorf("unexpected transaction_id %v", body["transaction_id"])
			}
			return map[string]interface{}{
				"code":     0,
				"response": map[string]interface{}{"success": true},
			}
		}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		g := NewPortOneGateway("key", "secret", srv.URL, false)
		if err := g.Refund(ctx, "imp-1", 50000, "rejected"); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
	})

	t.Run("should surface a failed cancel", func(t *testing.T) {
		fake := &fakePortOne{t: t}
		fake.refund = func(map[string]interface{}) interface{} {
			return map[string]interface{}{
				"code":     1,
				"message":  "already cancelled",
				"response": map[string]interface{}{"success": false},
			}
		}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		g := NewPortOneGateway("key", "secret", srv.URL, false)
		err := g.Refund(ctx, "imp-1", 50000, "rejected")
		var ge *domain.GatewayError
		if !errors.As(err, &ge) {
			t.Fatalf("expected a GatewayError, got %v", err)
		}
	})
}
