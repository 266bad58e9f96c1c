// File: internal/infra/payment/portone_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/ports/adapter"
)

// PortOneGateway implements the PaymentGateway port with direct HTTP calls
// against the PortOne REST API. It keeps no state beyond the cached access
// token; a checkout the buyer abandons simply never returns a receipt.
type PortOneGateway struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPortOneGateway(apiKey, apiSecret, baseURL string, sandbox bool) *PortOneGateway {
	if baseURL == "" {
		baseURL = "https://api.iamport.kr"
		if sandbox {
			baseURL = "https://sandbox.api.iamport.kr"
		}
	}
	return &PortOneGateway{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *PortOneGateway) Name() string { return "portone" }

type tokenResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Response struct {
		AccessToken string `json:"access_token"`
		ExpiredAt   int64  `json:"expired_at"`
	} `json:"response"`
}

type chargeResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Response struct {
		Success       bool   `json:"success"`
		TransactionID string `json:"transaction_id"`
		PaidAmount    int64  `json:"paid_amount"`
		ErrorCode     string `json:"error_code"`
		ErrorMessage  string `json:"error_message"`
	} `json:"response"`
}

type refundResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Response struct {
		Success bool `json:"success"`
	} `json:"response"`
}

// token returns a valid access token, fetching one on first use or after
// expiry. Bootstrap is idempotent under the mutex.
func (g *PortOneGateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.accessToken != "" && time.Now().Before(g.tokenExpiry.Add(-30*time.Second)) {
		return g.accessToken, nil
	}

	body := map[string]string{"imp_key": g.apiKey, "imp_secret": g.apiSecret}
	var out tokenResponse
	if err := g.post(ctx, "/users/getToken", "", body, &out); err != nil {
		return "", err
	}
	if out.Code != 0 || out.Response.AccessToken == "" {
		return "", &domain.GatewayError{Code: fmt.Sprintf("auth_%d", out.Code), Message: out.Message}
	}
	g.accessToken = out.Response.AccessToken
	g.tokenExpiry = time.Unix(out.Response.ExpiredAt, 0)
	return g.accessToken, nil
}

func (g *PortOneGateway) Charge(ctx context.Context, req adapter.ChargeRequest) (adapter.Receipt, error) {
	tok, err := g.token(ctx)
	if err != nil {
		return adapter.Receipt{}, err
	}

	body := map[string]interface{}{
		"merchant_uid": req.MerchantOrderID,
		"amount":       req.Amount,
		"currency":     req.Currency,
		"buyer_name":   req.BuyerName,
		"buyer_email":  req.BuyerEmail,
		"buyer_tel":    req.BuyerPhone,
	}
	if req.Metadata != nil {
		body["custom_data"] = req.Metadata
	}

	var out chargeResponse
	if err := g.post(ctx, "/payments/onetime", tok, body, &out); err != nil {
		return adapter.Receipt{}, err
	}
	if out.Code != 0 {
		return adapter.Receipt{}, &domain.GatewayError{Code: fmt.Sprintf("gw_%d", out.Code), Message: out.Message}
	}
	if !out.Response.Success {
		return adapter.Receipt{}, &domain.GatewayError{Code: out.Response.ErrorCode, Message: out.Response.ErrorMessage}
	}
	return adapter.Receipt{
		TransactionID: out.Response.TransactionID,
		OrderNumber:   req.MerchantOrderID,
		PaidAmount:    out.Response.PaidAmount,
	}, nil
}

func (g *PortOneGateway) Refund(ctx context.Context, transactionID string, amount int64, reason string) error {
	tok, err := g.token(ctx)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"transaction_id": transactionID,
		"amount":         amount,
		"reason":         reason,
	}
	var out refundResponse
	if err := g.post(ctx, "/payments/cancel", tok, body, &out); err != nil {
		return err
	}
	if out.Code != 0 || !out.Response.Success {
		return &domain.GatewayError{Code: fmt.Sprintf("refund_%d", out.Code), Message: out.Message}
	}
	return nil
}

func (g *PortOneGateway) post(ctx context.Context, path, token string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return &domain.GatewayError{Code: "network", Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.GatewayError{Code: "read_body", Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.GatewayError{Code: fmt.Sprintf("http_%d", resp.StatusCode), Message: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.GatewayError{Code: "decode", Message: fmt.Sprintf("%v, body: %s", err, string(raw))}
	}
	return nil
}
