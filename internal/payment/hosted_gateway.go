package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lunchbox-be/internal/logger"

	"go.uber.org/zap"
)

type hostedGateway struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	successURL    string
	cancelURL     string
	httpClient    *http.Client
}

type GatewayConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

func NewHostedGateway(cfg GatewayConfig) Gateway {
	if cfg.APIKey == "" {
		logger.L().Warn("processor API key is empty")
	}

	return &hostedGateway{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ----------------- CreateCustomer -----------------

func (g *hostedGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	log := logger.FromCtx(ctx).With(zap.String("email", email))

	body := map[string]interface{}{
		"email": email,
		"name":  name,
	}

	respBytes, err := g.post(ctx, "/v1/customers", body)
	if err != nil {
		log.Error("failed creating processor customer", zap.Error(err))
		return "", err
	}

	var res struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBytes, &res); err != nil {
		return "", err
	}

	log.Info("processor customer created", zap.String("customer_id", res.ID))
	return res.ID, nil
}

// ----------------- CreateCheckoutSession -----------------

func (g *hostedGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("reference_id", params.ReferenceID),
		zap.Float64("amount", params.Amount),
		zap.Int("line_count", len(params.Lines)),
	)

	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}

	successURL := params.SuccessURL
	if successURL == "" {
		successURL = g.successURL
	}
	cancelURL := params.CancelURL
	if cancelURL == "" {
		cancelURL = g.cancelURL
	}

	body := map[string]interface{}{
		"reference_id": params.ReferenceID,
		"amount":       params.Amount,
		"currency":     currency,
		"line_items":   params.Lines,
		"success_url":  successURL,
		"cancel_url":   cancelURL,
		"metadata":     params.Metadata,
	}
	if params.CustomerEmail != "" {
		body["customer_email"] = params.CustomerEmail
	}

	log.Info("requesting hosted checkout session")

	respBytes, err := g.post(ctx, "/v1/checkout/sessions", body)
	if err != nil {
		log.Error("hosted checkout session request failed", zap.Error(err))
		return nil, err
	}

	var res Session
	if err := json.Unmarshal(respBytes, &res); err != nil {
		log.Error("failed decoding processor response", zap.Error(err))
		return nil, err
	}

	log.Info("hosted checkout session created", zap.String("session_id", res.ID))
	return &res, nil
}

// ----------------- GetSessionStatus -----------------

func (g *hostedGateway) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	log := logger.FromCtx(ctx).With(zap.String("session_id", sessionID))

	url := fmt.Sprintf("%s/v1/checkout/sessions/%s", g.baseURL, sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("processor request failed", zap.Error(err))
		return nil, Retryable(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Retryable(fmt.Errorf("failed to read processor response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("processor returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, statusError(resp.StatusCode, bodyBytes)
	}

	var status SessionStatus
	if err := json.Unmarshal(bodyBytes, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// ----------------- VerifySignature -----------------

// VerifySignature checks the hex HMAC-SHA256 of the raw payload against the
// shared webhook secret. This is the trust boundary between an untrusted
// network call and privileged order creation.
func (g *hostedGateway) VerifySignature(payload []byte, signature string) error {
	if g.webhookSecret == "" {
		return nil // skip in dev
	}

	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// ----------------- helpers -----------------

func (g *hostedGateway) post(ctx context.Context, path string, body map[string]interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, Retryable(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Retryable(fmt.Errorf("failed to read processor response: %w", err))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError(resp.StatusCode, bodyBytes)
	}

	return bodyBytes, nil
}

// statusError wraps 5xx responses as retryable; 4xx responses are terminal.
func statusError(status int, body []byte) error {
	err := fmt.Errorf("processor error (%d): %s", status, string(body))
	if status >= 500 {
		return Retryable(err)
	}
	return err
}
