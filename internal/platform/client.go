package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cia-labs/nischte-app/pkg/config"
	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

var errBaseURLRequired = errors.New("platform base url is required")

// Client wraps the shop-loyalty platform API: offers, payment sessions,
// orders, shops and device notifications. Responses are decoded into typed
// shapes at this boundary; nothing loosely typed escapes the package.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the platform client from configuration.
func NewClient(cfg config.PlatformConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// EligibleOffers asks which of the candidate offer ids are currently
// eligible. Eligibility is entirely a server decision.
func (c *Client) EligibleOffers(ctx context.Context, token string, offerIDs []string) ([]EligibleOffer, error) {
	payload := map[string]any{"offerIds": offerIDs}
	var resp eligibleResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/offer/eligible", token, payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "offer eligibility lookup rejected")
	}
	return resp.ApplicableOffers, nil
}

// OfferDetails fetches full descriptions for the given offer ids. The
// platform expects the ids comma-joined in a single query parameter.
func (c *Client) OfferDetails(ctx context.Context, token string, offerIDs []string) ([]OfferRecord, error) {
	path := "/api/v1/offer/applicable?offerId=" + url.QueryEscape(strings.Join(offerIDs, ","))
	var resp offerDetailsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Offers, nil
}

// InitiatePayment asks the gateway for a payment session for the given amount.
func (c *Client) InitiatePayment(ctx context.Context, token string, amount decimal.Decimal, now time.Time) (*PaymentSession, error) {
	payload := initiateRequest{
		Amount:    json.Number(amount.String()),
		Timestamp: now.UnixMilli(),
	}
	var resp initiateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/payment/initiate", token, payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, upstreamMessage(resp.Message, "payment initiation failed"))
	}
	if strings.TrimSpace(resp.MerchantTransactionID) == "" || strings.TrimSpace(resp.RedirectURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment initiation response missing transaction id or redirect url")
	}
	return &PaymentSession{
		MerchantTransactionID: resp.MerchantTransactionID,
		Data:                  resp.Data,
		RedirectURL:           resp.RedirectURL,
	}, nil
}

// ValidatePayment confirms the gateway settled the given transaction.
func (c *Client) ValidatePayment(ctx context.Context, token, transactionID string) error {
	path := "/api/v1/payment/validate/" + url.PathEscape(transactionID)
	var resp validateResponse
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return pkgerrors.New(pkgerrors.CodeStateConflict, upstreamMessage(resp.Message, "payment validation failed"))
	}
	return nil
}

// CreateOrder submits the order summary plus the settled transaction id.
func (c *Client) CreateOrder(ctx context.Context, token string, summary any, transactionID string) (*CreatedOrder, error) {
	payload, err := mergeTransactionID(summary, transactionID)
	if err != nil {
		return nil, err
	}
	var resp createOrderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/order/create", token, payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, upstreamMessage(resp.Message, "order creation failed"))
	}
	return resp.Order, nil
}

// GetShop resolves a shop to its owner.
func (c *Client) GetShop(ctx context.Context, token, shopID string) (*Shop, error) {
	path := "/api/v1/shop/" + url.PathEscape(shopID)
	var resp shopResponse
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Shop == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return resp.Shop, nil
}

// GetDeviceToken looks up the push-notification token registered for a user.
// An empty token with a nil error means the user has no registered device.
func (c *Client) GetDeviceToken(ctx context.Context, token, userID string) (string, error) {
	path := "/api/v1/user/fcmToken/" + url.PathEscape(userID)
	var resp fcmTokenResponse
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", nil
	}
	return resp.FCMToken, nil
}

// SendNotification pushes a title/body pair to the given device token.
func (c *Client) SendNotification(ctx context.Context, token, deviceToken, title, body string) error {
	payload := notificationRequest{FCMToken: deviceToken, Title: title, Body: body}
	return c.doJSON(ctx, http.MethodPost, "/api/v1/u/notifications/send", token, payload, &struct{}{})
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "platform client not configured")
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal platform request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build platform request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute platform request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"platform request failed",
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode platform response")
	}
	return nil
}

// mergeTransactionID flattens the summary and the transaction id into one
// JSON object, matching the order-creation contract.
func mergeTransactionID(summary any, transactionID string) (map[string]json.RawMessage, error) {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order summary")
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flatten order summary")
	}
	txn, err := json.Marshal(transactionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode transaction id")
	}
	merged["transactionId"] = txn
	return merged, nil
}

func upstreamMessage(message, fallback string) string {
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		return trimmed
	}
	return fallback
}
