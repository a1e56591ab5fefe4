package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"
)

// Error carries the gateway's diagnostic payload for a non-2xx reply.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error: status %d: %s", e.StatusCode, e.Body)
}

// Wire types mirroring the gateway's order JSON.

type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Item struct {
	Name       string `json:"name"`
	SKU        string `json:"sku"`
	Quantity   string `json:"quantity"`
	UnitAmount Money  `json:"unit_amount"`
}

type Breakdown struct {
	ItemTotal *Money `json:"item_total,omitempty"`
	Shipping  *Money `json:"shipping,omitempty"`
	TaxTotal  *Money `json:"tax_total,omitempty"`
}

type Amount struct {
	CurrencyCode string     `json:"currency_code"`
	Value        string     `json:"value"`
	Breakdown    *Breakdown `json:"breakdown,omitempty"`
}

type Name struct {
	FullName string `json:"full_name"`
}

type Address struct {
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	AdminArea2   string `json:"admin_area_2"`
	AdminArea1   string `json:"admin_area_1"`
	PostalCode   string `json:"postal_code"`
	CountryCode  string `json:"country_code"`
}

type Shipping struct {
	Name    *Name    `json:"name,omitempty"`
	Address *Address `json:"address,omitempty"`
}

type PurchaseUnit struct {
	Items    []Item    `json:"items"`
	Amount   Amount    `json:"amount"`
	Shipping *Shipping `json:"shipping,omitempty"`
}

type Card struct {
	LastDigits string `json:"last_digits"`
}

type Wallet struct {
	EmailAddress string `json:"email_address"`
}

type PaymentSource struct {
	Card   *Card   `json:"card,omitempty"`
	Wallet *Wallet `json:"wallet,omitempty"`
}

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type Order struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
	PaymentSource *PaymentSource `json:"payment_source,omitempty"`
	Links         []Link         `json:"links"`
}

type CreateOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// API is the wire-level surface of the payment gateway.
type API interface {
	GetOrder(ctx context.Context, id string) (*Order, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	PatchOrder(ctx context.Context, id string, ops []PatchOp) error
	AuthorizeOrder(ctx context.Context, id string) (*Order, error)
}

// HTTPClient implements API against the gateway's checkout REST endpoints.
type HTTPClient struct {
	baseURL    *url.URL
	clientID   string
	secret     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a gateway client with a default timeout.
func NewHTTPClient(baseURL, clientID, secret string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL:  parsed,
		clientID: clientID,
		secret:   secret,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *HTTPClient) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, path.Join("/v2/checkout/orders", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) PatchOrder(ctx context.Context, id string, ops []PatchOp) error {
	return c.do(ctx, http.MethodPatch, path.Join("/v2/checkout/orders", id), ops, nil)
}

func (c *HTTPClient) AuthorizeOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, path.Join("/v2/checkout/orders", id, "authorize"), struct{}{}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, payload, out any) error {
	target := *c.baseURL
	target.Path = path.Join(target.Path, endpoint)

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode gateway request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.clientID, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		diagnostic, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway request failed",
			slog.String("method", method),
			slog.String("path", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(diagnostic)),
		)
		return &Error{StatusCode: resp.StatusCode, Body: string(diagnostic)}
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
