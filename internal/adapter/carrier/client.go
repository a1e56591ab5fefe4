package carrier

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

	"github.com/shopspring/decimal"

	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
)

// Error carries the carrier's diagnostic code for a failed quote.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("carrier unavailable: %s: %s", e.Code, e.Message)
}

// Rate is a single service quote for one package.
type Rate struct {
	Service string
	Price   decimal.Decimal
}

// Client quotes shipping rates with the carrier.
type Client interface {
	Rates(ctx context.Context, originPostal, destinationPostal string, pkg model.Package) ([]Rate, error)
}

// HTTPClient implements Client via the carrier's rate-quote API.
type HTTPClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a carrier client with a default timeout.
func NewHTTPClient(baseURL, apiKey string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse carrier url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("carrier url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type rateRequest struct {
	OriginPostalCode      string  `json:"origin_postal_code"`
	DestinationPostalCode string  `json:"destination_postal_code"`
	WeightKG              float64 `json:"weight_kg"`
	LengthCM              float64 `json:"length_cm"`
	WidthCM               float64 `json:"width_cm"`
	HeightCM              float64 `json:"height_cm"`
}

type rateResponse struct {
	Rates []struct {
		Service string `json:"service"`
		Price   string `json:"price"`
	} `json:"rates"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Rates quotes every available service for a single package. An empty quote
// list on a successful reply is an error; the price engine never works with
// a partial answer.
func (c *HTTPClient) Rates(ctx context.Context, originPostal, destinationPostal string, pkg model.Package) ([]Rate, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/rates")

	payload, err := json.Marshal(rateRequest{
		OriginPostalCode:      originPostal,
		DestinationPostalCode: destinationPostal,
		WeightKG:              pkg.WeightKG,
		LengthCM:              pkg.Dimensions.Length,
		WidthCM:               pkg.Dimensions.Width,
		HeightCM:              pkg.Dimensions.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("encode rate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var diag errorResponse
		_ = json.Unmarshal(body, &diag)
		if diag.Code == "" {
			diag.Code = resp.Status
		}
		c.logger.Error("carrier request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("code", diag.Code),
			slog.String("message", diag.Message),
		)
		return nil, &Error{Code: diag.Code, Message: diag.Message}
	}

	var data rateResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode carrier response: %w", err)
	}
	if len(data.Rates) == 0 {
		return nil, domainErrors.ErrNoRates
	}

	rates := make([]Rate, 0, len(data.Rates))
	for _, r := range data.Rates {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return nil, fmt.Errorf("parse rate %q for service %s: %w", r.Price, r.Service, err)
		}
		rates = append(rates, Rate{Service: r.Service, Price: price})
	}
	return rates, nil
}
