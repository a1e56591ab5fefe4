package carrier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testPackage() model.Package {
	return model.Package{
		WeightKG:   1.2,
		Dimensions: model.Dimensions{Length: 30, Width: 20, Height: 10},
	}
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad", "", discardLogger()); err == nil {
		t.Fatal("expected error for unparsable url")
	}
	if _, err := NewHTTPClient("relative/path", "", discardLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
	if _, err := NewHTTPClient("https://carrier.example", "key", discardLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRatesSendsPackageAndDecodesQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rates" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		var req struct {
			OriginPostalCode      string  `json:"origin_postal_code"`
			DestinationPostalCode string  `json:"destination_postal_code"`
			WeightKG              float64 `json:"weight_kg"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.OriginPostalCode != "K1A 0A6" || req.DestinationPostalCode != "M5J 2N1" || req.WeightKG != 1.2 {
			t.Fatalf("unexpected request %+v", req)
		}
		w.Write([]byte(`{"rates":[{"service":"regular","price":"9.80"},{"service":"express","price":"14.10"}]}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "key", discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rates, err := client.Rates(context.Background(), "K1A 0A6", "M5J 2N1", testPackage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("expected two quotes, got %d", len(rates))
	}
	if rates[0].Service != "regular" || !rates[0].Price.Equal(decimal.RequireFromString("9.80")) {
		t.Fatalf("unexpected quote %+v", rates[0])
	}
}

func TestRatesEmptyQuoteListIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":[]}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "", discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := client.Rates(context.Background(), "K1A 0A6", "M5J 2N1", testPackage()); !errors.Is(err, domainErrors.ErrNoRates) {
		t.Fatalf("expected no rates error, got %v", err)
	}
}

func TestRatesReturnsDiagnosticCodeOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code":"SERVER_ERROR","message":"rate engine offline"}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "", discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = client.Rates(context.Background(), "K1A 0A6", "M5J 2N1", testPackage())
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected carrier error, got %v", err)
	}
	if ce.Code != "SERVER_ERROR" || ce.Message != "rate engine offline" {
		t.Fatalf("diagnostic lost: %+v", ce)
	}
}

func TestRatesFallsBackToHTTPStatusAsCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "", discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = client.Rates(context.Background(), "K1A 0A6", "M5J 2N1", testPackage())
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected carrier error, got %v", err)
	}
	if ce.Code != "502 Bad Gateway" {
		t.Fatalf("unexpected code %q", ce.Code)
	}
}
