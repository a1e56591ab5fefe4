package gateway

import (
	"errors"
	"testing"

	domainErrors "github.com/quayside/storefront/internal/domain/errors"
)

func TestSKURoundTrip(t *testing.T) {
	composite, err := EncodeSKU("prod-17", "blue-xl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if composite != "prod-17~blue-xl" {
		t.Fatalf("unexpected composite %q", composite)
	}

	productID, variantSKU, err := DecodeSKU(composite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if productID != "prod-17" || variantSKU != "blue-xl" {
		t.Fatalf("round trip lost data: %q %q", productID, variantSKU)
	}
}

func TestEncodeSKURejectsBadParts(t *testing.T) {
	cases := []struct {
		name       string
		productID  string
		variantSKU string
	}{
		{"empty product", "", "blue"},
		{"empty variant", "prod", ""},
		{"delimiter in product", "pr~od", "blue"},
		{"delimiter in variant", "prod", "bl~ue"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := EncodeSKU(tc.productID, tc.variantSKU); !errors.Is(err, domainErrors.ErrMalformedSKU) {
				t.Fatalf("expected malformed SKU error, got %v", err)
			}
		})
	}
}

func TestDecodeSKUFailsClosed(t *testing.T) {
	for _, composite := range []string{"", "nodelimiter", "a~b~c", "~b", "a~"} {
		if _, _, err := DecodeSKU(composite); !errors.Is(err, domainErrors.ErrMalformedSKU) {
			t.Fatalf("%q: expected malformed SKU error, got %v", composite, err)
		}
	}
}
