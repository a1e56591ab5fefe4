package gateway

import (
	"fmt"
	"strings"

	domainErrors "github.com/quayside/storefront/internal/domain/errors"
)

// SKUDelimiter joins a product id and a variant SKU into the single flat
// identifier field the gateway accepts per item. Encode and decode are kept
// together so the pair stays an exact inverse.
const SKUDelimiter = "~"

// EncodeSKU builds the composite SKU sent to the gateway. It rejects parts
// that are empty or contain the delimiter, so DecodeSKU can never be
// ambiguous.
func EncodeSKU(productID, variantSKU string) (string, error) {
	if productID == "" || variantSKU == "" {
		return "", fmt.Errorf("%w: empty part", domainErrors.ErrMalformedSKU)
	}
	if strings.Contains(productID, SKUDelimiter) || strings.Contains(variantSKU, SKUDelimiter) {
		return "", fmt.Errorf("%w: part contains delimiter %q", domainErrors.ErrMalformedSKU, SKUDelimiter)
	}
	return productID + SKUDelimiter + variantSKU, nil
}

// DecodeSKU is the exact inverse of EncodeSKU. It fails closed when the
// delimiter is absent or appears more than once; a malformed SKU indicates
// cross-system corruption and must never be dropped silently.
func DecodeSKU(composite string) (productID, variantSKU string, err error) {
	parts := strings.Split(composite, SKUDelimiter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", domainErrors.ErrMalformedSKU, composite)
	}
	return parts[0], parts[1], nil
}
