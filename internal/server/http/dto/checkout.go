package dto

import "time"

// Envelope is the uniform response wrapper; exactly one of Res or Err is
// populated.
type Envelope struct {
	Res any    `json:"res,omitempty"`
	Err string `json:"err,omitempty"`
}

type LineItemPayload struct {
	ProductID  string `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
}

type AddressPayload struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	Region     string `json:"region" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

type CreateOrderRequest struct {
	Items   []LineItemPayload `json:"items" binding:"required,min=1,dive"`
	Address *AddressPayload   `json:"address"`
	Express bool              `json:"express"`
}

type CreateOrderResponse struct {
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type PatchAddressRequest struct {
	FullName string         `json:"full_name" binding:"required"`
	Address  AddressPayload `json:"address" binding:"required"`
}

type PriceBreakdownResponse struct {
	Subtotal string  `json:"subtotal"`
	Shipping *string `json:"shipping,omitempty"`
	Tax      *string `json:"tax,omitempty"`
	Total    string  `json:"total"`
}

type CustomerResponse struct {
	FullName      string          `json:"full_name,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Address       *AddressPayload `json:"address,omitempty"`
}

type OrderResponse struct {
	OrderID  string                 `json:"order_id"`
	Status   string                 `json:"status"`
	Stage    string                 `json:"stage"`
	Items    []LineItemPayload      `json:"items"`
	Customer CustomerResponse       `json:"customer"`
	Price    PriceBreakdownResponse `json:"price"`
}

type FinalizeResponse struct {
	FinalizedOrderID string `json:"finalized_order_id"`
}

type ConfirmationItemResponse struct {
	ProductID   string `json:"product_id"`
	VariantSKU  string `json:"variant_sku"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

type ConfirmationResponse struct {
	OrderID        string                     `json:"order_id"`
	GatewayOrderID string                     `json:"gateway_order_id"`
	Completed      bool                       `json:"completed"`
	Items          []ConfirmationItemResponse `json:"items"`
	Customer       CustomerResponse           `json:"customer"`
	Price          PriceBreakdownResponse     `json:"price"`
	CreatedAt      time.Time                  `json:"created_at"`
}
