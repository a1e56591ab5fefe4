package model

// GatewayOrderStatus describes the payment gateway's order lifecycle.
type GatewayOrderStatus string

const (
	GatewayOrderCreated   GatewayOrderStatus = "CREATED"
	GatewayOrderApproved  GatewayOrderStatus = "APPROVED"
	GatewayOrderCompleted GatewayOrderStatus = "COMPLETED"
)

// GatewayOrder is the payment gateway's view of a checkout in progress.
// It is the single source of truth for the wizard stage; there is no
// separate checkout session state anywhere in this system.
type GatewayOrder struct {
	ID        string
	Status    GatewayOrderStatus
	LineItems []LineItem
	Customer  CustomerInfo
	Price     PriceBreakdown
	Links     map[string]string
}
