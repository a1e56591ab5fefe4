package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinalizedItem is a line item frozen at order time. Later catalog edits
// never alter it.
type FinalizedItem struct {
	ProductID   string
	VariantSKU  string
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// FinalizedOrder is the immutable persisted order record, created exactly
// once per gateway order. Only the Completed flag is ever updated after
// creation; records are never deleted.
type FinalizedOrder struct {
	ID             uuid.UUID
	GatewayOrderID string
	Items          []FinalizedItem
	Price          PriceBreakdown
	Customer       CustomerInfo
	Completed      bool
	CreatedAt      time.Time
}
