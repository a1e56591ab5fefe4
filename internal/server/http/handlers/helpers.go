package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quayside/storefront/internal/adapter/carrier"
	"github.com/quayside/storefront/internal/adapter/gateway"
	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
	"github.com/quayside/storefront/internal/server/http/dto"
)

func respond(c *gin.Context, status int, res any) {
	c.JSON(status, dto.Envelope{Res: res})
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), dto.Envelope{Err: err.Error()})
}

// statusFor maps the error taxonomy to HTTP statuses: validation errors are
// 4xx and never retried, upstream gateway/carrier failures surface as 502
// with the diagnostic attached, state errors are conflicts.
func statusFor(err error) int {
	var gatewayErr *gateway.Error
	var carrierErr *carrier.Error

	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrInvalidLineItem),
		errors.Is(err, domainErrors.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrUnsupportedRegion),
		errors.Is(err, domainErrors.ErrMalformedSKU):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrInsufficientStock),
		errors.Is(err, domainErrors.ErrOrderNotApproved),
		errors.Is(err, domainErrors.ErrIncompleteCheckoutState),
		errors.Is(err, domainErrors.ErrDuplicateOrder),
		errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrCheckoutCompleted):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrNoRates),
		errors.Is(err, domainErrors.ErrMissingApproveLink),
		errors.As(err, &gatewayErr),
		errors.As(err, &carrierErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toAddress(payload dto.AddressPayload) model.Address {
	return model.Address{
		Line1:      payload.Line1,
		Line2:      payload.Line2,
		City:       payload.City,
		Region:     payload.Region,
		PostalCode: payload.PostalCode,
		Country:    payload.Country,
	}
}

func toAddressPayload(addr model.Address) *dto.AddressPayload {
	if !addr.Valid() {
		return nil
	}
	return &dto.AddressPayload{
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		Region:     addr.Region,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func toBreakdownResponse(price model.PriceBreakdown) dto.PriceBreakdownResponse {
	response := dto.PriceBreakdownResponse{
		Subtotal: price.Subtotal.StringFixed(2),
		Total:    price.Total.StringFixed(2),
	}
	if price.Shipping != nil {
		shipping := price.Shipping.StringFixed(2)
		response.Shipping = &shipping
	}
	if price.Tax != nil {
		tax := price.Tax.StringFixed(2)
		response.Tax = &tax
	}
	return response
}

func toOrderResponse(order *model.GatewayOrder, stage string) dto.OrderResponse {
	items := make([]dto.LineItemPayload, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		items = append(items, dto.LineItemPayload{
			ProductID:  item.ProductID,
			VariantSKU: item.VariantSKU,
			Quantity:   item.Quantity,
		})
	}
	return dto.OrderResponse{
		OrderID: order.ID,
		Status:  string(order.Status),
		Stage:   stage,
		Items:   items,
		Customer: dto.CustomerResponse{
			FullName:      order.Customer.FullName,
			PaymentMethod: string(order.Customer.PaymentMethod),
			Address:       toAddressPayload(order.Customer.Address),
		},
		Price: toBreakdownResponse(order.Price),
	}
}

func toConfirmationResponse(order *model.FinalizedOrder) dto.ConfirmationResponse {
	items := make([]dto.ConfirmationItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.ConfirmationItemResponse{
			ProductID:   item.ProductID,
			VariantSKU:  item.VariantSKU,
			Name:        item.Name,
			Description: item.Description,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Quantity:    item.Quantity,
		})
	}
	return dto.ConfirmationResponse{
		OrderID:        order.ID.String(),
		GatewayOrderID: order.GatewayOrderID,
		Completed:      order.Completed,
		Items:          items,
		Customer: dto.CustomerResponse{
			FullName:      order.Customer.FullName,
			PaymentMethod: string(order.Customer.PaymentMethod),
			Address:       toAddressPayload(order.Customer.Address),
		},
		Price:     toBreakdownResponse(order.Price),
		CreatedAt: order.CreatedAt,
	}
}
