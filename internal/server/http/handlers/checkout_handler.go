package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
	"github.com/quayside/storefront/internal/server/http/dto"
)

// CheckoutHandler manages the checkout lifecycle endpoints.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Create handles POST /api/checkout/orders.
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Err: err.Error()})
		return
	}

	items := make([]model.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.LineItem{
			ProductID:  item.ProductID,
			VariantSKU: item.VariantSKU,
			Quantity:   item.Quantity,
		})
	}
	var dest *model.Address
	if req.Address != nil {
		addr := toAddress(*req.Address)
		dest = &addr
	}

	result, err := h.facade.CreateOrder(c.Request.Context(), items, dest, req.Express)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, dto.CreateOrderResponse{
		OrderID:     result.OrderID,
		Status:      string(result.Status),
		RedirectURL: result.RedirectURL,
	})
}

// Get handles GET /api/checkout/orders/:orderID. For a completed order it
// points the client at the confirmation view instead of a wizard stage.
func (h *CheckoutHandler) Get(c *gin.Context) {
	orderID := c.Param("orderID")

	order, stage, err := h.facade.Order(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrCheckoutCompleted) {
			respond(c, http.StatusOK, toOrderResponse(order, "completed"))
			return
		}
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, toOrderResponse(order, stage.String()))
}

// PatchAddress handles PATCH /api/checkout/orders/:orderID/address.
func (h *CheckoutHandler) PatchAddress(c *gin.Context) {
	orderID := c.Param("orderID")

	var req dto.PatchAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Err: err.Error()})
		return
	}

	breakdown, err := h.facade.UpdateAddress(c.Request.Context(), orderID, toAddress(req.Address), req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, toBreakdownResponse(breakdown))
}

// Finalize handles POST /api/checkout/orders/:orderID/finalize.
func (h *CheckoutHandler) Finalize(c *gin.Context) {
	orderID := c.Param("orderID")

	finalizedID, err := h.facade.Finalize(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, dto.FinalizeResponse{FinalizedOrderID: finalizedID.String()})
}

// Confirmation handles GET /api/checkout/orders/:orderID/confirmation.
func (h *CheckoutHandler) Confirmation(c *gin.Context) {
	orderID := c.Param("orderID")

	order, err := h.facade.Confirmation(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, toConfirmationResponse(order))
}
