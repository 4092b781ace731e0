// Package orders exposes the storefront's order intake, lookup and
// payment-creation endpoints for anonymous buyers.
package orders

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/herbadrink/storefront/internal/gateway"
	"github.com/herbadrink/storefront/internal/metrics"
	"github.com/herbadrink/storefront/internal/models"
	"github.com/herbadrink/storefront/internal/store"
)

// PaymentGateway creates hosted-payment transactions for orders.
type PaymentGateway interface {
	CreateTransaction(order *models.Order) (*gateway.SnapTransaction, error)
}

// Handler holds the dependencies for the order endpoints.
type Handler struct {
	store   *store.Store
	gateway PaymentGateway
}

// New creates a Handler with the given store and gateway client.
func New(st *store.Store, gw PaymentGateway) *Handler {
	return &Handler{store: st, gateway: gw}
}

// CreateOrder handles POST /api/orders. Orders start in pending status;
// the webhook reconciler moves them forward once the gateway reports a
// transaction outcome.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.OrdersTotal.WithLabelValues("validation_failed").Inc()
		c.JSON(http.StatusBadRequest, models.CreateOrderResponse{
			Message: "Invalid request: " + err.Error(),
		})
		return
	}

	if len(req.Items) == 0 {
		metrics.OrdersTotal.WithLabelValues("validation_failed").Inc()
		c.JSON(http.StatusBadRequest, models.CreateOrderResponse{
			Message: "Order must contain at least one item",
		})
		return
	}

	orderID := fmt.Sprintf("anon-%s", uuid.New().String()[:8])
	order := &models.Order{
		ID:         orderID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		TotalPrice: req.TotalPrice,
		Status:     models.OrderStatusPending,
	}

	created, _, err := h.store.CreateOrder(order, req.Items)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("store_error").Inc()
		log.WithField("order_id", orderID).Error("Failed to persist order: ", err)
		c.JSON(http.StatusInternalServerError, models.CreateOrderResponse{
			Message: "Failed to create order",
		})
		return
	}

	metrics.OrdersTotal.WithLabelValues("created").Inc()

	log.WithFields(log.Fields{
		"order_id": orderID,
		"items":    len(req.Items),
		"total":    req.TotalPrice,
	}).Info("Order created")

	c.JSON(http.StatusOK, models.CreateOrderResponse{
		Success: true,
		Order:   created,
		Items:   req.Items,
	})
}

// GetOrder handles GET /api/orders/:orderId?email=|phone=. The contact
// must match what the order was placed with; an order id alone is not
// enough to read the order.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	contact := c.Query("email")
	if contact == "" {
		contact = c.Query("phone")
	}

	if orderID == "" || contact == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "order id and (email or phone) are required",
		})
		return
	}

	h.respondWithOrder(c, orderID, contact)
}

// TrackOrder handles POST /api/anon-order, the order-tracking form.
func (h *Handler) TrackOrder(c *gin.Context) {
	var req models.TrackOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "order id and contact are required",
		})
		return
	}

	h.respondWithOrder(c, req.ID, req.Contact)
}

func (h *Handler) respondWithOrder(c *gin.Context, orderID, contact string) {
	order, err := h.store.FindByContact(orderID, contact)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":    "Order not found or contact does not match",
				"order_id": orderID,
			})
			return
		}
		log.WithField("order_id", orderID).Error("Order lookup failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	items, err := h.store.Items(orderID)
	if err != nil {
		log.WithField("order_id", orderID).Error("Item lookup failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, models.OrderWithItems{Order: order, Items: items})
}

// CreatePayment handles POST /api/payment. It registers the order with
// the payment gateway and stores the returned Snap token and redirect
// URL on the order so the my-orders page can resume an unfinished
// payment.
func (h *Handler) CreatePayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.CreatePaymentResponse{
			Message: "Invalid request: " + err.Error(),
		})
		return
	}

	order, err := h.store.Get(req.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.CreatePaymentResponse{
				Message: "Order not found",
			})
			return
		}
		log.WithField("order_id", req.OrderID).Error("Order lookup failed: ", err)
		c.JSON(http.StatusInternalServerError, models.CreatePaymentResponse{
			Message: "Payment failed",
		})
		return
	}

	tx, err := h.gateway.CreateTransaction(order)
	if err != nil {
		log.WithField("order_id", order.ID).Error("Gateway transaction failed: ", err)
		c.JSON(http.StatusInternalServerError, models.CreatePaymentResponse{
			Message: "Payment failed",
		})
		return
	}

	if err := h.store.SetPaymentRef(order.ID, tx.Token, tx.RedirectURL); err != nil {
		log.WithField("order_id", order.ID).Error("Failed to store payment ref: ", err)
		c.JSON(http.StatusInternalServerError, models.CreatePaymentResponse{
			Message: "Payment failed",
		})
		return
	}

	metrics.PaymentAmount.Observe(float64(order.TotalPrice))

	c.JSON(http.StatusOK, models.CreatePaymentResponse{
		Message:     "Transaction created successfully",
		Token:       tx.Token,
		RedirectURL: tx.RedirectURL,
	})
}
