// Package webhook reconciles asynchronous payment-gateway
// notifications onto persisted order state.
//
// The endpoint is machine-to-machine and has a single authorization
// gate: the gateway's signature over (order_id, status_code,
// gross_amount, server_key). Once a notification authenticates, the
// handler always acknowledges with 200, since the gateway only needs to
// know the delivery was processed, not whether a matching order existed.
// Redeliveries are expected; the status write is idempotent so
// processing the same notification twice converges on the same state.
package webhook

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/herbadrink/storefront/internal/gateway"
	"github.com/herbadrink/storefront/internal/metrics"
	"github.com/herbadrink/storefront/internal/models"
	"github.com/herbadrink/storefront/internal/store"
)

// OrderStore is the slice of the order store the reconciler consumes.
type OrderStore interface {
	Get(id string) (*models.Order, error)
	UpdateStatus(id, status string) (before, after *models.Order, rows int, err error)
}

// Reconciler handles gateway payment notifications.
type Reconciler struct {
	store     OrderStore
	serverKey string
}

// New creates a Reconciler. serverKey is the deployment-held shared
// secret used only for signature checks; it is never logged.
func New(st OrderStore, serverKey string) *Reconciler {
	return &Reconciler{store: st, serverKey: serverKey}
}

// HandleNotification processes one webhook delivery.
//
//	200 processed (including order-not-found and no-op updates)
//	400 malformed payload
//	403 signature mismatch
//	500 order store unavailable
func (r *Reconciler) HandleNotification(c *gin.Context) {
	var n models.PaymentNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		metrics.WebhookNotificationsTotal.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, models.WebhookResponse{
			Message: "Invalid notification payload",
		})
		return
	}

	if !gateway.VerifyNotification(&n, r.serverKey) {
		metrics.WebhookNotificationsTotal.WithLabelValues("invalid_signature").Inc()
		log.WithField("order_id", n.OrderID).Warn("Invalid webhook signature")
		c.JSON(http.StatusForbidden, models.WebhookResponse{
			Message: "Invalid signature",
		})
		return
	}

	newStatus := gateway.DeriveStatus(n.TransactionStatus, n.FraudStatus)

	log.WithFields(log.Fields{
		"order_id":           n.OrderID,
		"transaction_status": n.TransactionStatus,
		"fraud_status":       n.FraudStatus,
		"new_status":         newStatus,
	}).Info("Processing gateway notification")

	// Advisory pre-check only. The row may appear between this read and
	// the update, and the update tolerates a missing row anyway.
	before, err := r.store.Get(n.OrderID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			metrics.WebhookNotificationsTotal.WithLabelValues("store_error").Inc()
			log.WithField("order_id", n.OrderID).Error("Order lookup failed: ", err)
			c.JSON(http.StatusInternalServerError, models.WebhookResponse{
				Message: "Internal error",
			})
			return
		}
		log.WithField("order_id", n.OrderID).Warn("No order found for notification")
	}

	_, after, rows, err := r.store.UpdateStatus(n.OrderID, newStatus)
	if err != nil {
		metrics.WebhookNotificationsTotal.WithLabelValues("store_error").Inc()
		log.WithField("order_id", n.OrderID).Error("Order status update failed: ", err)
		c.JSON(http.StatusInternalServerError, models.WebhookResponse{
			Message: "Internal error",
		})
		return
	}

	metrics.WebhookNotificationsTotal.WithLabelValues("processed").Inc()

	log.WithFields(log.Fields{
		"order_id":   n.OrderID,
		"new_status": newStatus,
		"rows":       rows,
	}).Info("Webhook processed")

	c.JSON(http.StatusOK, models.WebhookResponse{
		Message:   "Webhook processed",
		NewStatus: newStatus,
		RowBefore: before,
		RowAfter:  after,
	})
}
