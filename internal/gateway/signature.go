package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"

	"github.com/herbadrink/storefront/internal/models"
)

// Signature computes the digest the gateway signs its notifications
// with: hex(sha512(order_id + status_code + gross_amount + serverKey)).
// The fields are concatenated as raw strings with no delimiter, exactly
// as the gateway does, so gross_amount must keep its original decimal
// formatting.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifyNotification reports whether the notification's signature_key
// matches the expected digest. This is the only authorization gate on
// the webhook endpoint. The comparison is constant-time.
func VerifyNotification(n *models.PaymentNotification, serverKey string) bool {
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return hmac.Equal([]byte(expected), []byte(n.SignatureKey))
}
