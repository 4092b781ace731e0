package gateway

import "github.com/herbadrink/storefront/internal/models"

// Gateway transaction_status values with a local meaning. Anything
// else falls through to pending.
const (
	TxStatusCapture    = "capture"
	TxStatusSettlement = "settlement"
	TxStatusCancel     = "cancel"
	TxStatusDeny       = "deny"
	TxStatusExpire     = "expire"

	FraudAccept = "accept"
)

// DeriveStatus maps a gateway (transaction_status, fraud_status) pair
// onto the local order status. Pure function; no other notification
// field influences the result.
//
//	settlement            -> paid
//	capture + accept      -> paid
//	cancel, deny, expire  -> failed
//	anything else         -> pending (includes capture under challenge)
func DeriveStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case TxStatusSettlement:
		return models.OrderStatusPaid
	case TxStatusCapture:
		if fraudStatus == FraudAccept {
			return models.OrderStatusPaid
		}
		return models.OrderStatusPending
	case TxStatusCancel, TxStatusDeny, TxStatusExpire:
		return models.OrderStatusFailed
	default:
		return models.OrderStatusPending
	}
}
