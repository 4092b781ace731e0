package models

// PaymentNotification is the webhook payload delivered by the payment
// gateway. All fields are opaque strings; gross_amount keeps the exact
// decimal formatting the gateway produced because the signature is
// computed over the raw string. fraud_status only accompanies capture
// notifications and may be absent.
type PaymentNotification struct {
	OrderID           string `json:"order_id" binding:"required"`
	StatusCode        string `json:"status_code" binding:"required"`
	GrossAmount       string `json:"gross_amount" binding:"required"`
	SignatureKey      string `json:"signature_key" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	FraudStatus       string `json:"fraud_status"`
}

// WebhookResponse acknowledges a processed notification. RowBefore and
// RowAfter are the order snapshots around the status update, included
// for observability only.
type WebhookResponse struct {
	Message   string `json:"message"`
	NewStatus string `json:"new_status,omitempty"`
	RowBefore *Order `json:"row_before,omitempty"`
	RowAfter  *Order `json:"row_after,omitempty"`
}

// CreatePaymentRequest asks the gateway for a new Snap transaction for
// an existing order.
type CreatePaymentRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// CreatePaymentResponse returns the hosted-payment handle to the client.
type CreatePaymentResponse struct {
	Message     string `json:"message"`
	Token       string `json:"token,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}
