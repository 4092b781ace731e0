package models

import "time"

// Address holds the optional delivery location captured at checkout.
type Address struct {
	Desc string  `json:"desc,omitempty"`
	Long float64 `json:"long,omitempty"`
	Lang float64 `json:"lang,omitempty"`
}

// OrderItem represents one line item of an order.
type OrderItem struct {
	OrderID   string `json:"order_id"`
	VariantID int    `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Price     int64  `json:"price" binding:"required,gt=0"`
}

// Order represents an anonymous buyer's order. TotalPrice is in whole
// Rupiah. Status values beyond the four constants below may appear from
// other write paths and are passed through unchanged.
type Order struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Address            *Address  `json:"address,omitempty"`
	TotalPrice         int64     `json:"total_price"`
	Status             string    `json:"status"`
	PaymentToken       string    `json:"payment_token,omitempty"`
	PaymentRedirectURL string    `json:"payment_redirect_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// OrderStatus constants
const (
	OrderStatusPending  = "pending"
	OrderStatusPaid     = "paid"
	OrderStatusFailed   = "failed"
	OrderStatusComplete = "complete"
)

// TerminalStatus reports whether a status must not be regressed back to
// pending by a gateway notification.
func TerminalStatus(status string) bool {
	switch status {
	case OrderStatusPaid, OrderStatusFailed, OrderStatusComplete:
		return true
	}
	return false
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	Name       string      `json:"name" binding:"required"`
	Email      string      `json:"email" binding:"required,email"`
	Phone      string      `json:"phone"`
	Address    *Address    `json:"address"`
	Items      []OrderItem `json:"items" binding:"required,dive"`
	TotalPrice int64       `json:"total_price" binding:"required,gt=0"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	Success bool        `json:"success"`
	Order   *Order      `json:"order,omitempty"`
	Items   []OrderItem `json:"items,omitempty"`
	Message string      `json:"message,omitempty"`
}

// TrackOrderRequest looks up an order by id plus a matching contact
// (email or phone).
type TrackOrderRequest struct {
	ID      string `json:"id" binding:"required"`
	Contact string `json:"contact" binding:"required"`
}

// OrderWithItems is returned by the lookup endpoints.
type OrderWithItems struct {
	Order *Order      `json:"order"`
	Items []OrderItem `json:"items"`
}
