package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/herbadrink/storefront/internal/models"
	"github.com/herbadrink/storefront/internal/patterns"
)

// Client talks to the payment gateway's hosted Snap API. Outbound
// calls go through a circuit breaker and a bulkhead so a slow or
// down gateway cannot pile up checkout requests.
type Client struct {
	http        *resty.Client
	circuit     *patterns.CircuitBreakerWrapper
	bulkhead    *patterns.Bulkhead
	baseURL     string
	serverKey   string
	siteBaseURL string
}

// NewClient creates a gateway client. serverKey doubles as the Basic
// auth username per the gateway's API contract.
func NewClient(baseURL, serverKey, siteBaseURL string) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(patterns.DefaultTimeout).
			SetRetryCount(0), // No automatic retries, we handle via circuit breaker
		circuit:     patterns.NewCircuitBreaker("Gateway", "storefront"),
		bulkhead:    patterns.NewBulkhead(10, "gateway", "storefront"),
		baseURL:     baseURL,
		serverKey:   serverKey,
		siteBaseURL: siteBaseURL,
	}
}

// SnapTransaction is the hosted-payment handle returned by the gateway.
type SnapTransaction struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type snapRequest struct {
	TransactionDetails snapTransactionDetails `json:"transaction_details"`
	CustomerDetails    snapCustomerDetails    `json:"customer_details"`
	CreditCard         snapCreditCard         `json:"credit_card"`
	Callbacks          snapCallbacks          `json:"callbacks"`
}

type snapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapCustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type snapCreditCard struct {
	Secure bool `json:"secure"`
}

type snapCallbacks struct {
	Finish string `json:"finish"`
}

// CreateTransaction registers the order with the gateway and returns
// the Snap token and redirect URL the buyer is sent to.
func (cl *Client) CreateTransaction(order *models.Order) (*SnapTransaction, error) {
	req := snapRequest{
		TransactionDetails: snapTransactionDetails{
			OrderID:     order.ID,
			GrossAmount: order.TotalPrice,
		},
		CustomerDetails: snapCustomerDetails{
			FirstName: order.Name,
			Email:     order.Email,
			Phone:     order.Phone,
		},
		CreditCard: snapCreditCard{Secure: true},
		Callbacks:  snapCallbacks{Finish: cl.finishURL(order)},
	}

	var tx *SnapTransaction

	err := cl.bulkhead.Execute(func() error {
		result, cbErr := cl.circuit.Execute(func() (interface{}, error) {
			resp, httpErr := cl.http.R().
				SetHeader("Content-Type", "application/json").
				SetBasicAuth(cl.serverKey, "").
				SetBody(req).
				Post(cl.baseURL + "/snap/v1/transactions")

			if httpErr != nil {
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}

			if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
				return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode(), resp.String())
			}

			var snap SnapTransaction
			if err := json.Unmarshal(resp.Body(), &snap); err != nil {
				return nil, fmt.Errorf("failed to parse response: %w", err)
			}

			if snap.Token == "" {
				return nil, fmt.Errorf("gateway response missing token")
			}

			return &snap, nil
		})
		if cbErr != nil {
			return patterns.FormatError("Gateway", cbErr)
		}

		tx = result.(*SnapTransaction)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"amount":   order.TotalPrice,
	}).Info("Gateway transaction created")

	return tx, nil
}

// CircuitStatus returns the state of the gateway circuit breaker and
// bulkhead, for operators watching a flaky gateway.
func (cl *Client) CircuitStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"gateway_circuit": gin.H{
			"name":  "Gateway",
			"state": cl.circuit.GetState(),
			"value": cl.circuit.GetStateValue(),
		},
		"bulkhead": cl.bulkhead.GetName(),
	})
}

// finishURL builds the page the gateway redirects the buyer to after
// payment, carrying enough context for the my-orders page to look the
// order up again.
func (cl *Client) finishURL(order *models.Order) string {
	return fmt.Sprintf("%s/anon/my-orders?id=%s&name=%s&phone=%s",
		cl.siteBaseURL,
		url.QueryEscape(order.ID),
		url.QueryEscape(order.Name),
		url.QueryEscape(order.Phone),
	)
}
