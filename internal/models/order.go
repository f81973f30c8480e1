package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the order lifecycle state. Completed is terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusCompleted OrderStatus = "completed"
)

// PaymentMode selects how an order settles: externally in cash, or through
// the internal wallet ledger at completion.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentWallet PaymentMode = "wallet"
)

// Valid reports whether m is a known payment mode.
func (m PaymentMode) Valid() bool {
	return m == PaymentCash || m == PaymentWallet
}

type Order struct {
	ID            uuid.UUID   `json:"id"`
	CustomerID    uuid.UUID   `json:"customer_id"`
	CustomerName  string      `json:"customer_name"`
	Service       string      `json:"service"`
	PickupAddress string      `json:"pickup_address"`
	DropAddress   string      `json:"drop_address"`
	City          string      `json:"city"` // customer's city at placement; candidate matching key
	Status        OrderStatus `json:"status"`
	ProID         *uuid.UUID  `json:"pro_id,omitempty"` // set iff status != pending
	Amount        int         `json:"amount"`           // settlement amount, set at completion
	PaymentMode   PaymentMode `json:"payment_mode"`
	CustLat       float64     `json:"cust_lat"`
	CustLng       float64     `json:"cust_lng"`
	Rating        int         `json:"rating,omitempty"` // 1..5, 0 while unrated
	Feedback      string      `json:"feedback,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
