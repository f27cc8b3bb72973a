package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPix        = "PIX"
	PaymentCash       = "CASH"
	PaymentCreditCard = "CREDIT_CARD"
)

const (
	OrderPending    = "PENDING"
	OrderProcessing = "PROCESSING"
	OrderCompleted  = "COMPLETED"
	OrderCancelled  = "CANCELLED"
)

// Order is a checkout-originated purchase intent. CustomerRG and
// CustomerPhone are stored digits-only.
type Order struct {
	ID            string    `json:"id" bson:"_id" gorm:"primaryKey"`
	CarID         string    `json:"carId" bson:"car_id"`
	CustomerName  string    `json:"customerName" bson:"customer_name"`
	CustomerRG    string    `json:"customerRg" bson:"customer_rg"`
	CustomerPhone string    `json:"customerPhone" bson:"customer_phone" gorm:"index"`
	PaymentMethod string    `json:"paymentMethod" bson:"payment_method"`
	Installments  int       `json:"installments" bson:"installments"`
	SelectedColor string    `json:"selectedColor" bson:"selected_color"`
	TotalPrice    float64   `json:"totalPrice" bson:"total_price"`
	Status        string    `json:"status" bson:"status"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

func NewOrder(carID, customerName, customerRG, customerPhone, paymentMethod, selectedColor string, installments int, totalPrice float64) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:            "order-" + uuid.NewString(),
		CarID:         carID,
		CustomerName:  customerName,
		CustomerRG:    customerRG,
		CustomerPhone: customerPhone,
		PaymentMethod: paymentMethod,
		Installments:  installments,
		SelectedColor: selectedColor,
		TotalPrice:    totalPrice,
		Status:        OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NormalizePaymentMethod maps the historical Portuguese values onto the
// current enum. Unknown values are returned as-is for validation to reject.
func NormalizePaymentMethod(m string) string {
	switch m {
	case "DINHEIRO":
		return PaymentCash
	case "CARTAO_CREDITO":
		return PaymentCreditCard
	}
	return m
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentPix, PaymentCash, PaymentCreditCard:
		return true
	}
	return false
}

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

func TerminalOrderStatus(s string) bool {
	return s == OrderCompleted || s == OrderCancelled
}
