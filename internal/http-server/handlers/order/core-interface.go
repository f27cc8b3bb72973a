package order

import (
	"autopier/entity"
	"autopier/internal/service/order"
)

type Core interface {
	Checkout(in order.CheckoutInput) (*entity.Order, error)
	GetOrder(id, clientPhone string) (*entity.Order, error)
	OrderMessages(id, clientPhone string) (*entity.Order, []entity.Message, error)
	StaffOrderMessages(id string) ([]entity.Message, error)
	SendOrderMessage(id, content, sender, senderName string) (*entity.Message, error)
	UpdateOrderStatus(id, status string) (*entity.Order, error)
	AllOrders() []entity.Order
	ClientOrders(phone string) []order.ClientOrder
	CarByID(id string) entity.Car
}
