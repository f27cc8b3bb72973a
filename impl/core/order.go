package core

import (
	"autopier/entity"
	"autopier/internal/service/order"
)

func (c *Core) Checkout(in order.CheckoutInput) (*entity.Order, error) {
	return c.orders.Create(in)
}

func (c *Core) GetOrder(id, clientPhone string) (*entity.Order, error) {
	return c.orders.Get(id, clientPhone)
}

func (c *Core) OrderMessages(id, clientPhone string) (*entity.Order, []entity.Message, error) {
	return c.orders.Messages(id, clientPhone)
}

func (c *Core) StaffOrderMessages(id string) ([]entity.Message, error) {
	return c.orders.StaffMessages(id)
}

func (c *Core) SendOrderMessage(id, content, sender, senderName string) (*entity.Message, error) {
	return c.orders.SendMessage(id, content, sender, senderName)
}

func (c *Core) UpdateOrderStatus(id, status string) (*entity.Order, error) {
	return c.orders.UpdateStatus(id, status)
}

func (c *Core) AllOrders() []entity.Order {
	return c.orders.ListAll()
}

func (c *Core) ClientOrders(phone string) []order.ClientOrder {
	return c.orders.ListForPhone(phone)
}
