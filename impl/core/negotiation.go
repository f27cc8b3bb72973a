package core

import (
	"autopier/entity"
	"autopier/internal/service/negotiation"
)

func (c *Core) CreateNegotiation(in negotiation.CreateInput) (*entity.Negotiation, error) {
	return c.negotiations.Create(in)
}

func (c *Core) QuickStartNegotiation(carID, customerPhone, customerName string) (negotiation.QuickStartResult, error) {
	return c.negotiations.QuickStart(carID, customerPhone, customerName)
}

func (c *Core) GetNegotiation(id, clientPhone string) (*entity.Negotiation, []entity.Message, error) {
	return c.negotiations.Get(id, clientPhone)
}

func (c *Core) SendCustomerMessage(id, content, senderName string) (*entity.Message, error) {
	return c.negotiations.SendCustomerMessage(id, content, senderName)
}

func (c *Core) SendStaffMessage(id, content string) (*entity.Message, error) {
	return c.negotiations.SendStaffMessage(id, content)
}

func (c *Core) NegotiationMessages(id string) ([]entity.Message, error) {
	return c.negotiations.StaffMessages(id)
}

func (c *Core) UpdateNegotiationStatus(id, status string) (*entity.Negotiation, error) {
	return c.negotiations.UpdateStatus(id, status)
}

func (c *Core) AllNegotiations() []entity.Negotiation {
	return c.negotiations.ListAll()
}

func (c *Core) ClientNegotiations(phone string) []negotiation.ClientNegotiation {
	return c.negotiations.ListForPhone(phone)
}
