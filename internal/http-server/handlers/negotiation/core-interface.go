package negotiation

import (
	"autopier/entity"
	"autopier/internal/service/negotiation"
)

type Core interface {
	CreateNegotiation(in negotiation.CreateInput) (*entity.Negotiation, error)
	QuickStartNegotiation(carID, customerPhone, customerName string) (negotiation.QuickStartResult, error)
	GetNegotiation(id, clientPhone string) (*entity.Negotiation, []entity.Message, error)
	SendCustomerMessage(id, content, senderName string) (*entity.Message, error)
	SendStaffMessage(id, content string) (*entity.Message, error)
	NegotiationMessages(id string) ([]entity.Message, error)
	UpdateNegotiationStatus(id, status string) (*entity.Negotiation, error)
	AllNegotiations() []entity.Negotiation
	ClientNegotiations(phone string) []negotiation.ClientNegotiation
	CarByID(id string) entity.Car
}
