// Package core aggregates the domain services behind the single handler
// facade the HTTP layer talks to. Services are attached with setters
// during startup wiring.
package core

import (
	"errors"
	"log/slog"

	"autopier/entity"
	"autopier/internal/lib/sl"
	"autopier/internal/service/chat"
	"autopier/internal/service/negotiation"
	"autopier/internal/service/order"
	"autopier/internal/service/stats"
	"autopier/internal/service/typing"
)

var ErrInvalidApiKey = errors.New("invalid api key")

type NegotiationService interface {
	Create(in negotiation.CreateInput) (*entity.Negotiation, error)
	QuickStart(carID, customerPhone, customerName string) (negotiation.QuickStartResult, error)
	Get(id, clientPhone string) (*entity.Negotiation, []entity.Message, error)
	SendCustomerMessage(id, content, senderName string) (*entity.Message, error)
	SendStaffMessage(id, content string) (*entity.Message, error)
	StaffMessages(id string) ([]entity.Message, error)
	UpdateStatus(id, status string) (*entity.Negotiation, error)
	ListAll() []entity.Negotiation
	ListForPhone(rawPhone string) []negotiation.ClientNegotiation
}

type OrderService interface {
	Create(in order.CheckoutInput) (*entity.Order, error)
	Get(id, clientPhone string) (*entity.Order, error)
	Messages(id, clientPhone string) (*entity.Order, []entity.Message, error)
	StaffMessages(id string) ([]entity.Message, error)
	SendMessage(id, content, sender, senderName string) (*entity.Message, error)
	UpdateStatus(id, status string) (*entity.Order, error)
	ListAll() []entity.Order
	ListForPhone(rawPhone string) []order.ClientOrder
}

type ChatService interface {
	ActiveForPhone(rawPhone string) []entity.ChatSession
	AllActive() []entity.ChatSession
	CheckActive(rawPhone string) (chat.Reconnect, error)
	CheckActiveByReference(ref entity.ConversationRef) (chat.Reconnect, error)
	MarkAsRead(ref entity.ConversationRef) error
}

type CatalogService interface {
	Cars() []entity.Car
	CarByID(id string) entity.Car
}

type StatsService interface {
	Overview() stats.Overview
}

type Core struct {
	negotiations NegotiationService
	orders       OrderService
	chats        ChatService
	catalog      CatalogService
	stats        StatsService
	typing       typing.Store
	apiKey       string
	log          *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log: log.With(sl.Module("core")),
	}
}

func (c *Core) SetNegotiationService(s NegotiationService) { c.negotiations = s }
func (c *Core) SetOrderService(s OrderService)             { c.orders = s }
func (c *Core) SetChatService(s ChatService)               { c.chats = s }
func (c *Core) SetCatalogService(s CatalogService)         { c.catalog = s }
func (c *Core) SetStatsService(s StatsService)             { c.stats = s }
func (c *Core) SetTypingStore(s typing.Store)              { c.typing = s }
func (c *Core) SetApiKey(key string)                       { c.apiKey = key }

// CheckApiKey guards the dashboard routes with the configured static key.
func (c *Core) CheckApiKey(key string) error {
	if c.apiKey == "" || key != c.apiKey {
		return ErrInvalidApiKey
	}
	return nil
}

func (c *Core) Cars() []entity.Car {
	return c.catalog.Cars()
}

func (c *Core) CarByID(id string) entity.Car {
	return c.catalog.CarByID(id)
}

func (c *Core) StatsOverview() stats.Overview {
	return c.stats.Overview()
}
