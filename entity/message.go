package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SenderCustomer = "cliente"
	SenderStaff    = "funcionario"
)

// ConversationKind tags the parent record a message belongs to.
type ConversationKind string

const (
	ConversationNegotiation ConversationKind = "negotiation"
	ConversationOrder       ConversationKind = "order"
)

// ConversationRef identifies exactly one parent conversation,
// either a negotiation or an order.
type ConversationRef struct {
	Kind ConversationKind `json:"type"`
	ID   string           `json:"id"`
}

func NegotiationRef(id string) ConversationRef {
	return ConversationRef{Kind: ConversationNegotiation, ID: id}
}

func OrderRef(id string) ConversationRef {
	return ConversationRef{Kind: ConversationOrder, ID: id}
}

// Message is a single chat utterance. Messages are append-only: once
// created they are never updated or deleted.
type Message struct {
	ID            string    `json:"id" bson:"_id" gorm:"primaryKey"`
	NegotiationID string    `json:"negotiationId,omitempty" bson:"negotiation_id,omitempty" gorm:"index"`
	OrderID       string    `json:"orderId,omitempty" bson:"order_id,omitempty" gorm:"index"`
	Content       string    `json:"content" bson:"content"`
	Sender        string    `json:"sender" bson:"sender"`
	SenderName    string    `json:"senderName" bson:"sender_name"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// NewMessage builds a message bound to a single conversation. Content is
// trimmed by the caller; construction sets id and creation time.
func NewMessage(ref ConversationRef, content, sender, senderName string) Message {
	m := Message{
		ID:         "msg-" + uuid.NewString(),
		Content:    content,
		Sender:     sender,
		SenderName: senderName,
		CreatedAt:  time.Now().UTC(),
	}
	switch ref.Kind {
	case ConversationOrder:
		m.OrderID = ref.ID
	default:
		m.NegotiationID = ref.ID
	}
	return m
}

// Conversation returns the ref this message belongs to.
func (m Message) Conversation() ConversationRef {
	if m.OrderID != "" {
		return OrderRef(m.OrderID)
	}
	return NegotiationRef(m.NegotiationID)
}

func (m Message) FromCustomer() bool {
	return m.Sender == SenderCustomer
}

// Preview returns the first 100 characters of the content, used for
// chat session summaries.
func (m Message) Preview() string {
	const max = 100
	runes := []rune(strings.TrimSpace(m.Content))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max])
}
