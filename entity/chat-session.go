package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatActive          = "active"
	ChatWaitingResponse = "waiting_response"
	ChatClosed          = "closed"
)

// ChatSession is the derived per-conversation summary used for dashboards
// and unread badges. At most one session exists per (type, referenceId);
// it is never deleted, only closed.
type ChatSession struct {
	ID                 string    `json:"id" bson:"_id" gorm:"primaryKey"`
	Type               string    `json:"type" bson:"type" gorm:"uniqueIndex:idx_chat_reference"`
	ReferenceID        string    `json:"referenceId" bson:"reference_id" gorm:"uniqueIndex:idx_chat_reference"`
	ClientID           string    `json:"clientId" bson:"client_id"`
	ClientName         string    `json:"clientName" bson:"client_name"`
	ClientPhone        string    `json:"clientPhone" bson:"client_phone" gorm:"index"`
	VehicleName        string    `json:"vehicleName" bson:"vehicle_name"`
	VehiclePrice       float64   `json:"vehiclePrice" bson:"vehicle_price"`
	Status             string    `json:"status" bson:"status"`
	LastMessageAt      time.Time `json:"lastMessageAt" bson:"last_message_at"`
	LastMessagePreview string    `json:"lastMessagePreview" bson:"last_message_preview"`
	UnreadCount        int       `json:"unreadCount" bson:"unread_count"`
	CreatedAt          time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updated_at"`
}

// ClientMeta identifies the customer side of a chat session. ID is derived
// from the normalized phone, which is the durable customer identity.
type ClientMeta struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func NewClientMeta(name, normalizedPhone string) ClientMeta {
	return ClientMeta{
		ID:    "client-" + normalizedPhone,
		Name:  name,
		Phone: normalizedPhone,
	}
}

func NewChatSession(kind ConversationKind, referenceID string, client ClientMeta, vehicleName string, vehiclePrice float64, status string) ChatSession {
	now := time.Now().UTC()
	return ChatSession{
		ID:            "chat-" + uuid.NewString(),
		Type:          string(kind),
		ReferenceID:   referenceID,
		ClientID:      client.ID,
		ClientName:    client.Name,
		ClientPhone:   client.Phone,
		VehicleName:   vehicleName,
		VehiclePrice:  vehiclePrice,
		Status:        status,
		LastMessageAt: now,
		UnreadCount:   0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
