package chat

import (
	"autopier/entity"
	"autopier/internal/service/chat"
)

type Core interface {
	ActiveChats(phone string) []entity.ChatSession
	AllActiveChats() []entity.ChatSession
	CheckActiveChat(phone, negotiationID, orderID string) (chat.Reconnect, error)
	MarkChatRead(kind entity.ConversationKind, referenceID string) error
}
