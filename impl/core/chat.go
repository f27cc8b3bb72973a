package core

import (
	"autopier/entity"
	"autopier/internal/service/chat"
	"autopier/internal/service/typing"
)

func (c *Core) ActiveChats(phone string) []entity.ChatSession {
	return c.chats.ActiveForPhone(phone)
}

func (c *Core) AllActiveChats() []entity.ChatSession {
	return c.chats.AllActive()
}

// CheckActiveChat resolves a reconnect attempt: by explicit reference
// when one is given, by phone otherwise.
func (c *Core) CheckActiveChat(phone, negotiationID, orderID string) (chat.Reconnect, error) {
	if negotiationID != "" {
		return c.chats.CheckActiveByReference(entity.NegotiationRef(negotiationID))
	}
	if orderID != "" {
		return c.chats.CheckActiveByReference(entity.OrderRef(orderID))
	}
	if phone != "" {
		return c.chats.CheckActive(phone)
	}
	return chat.Reconnect{Found: false}, nil
}

func (c *Core) MarkChatRead(kind entity.ConversationKind, referenceID string) error {
	return c.chats.MarkAsRead(entity.ConversationRef{Kind: kind, ID: referenceID})
}

func (c *Core) SetTyping(chatID, userName string, isTyping bool) error {
	if isTyping {
		return c.typing.SetTyping(chatID, userName)
	}
	return c.typing.ClearTyping(chatID)
}

func (c *Core) TypingStatus(chatID string) (typing.Status, error) {
	return c.typing.IsTyping(chatID)
}
