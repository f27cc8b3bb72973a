package pgstore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autopier/entity"
)

// SaveChatSession creates the session unless one already exists for the
// same (type, referenceId). ON CONFLICT DO NOTHING keeps creation
// idempotent under concurrent callers.
func (s *Store) SaveChatSession(session entity.ChatSession) (entity.ChatSession, error) {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "type"}, {Name: "reference_id"}},
		DoNothing: true,
	}).Create(&session).Error
	if err != nil {
		return entity.ChatSession{}, fmt.Errorf("postgres insert chat session: %w", err)
	}

	existing, err := s.GetChatSessionByReference(entity.ConversationKind(session.Type), session.ReferenceID)
	if err != nil {
		return entity.ChatSession{}, err
	}
	if existing == nil {
		return session, nil
	}
	return *existing, nil
}

func (s *Store) GetChatSessionByReference(kind entity.ConversationKind, referenceID string) (*entity.ChatSession, error) {
	var session entity.ChatSession
	err := s.db.First(&session, "type = ? AND reference_id = ?", string(kind), referenceID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

func (s *Store) GetActiveChatsForPhone(normalizedPhone string) ([]entity.ChatSession, error) {
	var sessions []entity.ChatSession
	err := s.db.Where("client_phone = ? AND status <> ?", normalizedPhone, entity.ChatClosed).
		Order("last_message_at desc").
		Find(&sessions).Error
	return sessions, err
}

func (s *Store) GetAllActiveChats() ([]entity.ChatSession, error) {
	var sessions []entity.ChatSession
	err := s.db.Where("status <> ?", entity.ChatClosed).
		Order("last_message_at desc").
		Find(&sessions).Error
	return sessions, err
}

// ApplyMessageToSession folds a message event into the session summary.
// The unread counter is bumped with a SQL expression so concurrent client
// messages never lose an increment. Returns nil when no session exists.
func (s *Store) ApplyMessageToSession(kind entity.ConversationKind, referenceID string, m entity.Message, fromClient bool) (*entity.ChatSession, error) {
	updates := map[string]any{
		"last_message_at":      m.CreatedAt,
		"last_message_preview": m.Preview(),
		"updated_at":           time.Now().UTC(),
	}
	if fromClient {
		updates["status"] = entity.ChatWaitingResponse
		updates["unread_count"] = gorm.Expr("unread_count + 1")
	} else {
		updates["status"] = entity.ChatActive
		updates["unread_count"] = 0
	}

	result := s.db.Model(&entity.ChatSession{}).
		Where("type = ? AND reference_id = ?", string(kind), referenceID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("postgres update chat session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetChatSessionByReference(kind, referenceID)
}

func (s *Store) MarkChatRead(kind entity.ConversationKind, referenceID string) error {
	return s.updateSessionStatus(kind, referenceID, map[string]any{
		"status":       entity.ChatActive,
		"unread_count": 0,
		"updated_at":   time.Now().UTC(),
	})
}

func (s *Store) CloseChatSession(kind entity.ConversationKind, referenceID string) error {
	return s.updateSessionStatus(kind, referenceID, map[string]any{
		"status":     entity.ChatClosed,
		"updated_at": time.Now().UTC(),
	})
}

func (s *Store) updateSessionStatus(kind entity.ConversationKind, referenceID string, updates map[string]any) error {
	err := s.db.Model(&entity.ChatSession{}).
		Where("type = ? AND reference_id = ?", string(kind), referenceID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("postgres update chat session: %w", err)
	}
	return nil
}
