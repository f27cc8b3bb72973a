package filestore

import (
	"sort"
	"time"

	"autopier/entity"
	"autopier/internal/lib/phone"
)

// SaveChatSession creates the session unless one already exists for the
// same (type, referenceId), in which case the existing session is
// returned unchanged.
func (s *Store) SaveChatSession(session entity.ChatSession) (entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := readList[entity.ChatSession](s, chatSessionsFile)
	for _, existing := range sessions {
		if existing.Type == session.Type && existing.ReferenceID == session.ReferenceID {
			return existing, nil
		}
	}

	sessions = append(sessions, session)
	if err := writeList(s, chatSessionsFile, sessions); err != nil {
		return entity.ChatSession{}, err
	}
	return session, nil
}

func (s *Store) GetChatSessionByReference(kind entity.ConversationKind, referenceID string) (*entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findSession(readList[entity.ChatSession](s, chatSessionsFile), kind, referenceID), nil
}

func (s *Store) findSession(sessions []entity.ChatSession, kind entity.ConversationKind, referenceID string) *entity.ChatSession {
	for i := range sessions {
		if sessions[i].Type == string(kind) && sessions[i].ReferenceID == referenceID {
			return &sessions[i]
		}
	}
	return nil
}

// GetActiveChatsForPhone returns non-closed sessions for the client,
// most recent message first.
func (s *Store) GetActiveChatsForPhone(normalizedPhone string) ([]entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []entity.ChatSession
	for _, session := range readList[entity.ChatSession](s, chatSessionsFile) {
		if session.Status != entity.ChatClosed && phone.Normalize(session.ClientPhone) == normalizedPhone {
			matched = append(matched, session)
		}
	}
	sortByLastMessage(matched)
	return matched, nil
}

func (s *Store) GetAllActiveChats() ([]entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []entity.ChatSession
	for _, session := range readList[entity.ChatSession](s, chatSessionsFile) {
		if session.Status != entity.ChatClosed {
			matched = append(matched, session)
		}
	}
	sortByLastMessage(matched)
	return matched, nil
}

// ApplyMessageToSession folds one message event into the session summary:
// preview, last-message time, status flip and unread accounting. Returns
// nil when no session exists for the reference.
func (s *Store) ApplyMessageToSession(kind entity.ConversationKind, referenceID string, m entity.Message, fromClient bool) (*entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := readList[entity.ChatSession](s, chatSessionsFile)
	session := s.findSession(sessions, kind, referenceID)
	if session == nil {
		return nil, nil
	}

	session.LastMessageAt = m.CreatedAt
	session.LastMessagePreview = m.Preview()
	if fromClient {
		session.Status = entity.ChatWaitingResponse
		session.UnreadCount++
	} else {
		// A staff reply implicitly clears the unread badge.
		session.Status = entity.ChatActive
		session.UnreadCount = 0
	}
	session.UpdatedAt = time.Now().UTC()

	if err := writeList(s, chatSessionsFile, sessions); err != nil {
		return nil, err
	}
	updated := *session
	return &updated, nil
}

func (s *Store) MarkChatRead(kind entity.ConversationKind, referenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := readList[entity.ChatSession](s, chatSessionsFile)
	session := s.findSession(sessions, kind, referenceID)
	if session == nil {
		return nil
	}
	session.UnreadCount = 0
	session.Status = entity.ChatActive
	session.UpdatedAt = time.Now().UTC()
	return writeList(s, chatSessionsFile, sessions)
}

// CloseChatSession excludes the session from active listings. Closed
// sessions stay queryable by reference.
func (s *Store) CloseChatSession(kind entity.ConversationKind, referenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := readList[entity.ChatSession](s, chatSessionsFile)
	session := s.findSession(sessions, kind, referenceID)
	if session == nil {
		return nil
	}
	session.Status = entity.ChatClosed
	session.UpdatedAt = time.Now().UTC()
	return writeList(s, chatSessionsFile, sessions)
}

func sortByLastMessage(sessions []entity.ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastMessageAt.After(sessions[j].LastMessageAt)
	})
}
