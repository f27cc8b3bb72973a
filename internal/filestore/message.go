package filestore

import (
	"sort"

	"autopier/entity"
)

func (s *Store) SaveMessage(m entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := readList[entity.Message](s, messagesFile)
	messages = append(messages, m)
	return writeList(s, messagesFile, messages)
}

// GetMessagesByConversation returns the full message list for one
// conversation, ascending by creation time. Storage order is irrelevant;
// the sort is stable so same-instant messages keep insertion order.
func (s *Store) GetMessagesByConversation(ref entity.ConversationRef) ([]entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []entity.Message
	for _, m := range readList[entity.Message](s, messagesFile) {
		if m.Conversation() == ref {
			matched = append(matched, m)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}
