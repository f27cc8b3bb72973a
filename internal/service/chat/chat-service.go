// Package chat maintains the derived chat session index: one summary
// record per conversation carrying the last-message preview, the unread
// badge and the waiting/active status the dashboard works from.
package chat

import (
	"fmt"
	"log/slog"

	"autopier/entity"
	"autopier/internal/lib/phone"
	"autopier/internal/lib/sl"
)

type Repository interface {
	SaveChatSession(session entity.ChatSession) (entity.ChatSession, error)
	GetChatSessionByReference(kind entity.ConversationKind, referenceID string) (*entity.ChatSession, error)
	GetActiveChatsForPhone(normalizedPhone string) ([]entity.ChatSession, error)
	GetAllActiveChats() ([]entity.ChatSession, error)
	ApplyMessageToSession(kind entity.ConversationKind, referenceID string, m entity.Message, fromClient bool) (*entity.ChatSession, error)
	MarkChatRead(kind entity.ConversationKind, referenceID string) error
	CloseChatSession(kind entity.ConversationKind, referenceID string) error

	GetMessagesByConversation(ref entity.ConversationRef) ([]entity.Message, error)
	GetNegotiationByID(id string) (*entity.Negotiation, error)
	GetOrderByID(id string) (*entity.Order, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewChatService(logger *slog.Logger) *Service {
	return &Service{
		log: logger.With(sl.Module("chat-service")),
	}
}

func (s *Service) SetRepository(repo Repository) {
	s.repo = repo
}

// EnsureSession creates the session for a conversation if it does not
// exist yet. Creation is idempotent: an existing session is returned
// unchanged.
func (s *Service) EnsureSession(ref entity.ConversationRef, client entity.ClientMeta, vehicleName string, vehiclePrice float64, status string) (entity.ChatSession, error) {
	session := entity.NewChatSession(ref.Kind, ref.ID, client, vehicleName, vehiclePrice, status)
	return s.repo.SaveChatSession(session)
}

// RecordMessage folds a message event into the session summary. A session
// missing for the reference is backfilled from the parent record before
// the event is applied, so a message is never legal without a session.
func (s *Service) RecordMessage(ref entity.ConversationRef, m entity.Message, fromClient bool) error {
	session, err := s.repo.ApplyMessageToSession(ref.Kind, ref.ID, m, fromClient)
	if err != nil {
		return err
	}
	if session != nil {
		return nil
	}

	if err := s.backfillSession(ref); err != nil {
		return err
	}
	_, err = s.repo.ApplyMessageToSession(ref.Kind, ref.ID, m, fromClient)
	return err
}

func (s *Service) backfillSession(ref entity.ConversationRef) error {
	var client entity.ClientMeta
	var vehicleName string
	var vehiclePrice float64

	switch ref.Kind {
	case entity.ConversationOrder:
		order, err := s.repo.GetOrderByID(ref.ID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("order %s not found for session backfill", ref.ID)
		}
		client = entity.NewClientMeta(order.CustomerName, phone.Normalize(order.CustomerPhone))
		vehiclePrice = order.TotalPrice
	default:
		negotiation, err := s.repo.GetNegotiationByID(ref.ID)
		if err != nil {
			return err
		}
		if negotiation == nil {
			return fmt.Errorf("negotiation %s not found for session backfill", ref.ID)
		}
		client = entity.NewClientMeta(negotiation.CustomerName, phone.Normalize(negotiation.CustomerPhone))
		vehicleName = negotiation.VehicleName
		vehiclePrice = negotiation.ProposedPrice
	}

	s.log.With(
		slog.String("type", string(ref.Kind)),
		slog.String("reference_id", ref.ID),
	).Warn("backfilling missing chat session")

	_, err := s.repo.SaveChatSession(entity.NewChatSession(ref.Kind, ref.ID, client, vehicleName, vehiclePrice, entity.ChatActive))
	return err
}

// Reconnect is the payload a returning client gets when a prior
// conversation is still open on their phone number. RelatedRecord carries
// the parent negotiation or order in full, so the client can render the
// deal state without a second fetch.
type Reconnect struct {
	Found         bool                    `json:"found"`
	Chat          *entity.ChatSession     `json:"chat,omitempty"`
	Messages      []entity.Message        `json:"messages,omitempty"`
	Reference     *entity.ConversationRef `json:"reference,omitempty"`
	RelatedRecord any                     `json:"relatedRecord,omitempty"`
}

// relatedRecord loads the conversation's parent record. A missing parent
// is returned as nil rather than an error; the session alone is still
// enough to reconnect.
func (s *Service) relatedRecord(ref entity.ConversationRef) (any, error) {
	switch ref.Kind {
	case entity.ConversationOrder:
		order, err := s.repo.GetOrderByID(ref.ID)
		if err != nil || order == nil {
			return nil, err
		}
		return order, nil
	default:
		negotiation, err := s.repo.GetNegotiationByID(ref.ID)
		if err != nil || negotiation == nil {
			return nil, err
		}
		return negotiation, nil
	}
}

// CheckActiveByReference resolves a reconnect attempt that names the
// conversation directly.
func (s *Service) CheckActiveByReference(ref entity.ConversationRef) (Reconnect, error) {
	session, err := s.repo.GetChatSessionByReference(ref.Kind, ref.ID)
	if err != nil {
		return Reconnect{}, err
	}
	if session == nil {
		return Reconnect{Found: false}, nil
	}

	messages, err := s.repo.GetMessagesByConversation(ref)
	if err != nil {
		return Reconnect{}, err
	}
	if messages == nil {
		messages = []entity.Message{}
	}

	record, err := s.relatedRecord(ref)
	if err != nil {
		return Reconnect{}, err
	}

	return Reconnect{
		Found:         true,
		Chat:          session,
		Messages:      messages,
		Reference:     &ref,
		RelatedRecord: record,
	}, nil
}

// CheckActive looks for the most recent open session on the phone and,
// when found, returns it together with the full message history so the
// client can resume where they left off.
func (s *Service) CheckActive(rawPhone string) (Reconnect, error) {
	sessions, err := s.repo.GetActiveChatsForPhone(phone.Normalize(rawPhone))
	if err != nil {
		return Reconnect{}, err
	}
	if len(sessions) == 0 {
		return Reconnect{Found: false}, nil
	}

	session := sessions[0]
	ref := entity.ConversationRef{Kind: entity.ConversationKind(session.Type), ID: session.ReferenceID}
	messages, err := s.repo.GetMessagesByConversation(ref)
	if err != nil {
		return Reconnect{}, err
	}
	if messages == nil {
		messages = []entity.Message{}
	}

	record, err := s.relatedRecord(ref)
	if err != nil {
		return Reconnect{}, err
	}

	return Reconnect{
		Found:         true,
		Chat:          &session,
		Messages:      messages,
		Reference:     &ref,
		RelatedRecord: record,
	}, nil
}

// MarkAsRead clears the unread badge. Absent sessions are a no-op.
func (s *Service) MarkAsRead(ref entity.ConversationRef) error {
	return s.repo.MarkChatRead(ref.Kind, ref.ID)
}

func (s *Service) CloseForReference(ref entity.ConversationRef) error {
	return s.repo.CloseChatSession(ref.Kind, ref.ID)
}

func (s *Service) SessionByReference(ref entity.ConversationRef) (*entity.ChatSession, error) {
	return s.repo.GetChatSessionByReference(ref.Kind, ref.ID)
}

// ActiveForPhone lists the client's open sessions, most recent first.
// Read failures degrade to an empty list.
func (s *Service) ActiveForPhone(rawPhone string) []entity.ChatSession {
	sessions, err := s.repo.GetActiveChatsForPhone(phone.Normalize(rawPhone))
	if err != nil {
		s.log.Error("list active chats for phone", sl.Err(err))
		return []entity.ChatSession{}
	}
	if sessions == nil {
		sessions = []entity.ChatSession{}
	}
	return sessions
}

func (s *Service) AllActive() []entity.ChatSession {
	sessions, err := s.repo.GetAllActiveChats()
	if err != nil {
		s.log.Error("list active chats", sl.Err(err))
		return []entity.ChatSession{}
	}
	if sessions == nil {
		sessions = []entity.ChatSession{}
	}
	return sessions
}
