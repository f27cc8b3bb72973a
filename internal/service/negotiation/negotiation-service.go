// Package negotiation drives the customer-initiated deal flow: opening a
// negotiation, exchanging messages on it and moving it through its
// status lifecycle. Every write keeps the chat session index in step.
package negotiation

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"autopier/entity"
	"autopier/internal/lib/phone"
	"autopier/internal/lib/sl"
)

var (
	ErrNotFound       = errors.New("negotiation not found")
	ErrAccessDenied   = errors.New("negotiation belongs to another customer")
	ErrMissingContact = errors.New("customer name and phone are required")
	ErrMissingCar     = errors.New("car id and customer phone are required")
	ErrEmptyMessage   = errors.New("message content is empty")
	ErrInvalidStatus  = errors.New("invalid negotiation status")
	ErrStatusFinal    = errors.New("negotiation already reached a final status")
)

// DefaultCustomerName fills in when a quick-start request carries no name.
const DefaultCustomerName = "Cliente"

type Repository interface {
	SaveNegotiation(n entity.Negotiation) error
	GetNegotiationByID(id string) (*entity.Negotiation, error)
	GetNegotiations() ([]entity.Negotiation, error)
	GetNegotiationsByPhone(normalizedPhone string) ([]entity.Negotiation, error)
	UpdateNegotiationStatus(id, status string) (*entity.Negotiation, error)
	SaveMessage(m entity.Message) error
	GetMessagesByConversation(ref entity.ConversationRef) ([]entity.Message, error)
}

type Catalog interface {
	CarByID(id string) entity.Car
}

type Sessions interface {
	EnsureSession(ref entity.ConversationRef, client entity.ClientMeta, vehicleName string, vehiclePrice float64, status string) (entity.ChatSession, error)
	RecordMessage(ref entity.ConversationRef, m entity.Message, fromClient bool) error
	MarkAsRead(ref entity.ConversationRef) error
	CloseForReference(ref entity.ConversationRef) error
	SessionByReference(ref entity.ConversationRef) (*entity.ChatSession, error)
}

type Service struct {
	repo           Repository
	cars           Catalog
	sessions       Sessions
	dealershipName string
	log            *slog.Logger
}

func NewNegotiationService(logger *slog.Logger, dealershipName string) *Service {
	return &Service{
		dealershipName: dealershipName,
		log:            logger.With(sl.Module("negotiation-service")),
	}
}

func (s *Service) SetRepository(repo Repository) { s.repo = repo }
func (s *Service) SetCatalog(cars Catalog)       { s.cars = cars }
func (s *Service) SetSessions(sessions Sessions) { s.sessions = sessions }

// CreateInput is the full negotiation form. Only name and phone are
// mandatory; the vehicle fields describe the customer's own car on a
// SELL, or the interest on a BUY.
type CreateInput struct {
	CarID              string
	Type               string
	CustomerName       string
	CustomerPhone      string
	CustomerEmail      string
	VehicleName        string
	VehicleBrand       string
	VehicleYear        int
	VehicleMileage     int
	VehicleDescription string
	ProposedPrice      float64
	VehicleInterest    string
	Message            string
}

// Create opens a negotiation, writes its initial customer message and
// creates the chat session waiting for a staff response.
func (s *Service) Create(in CreateInput) (*entity.Negotiation, error) {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerPhone) == "" {
		return nil, ErrMissingContact
	}

	normalizedPhone := phone.Normalize(in.CustomerPhone)
	n := entity.NewNegotiation(in.CarID, strings.TrimSpace(in.CustomerName), normalizedPhone, in.CustomerEmail, in.Type)
	n.VehicleName = in.VehicleName
	n.VehicleBrand = in.VehicleBrand
	n.VehicleYear = in.VehicleYear
	n.VehicleMileage = in.VehicleMileage
	n.VehicleDescription = in.VehicleDescription
	n.ProposedPrice = in.ProposedPrice

	if err := s.repo.SaveNegotiation(*n); err != nil {
		return nil, fmt.Errorf("save negotiation: %w", err)
	}

	ref := entity.NegotiationRef(n.ID)
	msg := entity.NewMessage(ref, s.initialMessage(in, n.Type), entity.SenderCustomer, n.CustomerName)
	if err := s.repo.SaveMessage(msg); err != nil {
		return nil, fmt.Errorf("save initial message: %w", err)
	}

	vehicleName, vehiclePrice := s.sessionVehicle(in, n.Type)
	client := entity.NewClientMeta(n.CustomerName, normalizedPhone)
	if _, err := s.sessions.EnsureSession(ref, client, vehicleName, vehiclePrice, entity.ChatWaitingResponse); err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	if err := s.sessions.RecordMessage(ref, msg, true); err != nil {
		return nil, fmt.Errorf("record initial message: %w", err)
	}

	s.log.Info("negotiation created",
		slog.String("id", n.ID),
		slog.String("type", n.Type),
	)
	return n, nil
}

func (s *Service) initialMessage(in CreateInput, negType string) string {
	if negType == entity.NegotiationTypeSell {
		price := "A combinar"
		if in.ProposedPrice > 0 {
			price = fmt.Sprintf("R$ %.2f", in.ProposedPrice)
		}
		msg := fmt.Sprintf("Olá! Gostaria de vender meu veículo: %s %s %d. Quilometragem: %d km. Valor pretendido: %s.",
			in.VehicleBrand, in.VehicleName, in.VehicleYear, in.VehicleMileage, price)
		if in.VehicleDescription != "" {
			msg += " " + in.VehicleDescription
		}
		return msg
	}
	if strings.TrimSpace(in.Message) != "" {
		return strings.TrimSpace(in.Message)
	}
	msg := "Olá! Tenho interesse em negociar."
	if in.VehicleInterest != "" {
		msg += " " + in.VehicleInterest
	}
	return msg
}

// sessionVehicle picks what the chat header shows: the customer's own
// car on a SELL, the catalog car otherwise.
func (s *Service) sessionVehicle(in CreateInput, negType string) (string, float64) {
	if negType == entity.NegotiationTypeSell {
		name := strings.TrimSpace(in.VehicleBrand + " " + in.VehicleName)
		return name, in.ProposedPrice
	}
	car := s.cars.CarByID(in.CarID)
	return car.Name, car.Price
}

// QuickStartResult tells the client which conversation to open. ChatID
// equals the negotiation id.
type QuickStartResult struct {
	NegotiationID string `json:"negotiationId"`
	ChatID        string `json:"chatId"`
	IsNew         bool   `json:"isNew"`
}

// QuickStart opens a negotiation from just a car and a phone, reusing an
// existing open negotiation for the same pair instead of duplicating it.
func (s *Service) QuickStart(carID, customerPhone, customerName string) (QuickStartResult, error) {
	if carID == "" || strings.TrimSpace(customerPhone) == "" {
		return QuickStartResult{}, ErrMissingCar
	}

	normalizedPhone := phone.Normalize(customerPhone)
	existing, err := s.findOpen(carID, normalizedPhone)
	if err != nil {
		return QuickStartResult{}, err
	}
	if existing != nil {
		return QuickStartResult{NegotiationID: existing.ID, ChatID: existing.ID, IsNew: false}, nil
	}

	if strings.TrimSpace(customerName) == "" {
		customerName = DefaultCustomerName
	}

	car := s.cars.CarByID(carID)
	n := entity.NewNegotiation(carID, customerName, normalizedPhone, "", entity.NegotiationTypeBuy)
	if err := s.repo.SaveNegotiation(*n); err != nil {
		return QuickStartResult{}, fmt.Errorf("save negotiation: %w", err)
	}

	ref := entity.NegotiationRef(n.ID)
	msg := entity.NewMessage(ref, fmt.Sprintf("Olá! Tenho interesse em negociar o veículo %s.", car.Name), entity.SenderCustomer, customerName)
	if err := s.repo.SaveMessage(msg); err != nil {
		return QuickStartResult{}, fmt.Errorf("save initial message: %w", err)
	}

	client := entity.NewClientMeta(customerName, normalizedPhone)
	if _, err := s.sessions.EnsureSession(ref, client, car.Name, car.Price, entity.ChatWaitingResponse); err != nil {
		return QuickStartResult{}, fmt.Errorf("create chat session: %w", err)
	}
	if err := s.sessions.RecordMessage(ref, msg, true); err != nil {
		return QuickStartResult{}, fmt.Errorf("record initial message: %w", err)
	}

	s.log.Info("negotiation created", slog.String("id", n.ID), slog.String("car_id", carID))
	return QuickStartResult{NegotiationID: n.ID, ChatID: n.ID, IsNew: true}, nil
}

func (s *Service) findOpen(carID, normalizedPhone string) (*entity.Negotiation, error) {
	negotiations, err := s.repo.GetNegotiationsByPhone(normalizedPhone)
	if err != nil {
		return nil, fmt.Errorf("list negotiations: %w", err)
	}
	for i := range negotiations {
		n := &negotiations[i]
		if n.CarID == carID && n.Open() {
			return n, nil
		}
	}
	return nil, nil
}

// Get returns a negotiation with its messages. A non-empty clientPhone
// must match the negotiation's customer, otherwise access is denied.
func (s *Service) Get(id, clientPhone string) (*entity.Negotiation, []entity.Message, error) {
	n, err := s.repo.GetNegotiationByID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("get negotiation: %w", err)
	}
	if n == nil {
		return nil, nil, ErrNotFound
	}
	if clientPhone != "" && !phone.Equal(clientPhone, n.CustomerPhone) {
		return nil, nil, ErrAccessDenied
	}

	messages, err := s.repo.GetMessagesByConversation(entity.NegotiationRef(id))
	if err != nil {
		return nil, nil, fmt.Errorf("get messages: %w", err)
	}
	if messages == nil {
		messages = []entity.Message{}
	}
	return n, messages, nil
}

// SendCustomerMessage appends a customer message to the negotiation.
func (s *Service) SendCustomerMessage(id, content, senderName string) (*entity.Message, error) {
	return s.sendMessage(id, content, senderName, true)
}

// SendStaffMessage appends a staff reply, which also clears the unread
// badge on the session.
func (s *Service) SendStaffMessage(id, content string) (*entity.Message, error) {
	return s.sendMessage(id, content, s.dealershipName, false)
}

func (s *Service) sendMessage(id, content, senderName string, fromCustomer bool) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	n, err := s.repo.GetNegotiationByID(id)
	if err != nil {
		return nil, fmt.Errorf("get negotiation: %w", err)
	}
	if n == nil {
		return nil, ErrNotFound
	}

	sender := entity.SenderStaff
	if fromCustomer {
		sender = entity.SenderCustomer
		if senderName == "" {
			senderName = n.CustomerName
		}
	}

	ref := entity.NegotiationRef(id)
	msg := entity.NewMessage(ref, content, sender, senderName)
	if err := s.repo.SaveMessage(msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	// First activity moves a pending negotiation into progress.
	if n.Status == entity.NegotiationPending {
		if _, err := s.repo.UpdateNegotiationStatus(id, entity.NegotiationInProgress); err != nil {
			s.log.Error("advance negotiation status", sl.Err(err))
		}
	}

	if err := s.sessions.RecordMessage(ref, msg, fromCustomer); err != nil {
		s.log.Error("update chat session", sl.Err(err))
	}

	return &msg, nil
}

// StaffMessages returns the conversation and marks it read, since staff
// is looking at it.
func (s *Service) StaffMessages(id string) ([]entity.Message, error) {
	n, err := s.repo.GetNegotiationByID(id)
	if err != nil {
		return nil, fmt.Errorf("get negotiation: %w", err)
	}
	if n == nil {
		return nil, ErrNotFound
	}

	ref := entity.NegotiationRef(id)
	messages, err := s.repo.GetMessagesByConversation(ref)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	if messages == nil {
		messages = []entity.Message{}
	}

	if err := s.sessions.MarkAsRead(ref); err != nil {
		s.log.Error("mark chat read", sl.Err(err))
	}
	return messages, nil
}

// UpdateStatus moves the negotiation through its lifecycle. Final
// statuses accept no further transitions and close the chat session.
func (s *Service) UpdateStatus(id, status string) (*entity.Negotiation, error) {
	if !entity.ValidNegotiationStatus(status) {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetNegotiationByID(id)
	if err != nil {
		return nil, fmt.Errorf("get negotiation: %w", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if entity.TerminalNegotiationStatus(current.Status) && status != current.Status {
		return nil, ErrStatusFinal
	}

	updated, err := s.repo.UpdateNegotiationStatus(id, status)
	if err != nil {
		return nil, fmt.Errorf("update negotiation: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	if entity.TerminalNegotiationStatus(status) {
		if err := s.sessions.CloseForReference(entity.NegotiationRef(id)); err != nil {
			s.log.Error("close chat session", sl.Err(err))
		}
	}
	return updated, nil
}

// ListAll returns every negotiation for the dashboard. Read failures
// degrade to an empty list.
func (s *Service) ListAll() []entity.Negotiation {
	negotiations, err := s.repo.GetNegotiations()
	if err != nil {
		s.log.Error("list negotiations", sl.Err(err))
		return []entity.Negotiation{}
	}
	if negotiations == nil {
		negotiations = []entity.Negotiation{}
	}
	return negotiations
}

// ClientNegotiation is the customer-facing list row: the negotiation
// joined with its catalog car and chat summary.
type ClientNegotiation struct {
	ID            string    `json:"id"`
	CarID         string    `json:"carId"`
	CarName       string    `json:"carName"`
	CarBrand      string    `json:"carBrand"`
	CarImage      string    `json:"carImage"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
}

// ListForPhone returns the customer's negotiations, most recently
// updated first, each joined with its chat summary.
func (s *Service) ListForPhone(rawPhone string) []ClientNegotiation {
	negotiations, err := s.repo.GetNegotiationsByPhone(phone.Normalize(rawPhone))
	if err != nil {
		s.log.Error("list negotiations by phone", sl.Err(err))
		return []ClientNegotiation{}
	}

	rows := make([]ClientNegotiation, 0, len(negotiations))
	for _, n := range negotiations {
		car := s.cars.CarByID(n.CarID)
		row := ClientNegotiation{
			ID:            n.ID,
			CarID:         n.CarID,
			CarName:       car.Name,
			CarBrand:      car.Brand,
			CarImage:      car.ImageURL,
			Status:        n.Status,
			CreatedAt:     n.CreatedAt,
			UpdatedAt:     n.UpdatedAt,
			LastMessageAt: n.UpdatedAt,
		}
		session, err := s.sessions.SessionByReference(entity.NegotiationRef(n.ID))
		if err != nil {
			s.log.Error("get chat session", sl.Err(err))
		}
		if session != nil {
			row.LastMessage = session.LastMessagePreview
			row.LastMessageAt = session.LastMessageAt
			row.UnreadCount = session.UnreadCount
		}
		rows = append(rows, row)
	}
	return rows
}
