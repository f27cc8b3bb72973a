// Package order handles checkout: field-level validation of the order
// form, order creation with its chat session, and the order chat itself.
package order

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"autopier/entity"
	"autopier/internal/lib/phone"
	"autopier/internal/lib/sl"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrAccessDenied  = errors.New("order belongs to another customer")
	ErrEmptyMessage  = errors.New("message content is empty")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrStatusFinal   = errors.New("order already reached a final status")
)

// ValidationError carries the per-field messages the checkout form
// renders next to each input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order data: %d field(s)", len(e.Fields))
}

type Repository interface {
	SaveOrder(order entity.Order) error
	GetOrderByID(id string) (*entity.Order, error)
	GetOrders() ([]entity.Order, error)
	GetOrdersByPhone(normalizedPhone string) ([]entity.Order, error)
	UpdateOrderStatus(id, status string) (*entity.Order, error)
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
	repo     Repository
	cars     Catalog
	sessions Sessions
	validate *validator.Validate
	log      *slog.Logger
}

func NewOrderService(logger *slog.Logger) *Service {
	v := validator.New()
	v.RegisterValidation("rg", func(fl validator.FieldLevel) bool {
		return len(digits(fl.Field().String())) == 6
	})
	v.RegisterValidation("brphone", func(fl validator.FieldLevel) bool {
		return phone.Valid(fl.Field().String())
	})
	return &Service{
		validate: v,
		log:      logger.With(sl.Module("order-service")),
	}
}

func (s *Service) SetRepository(repo Repository) { s.repo = repo }
func (s *Service) SetCatalog(cars Catalog)       { s.cars = cars }
func (s *Service) SetSessions(sessions Sessions) { s.sessions = sessions }

// CheckoutInput is the raw checkout form, before validation and
// normalization.
type CheckoutInput struct {
	CarID         string
	CustomerName  string `validate:"required"`
	CustomerRG    string `validate:"rg"`
	CustomerPhone string `validate:"brphone"`
	PaymentMethod string
	Installments  int
	SelectedColor string
	TotalPrice    float64
}

// DefaultColor fills in when the form carries no color choice.
const DefaultColor = "Preto"

// Create validates the checkout form, persists the order with RG and
// phone reduced to digits, and opens its chat session.
func (s *Service) Create(in CheckoutInput) (*entity.Order, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	payment := entity.NormalizePaymentMethod(in.PaymentMethod)
	if fields := s.checkFields(in, payment); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	installments := 1
	if payment == entity.PaymentCreditCard {
		installments = in.Installments
	}
	color := in.SelectedColor
	if color == "" {
		color = DefaultColor
	}

	order := entity.NewOrder(
		in.CarID,
		in.CustomerName,
		digits(in.CustomerRG),
		phone.Normalize(in.CustomerPhone),
		payment,
		color,
		installments,
		in.TotalPrice,
	)
	if err := s.repo.SaveOrder(*order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	car := s.cars.CarByID(in.CarID)
	client := entity.NewClientMeta(order.CustomerName, order.CustomerPhone)
	ref := entity.OrderRef(order.ID)
	if _, err := s.sessions.EnsureSession(ref, client, car.Name, in.TotalPrice, entity.ChatActive); err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}

	s.log.Info("order created",
		slog.String("id", order.ID),
		slog.String("car_id", order.CarID),
	)
	return order, nil
}

// checkFields runs the tag-driven validators plus the payment rules
// they cannot express, keyed by form field name.
func (s *Service) checkFields(in CheckoutInput, payment string) map[string]string {
	fields := make(map[string]string)

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "CustomerName":
					fields["name"] = "Nome completo é obrigatório"
				case "CustomerRG":
					fields["rg"] = "RG inválido. O RG deve ter exatamente 6 dígitos."
				case "CustomerPhone":
					fields["phone"] = "Número de telefone inválido. Mínimo 6 dígitos."
				}
			}
		}
	}

	if !entity.ValidPaymentMethod(payment) {
		fields["payment"] = "Forma de pagamento inválida"
	}
	if payment == entity.PaymentCreditCard {
		if in.Installments < 1 || in.Installments > 12 {
			fields["installments"] = "Parcelamento deve ser entre 1 e 12 vezes"
		}
	} else if in.Installments > 1 {
		fields["installments"] = "Parcelamento disponível apenas para Cartão de Crédito"
	}

	return fields
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Get returns an order. A non-empty clientPhone must match the order's
// customer, otherwise access is denied.
func (s *Service) Get(id, clientPhone string) (*entity.Order, error) {
	order, err := s.repo.GetOrderByID(id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if clientPhone != "" && !phone.Equal(clientPhone, order.CustomerPhone) {
		return nil, ErrAccessDenied
	}
	return order, nil
}

// Messages returns the order chat. Phone-scoped like Get.
func (s *Service) Messages(id, clientPhone string) (*entity.Order, []entity.Message, error) {
	order, err := s.Get(id, clientPhone)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.repo.GetMessagesByConversation(entity.OrderRef(id))
	if err != nil {
		return nil, nil, fmt.Errorf("get messages: %w", err)
	}
	if messages == nil {
		messages = []entity.Message{}
	}
	return order, messages, nil
}

// StaffMessages returns the order chat and marks it read.
func (s *Service) StaffMessages(id string) ([]entity.Message, error) {
	_, messages, err := s.Messages(id, "")
	if err != nil {
		return nil, err
	}
	if err := s.sessions.MarkAsRead(entity.OrderRef(id)); err != nil {
		s.log.Error("mark chat read", sl.Err(err))
	}
	return messages, nil
}

// SendMessage appends a message to the order chat from either side.
func (s *Service) SendMessage(id, content, sender, senderName string) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	order, err := s.repo.GetOrderByID(id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrNotFound
	}

	if sender != entity.SenderStaff {
		sender = entity.SenderCustomer
	}
	if senderName == "" {
		senderName = order.CustomerName
	}

	ref := entity.OrderRef(id)
	msg := entity.NewMessage(ref, content, sender, senderName)
	if err := s.repo.SaveMessage(msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	if err := s.sessions.RecordMessage(ref, msg, sender == entity.SenderCustomer); err != nil {
		s.log.Error("update chat session", sl.Err(err))
	}
	return &msg, nil
}

// UpdateStatus moves the order through its lifecycle. Final statuses
// accept no further transitions and close the chat session.
func (s *Service) UpdateStatus(id, status string) (*entity.Order, error) {
	if !entity.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetOrderByID(id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if entity.TerminalOrderStatus(current.Status) && status != current.Status {
		return nil, ErrStatusFinal
	}

	updated, err := s.repo.UpdateOrderStatus(id, status)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	if entity.TerminalOrderStatus(status) {
		if err := s.sessions.CloseForReference(entity.OrderRef(id)); err != nil {
			s.log.Error("close chat session", sl.Err(err))
		}
	}
	return updated, nil
}

// ListAll returns every order for the dashboard, newest first already
// guaranteed by the store. Read failures degrade to an empty list.
func (s *Service) ListAll() []entity.Order {
	orders, err := s.repo.GetOrders()
	if err != nil {
		s.log.Error("list orders", sl.Err(err))
		return []entity.Order{}
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders
}

// ClientOrder is the customer-facing list row: the order joined with
// its catalog car and chat summary.
type ClientOrder struct {
	ID            string    `json:"id"`
	CarID         string    `json:"carId"`
	CarName       string    `json:"carName"`
	CarBrand      string    `json:"carBrand"`
	CarImage      string    `json:"carImage"`
	Status        string    `json:"status"`
	TotalPrice    float64   `json:"totalPrice"`
	SelectedColor string    `json:"selectedColor"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
}

// ListForPhone returns the customer's orders, most recently updated
// first, each joined with its chat summary.
func (s *Service) ListForPhone(rawPhone string) []ClientOrder {
	orders, err := s.repo.GetOrdersByPhone(phone.Normalize(rawPhone))
	if err != nil {
		s.log.Error("list orders by phone", sl.Err(err))
		return []ClientOrder{}
	}

	rows := make([]ClientOrder, 0, len(orders))
	for _, o := range orders {
		car := s.cars.CarByID(o.CarID)
		row := ClientOrder{
			ID:            o.ID,
			CarID:         o.CarID,
			CarName:       car.Name,
			CarBrand:      car.Brand,
			CarImage:      car.ImageURL,
			Status:        o.Status,
			TotalPrice:    o.TotalPrice,
			SelectedColor: o.SelectedColor,
			PaymentMethod: o.PaymentMethod,
			CreatedAt:     o.CreatedAt,
			UpdatedAt:     o.UpdatedAt,
			LastMessageAt: o.UpdatedAt,
		}
		session, err := s.sessions.SessionByReference(entity.OrderRef(o.ID))
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
