package pgstore

import (
	"fmt"
	"time"

	"autopier/entity"
)

func (s *Store) SaveOrder(order entity.Order) error {
	if err := s.db.Create(&order).Error; err != nil {
		return fmt.Errorf("postgres insert order: %w", err)
	}
	return nil
}

func (s *Store) GetOrderByID(id string) (*entity.Order, error) {
	var order entity.Order
	err := s.db.First(&order, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *Store) GetOrders() ([]entity.Order, error) {
	var orders []entity.Order
	err := s.db.Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (s *Store) GetOrdersByPhone(normalizedPhone string) ([]entity.Order, error) {
	var orders []entity.Order
	err := s.db.Where("customer_phone = ?", normalizedPhone).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

func (s *Store) UpdateOrderStatus(id, status string) (*entity.Order, error) {
	result := s.db.Model(&entity.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, fmt.Errorf("postgres update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetOrderByID(id)
}

func (s *Store) SaveNegotiation(n entity.Negotiation) error {
	if err := s.db.Create(&n).Error; err != nil {
		return fmt.Errorf("postgres insert negotiation: %w", err)
	}
	return nil
}

func (s *Store) GetNegotiationByID(id string) (*entity.Negotiation, error) {
	var n entity.Negotiation
	err := s.db.First(&n, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (s *Store) GetNegotiations() ([]entity.Negotiation, error) {
	var negotiations []entity.Negotiation
	err := s.db.Order("created_at desc").Find(&negotiations).Error
	return negotiations, err
}

func (s *Store) GetNegotiationsByPhone(normalizedPhone string) ([]entity.Negotiation, error) {
	var negotiations []entity.Negotiation
	err := s.db.Where("customer_phone = ?", normalizedPhone).
		Order("updated_at desc").
		Find(&negotiations).Error
	return negotiations, err
}

func (s *Store) UpdateNegotiationStatus(id, status string) (*entity.Negotiation, error) {
	result := s.db.Model(&entity.Negotiation{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, fmt.Errorf("postgres update negotiation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetNegotiationByID(id)
}

func (s *Store) SaveMessage(m entity.Message) error {
	if err := s.db.Create(&m).Error; err != nil {
		return fmt.Errorf("postgres insert message: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesByConversation(ref entity.ConversationRef) ([]entity.Message, error) {
	column := "negotiation_id"
	if ref.Kind == entity.ConversationOrder {
		column = "order_id"
	}
	var messages []entity.Message
	err := s.db.Where(column+" = ?", ref.ID).
		Order("created_at asc").
		Find(&messages).Error
	return messages, err
}
