package filestore

import (
	"sort"
	"time"

	"autopier/entity"
	"autopier/internal/lib/phone"
)

func (s *Store) SaveOrder(order entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := readList[entity.Order](s, ordersFile)
	orders = append(orders, order)
	return writeList(s, ordersFile, orders)
}

func (s *Store) GetOrderByID(id string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range readList[entity.Order](s, ordersFile) {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, nil
}

// GetOrders returns all orders, newest first.
func (s *Store) GetOrders() ([]entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := readList[entity.Order](s, ordersFile)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *Store) GetOrdersByPhone(normalizedPhone string) ([]entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []entity.Order
	for _, o := range readList[entity.Order](s, ordersFile) {
		if phone.Normalize(o.CustomerPhone) == normalizedPhone {
			matched = append(matched, o)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *Store) UpdateOrderStatus(id, status string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := readList[entity.Order](s, ordersFile)
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			orders[i].UpdatedAt = time.Now().UTC()
			if err := writeList(s, ordersFile, orders); err != nil {
				return nil, err
			}
			return &orders[i], nil
		}
	}
	return nil, nil
}
