package filestore

import (
	"sort"
	"time"

	"autopier/entity"
	"autopier/internal/lib/phone"
)

func (s *Store) SaveNegotiation(n entity.Negotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	negotiations := readList[entity.Negotiation](s, negotiationsFile)
	negotiations = append(negotiations, n)
	return writeList(s, negotiationsFile, negotiations)
}

func (s *Store) GetNegotiationByID(id string) (*entity.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range readList[entity.Negotiation](s, negotiationsFile) {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, nil
}

// GetNegotiations returns all negotiations, newest first.
func (s *Store) GetNegotiations() ([]entity.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	negotiations := readList[entity.Negotiation](s, negotiationsFile)
	sort.SliceStable(negotiations, func(i, j int) bool {
		return negotiations[i].CreatedAt.After(negotiations[j].CreatedAt)
	})
	return negotiations, nil
}

func (s *Store) GetNegotiationsByPhone(normalizedPhone string) ([]entity.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []entity.Negotiation
	for _, n := range readList[entity.Negotiation](s, negotiationsFile) {
		if phone.Normalize(n.CustomerPhone) == normalizedPhone {
			matched = append(matched, n)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	return matched, nil
}

func (s *Store) UpdateNegotiationStatus(id, status string) (*entity.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	negotiations := readList[entity.Negotiation](s, negotiationsFile)
	for i := range negotiations {
		if negotiations[i].ID == id {
			negotiations[i].Status = status
			negotiations[i].UpdatedAt = time.Now().UTC()
			if err := writeList(s, negotiationsFile, negotiations); err != nil {
				return nil, err
			}
			return &negotiations[i], nil
		}
	}
	return nil, nil
}
