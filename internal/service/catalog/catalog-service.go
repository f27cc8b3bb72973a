// Package catalog is the read-only vehicle lookup consumed by the chat
// and checkout flows. The inventory is seeded in-process; unknown ids
// resolve to a placeholder so a stale link never breaks a conversation.
package catalog

import (
	"log/slog"

	"autopier/entity"
	"autopier/internal/lib/sl"
)

type Service struct {
	cars []entity.Car
	log  *slog.Logger
}

func NewCatalogService(logger *slog.Logger) *Service {
	return &Service{
		cars: seedCars(),
		log:  logger.With(sl.Module("catalog-service")),
	}
}

// CarByID resolves a catalog vehicle, falling back to a generic
// placeholder when the id is unknown.
func (s *Service) CarByID(id string) entity.Car {
	for _, car := range s.cars {
		if car.ID == id {
			return car
		}
	}
	return entity.Car{ID: id, Name: "Veículo", Brand: "N/A", Year: 2024}
}

func (s *Service) Cars() []entity.Car {
	out := make([]entity.Car, len(s.cars))
	copy(out, s.cars)
	return out
}

func seedCars() []entity.Car {
	return []entity.Car{
		{ID: "suv-1", Name: "Volkswagen T-Cross", Brand: "Volkswagen", Year: 2024, Price: 139900, ImageURL: "https://images.unsplash.com/photo-1606664515524-ed2f786a0bd6?w=800"},
		{ID: "suv-2", Name: "Hyundai Creta", Brand: "Hyundai", Year: 2024, Price: 149900, ImageURL: "https://images.unsplash.com/photo-1619682817481-e994891cd1f5?w=800"},
		{ID: "suv-3", Name: "Honda HR-V", Brand: "Honda", Year: 2024, Price: 159900, ImageURL: "https://images.unsplash.com/photo-1621007947382-bb3c3994e3fb?w=800"},
		{ID: "esp-1", Name: "BMW X5 M Sport", Brand: "BMW", Year: 2024, Price: 589000, ImageURL: "https://images.unsplash.com/photo-1555215695-3004980ad54e?w=800"},
		{ID: "esp-2", Name: "Mercedes-Benz C300", Brand: "Mercedes-Benz", Year: 2023, Price: 389000, ImageURL: "https://images.unsplash.com/photo-1618843479313-40f8afb4b4d8?w=800"},
		{ID: "esp-3", Name: "BMW M5 Competition", Brand: "BMW", Year: 2024, Price: 899000, ImageURL: "https://images.unsplash.com/photo-1555215695-3004980ad54e?w=800"},
		{ID: "sedan-1", Name: "Chevrolet Onix Plus", Brand: "Chevrolet", Year: 2024, Price: 89900, ImageURL: "https://images.unsplash.com/photo-1590362891991-f776e747a588?w=800"},
		{ID: "sedan-2", Name: "Hyundai HB20S", Brand: "Hyundai", Year: 2024, Price: 94900, ImageURL: "https://images.unsplash.com/photo-1609521263047-f8f205293f24?w=800"},
	}
}
