package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NegotiationTypeBuy   = "BUY"
	NegotiationTypeSell  = "SELL"
	NegotiationTypeTrade = "TRADE"
)

const (
	NegotiationPending    = "PENDING"
	NegotiationInProgress = "IN_PROGRESS"
	NegotiationCompleted  = "COMPLETED"
	NegotiationCancelled  = "CANCELLED"
)

// GenericCar marks a negotiation that is not attached to a catalog vehicle.
const GenericCar = "generic"

// Negotiation is a customer-initiated discussion about buying or selling
// a vehicle. The customer phone (digits only) is the durable identity.
type Negotiation struct {
	ID                 string    `json:"id" bson:"_id" gorm:"primaryKey"`
	CarID              string    `json:"carId" bson:"car_id"`
	CustomerName       string    `json:"customerName" bson:"customer_name"`
	CustomerPhone      string    `json:"customerPhone" bson:"customer_phone" gorm:"index"`
	CustomerEmail      string    `json:"customerEmail" bson:"customer_email"`
	Type               string    `json:"type" bson:"type"`
	Status             string    `json:"status" bson:"status"`
	VehicleName        string    `json:"vehicleName,omitempty" bson:"vehicle_name,omitempty"`
	VehicleBrand       string    `json:"vehicleBrand,omitempty" bson:"vehicle_brand,omitempty"`
	VehicleYear        int       `json:"vehicleYear,omitempty" bson:"vehicle_year,omitempty"`
	VehicleMileage     int       `json:"vehicleMileage,omitempty" bson:"vehicle_mileage,omitempty"`
	VehicleDescription string    `json:"vehicleDescription,omitempty" bson:"vehicle_description,omitempty"`
	ProposedPrice      float64   `json:"proposedPrice,omitempty" bson:"proposed_price,omitempty"`
	CreatedAt          time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updated_at"`
}

func NewNegotiation(carID, customerName, customerPhone, customerEmail, negType string) *Negotiation {
	if carID == "" {
		carID = GenericCar
	}
	now := time.Now().UTC()
	return &Negotiation{
		ID:            "neg-" + uuid.NewString(),
		CarID:         carID,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		CustomerEmail: customerEmail,
		Type:          NormalizeNegotiationType(negType),
		Status:        NegotiationPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NormalizeNegotiationType maps the historical Portuguese values onto the
// current enum. Unknown or empty values default to BUY.
func NormalizeNegotiationType(t string) string {
	switch t {
	case NegotiationTypeBuy, "COMPRA":
		return NegotiationTypeBuy
	case NegotiationTypeSell, "VENDA":
		return NegotiationTypeSell
	case NegotiationTypeTrade, "TROCA":
		return NegotiationTypeTrade
	}
	return NegotiationTypeBuy
}

func ValidNegotiationStatus(s string) bool {
	switch s {
	case NegotiationPending, NegotiationInProgress, NegotiationCompleted, NegotiationCancelled:
		return true
	}
	return false
}

// TerminalNegotiationStatus reports whether no further transitions are
// allowed out of s.
func TerminalNegotiationStatus(s string) bool {
	return s == NegotiationCompleted || s == NegotiationCancelled
}

// Open reports whether the negotiation still accepts a quick-start reuse.
// "OPEN" is a legacy status kept for records written by earlier releases.
func (n *Negotiation) Open() bool {
	return n.Status == NegotiationPending || n.Status == NegotiationInProgress || n.Status == "OPEN"
}
