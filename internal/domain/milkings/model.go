package milkings

import (
	"time"

	"github.com/shopspring/decimal"
)

// Milking es un ordeñe registrado para un animal. Quantity en litros.
type Milking struct {
	ID             string
	AnimalID       string
	OrganizationID string
	AnimalTypeID   string

	Quantity decimal.Decimal

	UserCreatedID string
	CreatedAt     time.Time
	DeletedAt     *time.Time
}
