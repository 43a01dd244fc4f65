package lifecycle

import (
	"time"

	"livestock-ledger/internal/domain/animals"

	"github.com/shopspring/decimal"
)

// SaleStatus es el ciclo de vida del registro de venta, distinto del estado del animal.
// ACTIVE = venta registrada y abierta; SOLD = venta confirmada.
// @Enum ACTIVE, SOLD
type SaleStatus string

const (
	SaleActive SaleStatus = "ACTIVE"
	SaleSold   SaleStatus = "SOLD"
)

func (s SaleStatus) Valid() bool {
	return s == SaleActive || s == SaleSold
}

type Sale struct {
	ID             string
	AnimalID       string
	OrganizationID string

	Status SaleStatus
	Date   time.Time
	Price  decimal.Decimal
	SoldTo string
	Note   string

	UserCreatedID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

func (s Sale) Deleted() bool { return s.DeletedAt != nil }

type Death struct {
	ID             string
	AnimalID       string
	OrganizationID string
	AnimalTypeID   string

	Number int
	Male   int
	Female int

	UserCreatedID string
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

// SaleInput: campos nil no se tocan (UpdateSaleStatus) o toman default (RecordSale).
type SaleInput struct {
	Date   *time.Time
	Price  *decimal.Decimal
	SoldTo *string
	Note   *string

	UserID string
}

// SaleFilter se construye una vez por llamada; el store aplica el filtro de soft-delete
// salvo que IncludeDeleted sea true.
type SaleFilter struct {
	AnimalID       string
	OrganizationID string
	Status         SaleStatus
	IncludeDeleted bool
}

type DeathFilter struct {
	AnimalID       string
	OrganizationID string
	AnimalTypeID   string
}

// deathFor arma la fila de muerte a partir del animal: una cabeza, sexada según el animal.
func deathFor(a animals.Animal, userID string, id string, at time.Time) Death {
	d := Death{
		ID:             id,
		AnimalID:       a.ID,
		OrganizationID: a.OrganizationID,
		AnimalTypeID:   a.AnimalTypeID,
		Number:         1,
		UserCreatedID:  userID,
		CreatedAt:      at,
	}
	switch a.Gender {
	case animals.GenderMale:
		d.Male = 1
	case animals.GenderFemale:
		d.Female = 1
	}
	return d
}
