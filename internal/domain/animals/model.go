package animals

import "time"

// Status es el estado de ciclo de vida del animal.
// Solo el módulo lifecycle lo cambia; acá es de solo lectura.
// @Enum ACTIVE, SOLD, DEAD
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusSold   Status = "SOLD"
	StatusDead   Status = "DEAD"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusDead:
		return true
	}
	return false
}

// Gender define el sexo del animal.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), true
	case GenderUnknown, "":
		return GenderUnknown, true
	}
	return "", false
}

// Animal representa un animal registrado en una organización (granja).
type Animal struct {
	ID             string
	Code           string // único por organización; lo usa la venta masiva
	OrganizationID string
	AnimalTypeID   string

	Gender Gender
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter es inmutable; se construye una vez por request.
type ListFilter struct {
	OrganizationID string
	AnimalTypeID   string
	Status         Status // vacío = todos
}
