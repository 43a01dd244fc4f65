package auth

// Claims representa la información extraída del token.
// OrganizationID es la granja/organización del usuario; puede venir vacío.
type Claims struct {
	UserID         string
	Email          string
	OrganizationID string
}
