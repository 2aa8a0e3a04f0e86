package auth

// Claims representa la información del usuario autenticado.
// SessionID es la cookie "sid" de la API de SaludHogar; se reenvía tal cual.
type Claims struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	SessionID string
}
