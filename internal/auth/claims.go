package auth

import "github.com/golang-jwt/jwt/v5"

// Roles for the back-office API. Dispatchers read bookings; admins can also
// trigger outbound lead calls.
const (
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
)

// Claims are the only supported JWT claims shape for this service.
type Claims struct {
	jwt.RegisteredClaims

	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
