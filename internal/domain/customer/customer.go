package customer

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the engine's read model of a customer record, owned by the
// customer directory collaborator.
type Customer struct {
	ID            uuid.UUID `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	LicenseNumber string    `json:"license_number"`
	Blacklisted   bool      `json:"blacklisted"`
	CreatedAt     time.Time `json:"created_at"`
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
