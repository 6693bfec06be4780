package domain

import "time"

const (
	RoleAdmin        = "admin"
	RoleClient       = "client"
	RoleProfessional = "professional"
)

// User models an authenticated actor: a client looking for a service, a
// professional offering one, or a platform operator. AccountID links the
// credential record to the profile/identity owned by that actor.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AccountID    string    `json:"account_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
