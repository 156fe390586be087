package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is one of the two flat roles a user can hold.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleVacationer Role = "Vacationer"
)

// Roles lists every role bootstrapped at startup.
var Roles = []Role{RoleAdmin, RoleVacationer}

// DefaultAvatarURL is used for users whose identity provider supplies no picture.
const DefaultAvatarURL = "https://panoramix.cg.helmo.be/~e200072/picture/user.png"

// User is an identity known to the application. Credentials live with the
// external identity provider; only profile data is stored here.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	FirstName string    `json:"first_name"`
	AvatarURL string    `json:"avatar_url"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ExternalIdentity is what an identity provider vouches for after verifying
// one of its tokens.
type ExternalIdentity struct {
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}
