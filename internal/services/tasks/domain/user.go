package domain

import "strings"

// Role is the closed set of persisted user roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is an identity record owned by the authentication subsystem. The task
// core only reads id, email, and role membership.
type User struct {
	ID    string
	Email string
	Role  Role
}

// Authority literals carried by caller credentials.
const (
	AuthorityAdmin = "ROLE_ADMIN"
	AuthorityUser  = "ROLE_USER"
)

// Caller identifies who is performing an operation: the email used as the
// identity key plus the authority strings granted by the auth layer.
type Caller struct {
	Email       string
	Authorities []string
}

// AccessRole is the caller authorization resolved once per call.
type AccessRole int

const (
	AccessUnauthorized AccessRole = iota
	AccessAdmin
	AccessUser
)

// String returns the access role name for logs and errors.
func (r AccessRole) String() string {
	switch r {
	case AccessAdmin:
		return "admin"
	case AccessUser:
		return "user"
	default:
		return "unauthorized"
	}
}

// ResolveAccessRole maps caller authorities to an access role. Admin wins when
// both authorities are present; anything else is unauthorized.
func (c Caller) ResolveAccessRole() AccessRole {
	role := AccessUnauthorized
	for _, authority := range c.Authorities {
		switch strings.TrimSpace(authority) {
		case AuthorityAdmin:
			return AccessAdmin
		case AuthorityUser:
			role = AccessUser
		}
	}
	return role
}

// Authorities returns the authority strings for a persisted role.
func (r Role) Authorities() []string {
	switch r {
	case RoleAdmin:
		return []string{AuthorityAdmin, AuthorityUser}
	case RoleUser:
		return []string{AuthorityUser}
	default:
		return nil
	}
}
