// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is a registered identity. PasswordHash is the only form in which
// the password is ever kept; the raw password never reaches this struct.
type Account struct {
	ID           uuid.UUID // The Global Unique Identifier (GUID) for the account.
	Email        string    // Login identifier, stored lower-cased.
	DisplayName  string    // The account's display name.
	PasswordHash string    // bcrypt hash of the password.
	Role         Role      // Permission tier, USER unless promoted.
	CreatedAt    time.Time // Timestamp of when the account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to the account.
}

// Principal returns the authenticated identity view of the account.
func (a *Account) Principal() Principal {
	return Principal{
		AccountID: a.ID,
		Email:     a.Email,
		Role:      a.Role,
	}
}

// Principal is the identity established for a request, either from a verified
// credential at login or from a verified bearer token.
type Principal struct {
	AccountID uuid.UUID
	Email     string
	Role      Role
}

// NormalizeEmail trims and lower-cases an email so lookups and the uniqueness
// constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
