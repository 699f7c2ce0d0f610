package usecase

import (
	"context"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
)

// Policy is the access requirement attached to one operation.
type Policy struct {
	// Public operations skip authentication entirely.
	Public bool
	// RequiredRole, when set, must be satisfied by the caller's role.
	RequiredRole entity.Role
	// OwnershipScoped operations also require the caller to own the target resource, unless ADMIN.
	OwnershipScoped bool
}

// PublicPolicy allows anyone.
func PublicPolicy() Policy {
	return Policy{Public: true}
}

// AuthenticatedPolicy allows any holder of a valid token.
func AuthenticatedPolicy() Policy {
	return Policy{}
}

// RolePolicy allows holders of a valid token whose role satisfies role.
func RolePolicy(role entity.Role) Policy {
	return Policy{RequiredRole: role}
}

// OwnerPolicy allows the owner of the target resource, and ADMIN.
func OwnerPolicy() Policy {
	return Policy{RequiredRole: entity.RoleUser, OwnershipScoped: true}
}

// Label names the policy for logs and metrics.
func (p Policy) Label() string {
	switch {
	case p.Public:
		return "public"
	case p.OwnershipScoped:
		return "owner"
	case p.RequiredRole != "":
		return "role:" + p.RequiredRole.String()
	default:
		return "authenticated"
	}
}

// AccessRequest is everything the guard needs to decide one request.
type AccessRequest struct {
	Policy Policy
	// Authorization is the raw Authorization header value, possibly empty.
	Authorization string
	// ResourceID identifies the target of an ownership-scoped operation; nil when absent or unparsable.
	ResourceID *uuid.UUID
}

// AccessResult is returned for allowed requests. Principal is nil for public access.
type AccessResult struct {
	Principal *entity.Principal
}

// AccessGuard decides whether a request may proceed.
type AccessGuard interface {
	Authorize(ctx context.Context, req AccessRequest) (*AccessResult, error)
}
