// Package gate holds authorization rules: per-owner resource scoping, the
// admin bypass, and the free-plan client quota.
package gate

import "context"

// Action describes what the caller is attempting.
type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Policy decides whether a user may perform an action on a resource.
// For list/create, resource may be nil (context-only check).
type Policy interface {
	Can(ctx context.Context, userID uint, action Action, resource any) bool
}

// Ownable is implemented by models that belong to exactly one user.
type Ownable interface {
	GetOwnerID() uint
}

// OwnershipPolicy allows access only to resources the user owns.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy { return &OwnershipPolicy{} }

// Can checks if the user owns the resource. With no specific resource there
// is nothing to own, so list/create pass through.
func (p *OwnershipPolicy) Can(_ context.Context, userID uint, _ Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		// Resources without ownership information are denied by default.
		return false
	}
	return ownable.GetOwnerID() == userID
}

// AdminBypassPolicy wraps another policy and always allows admins through.
type AdminBypassPolicy struct {
	inner       Policy
	isAdminFunc func(ctx context.Context, userID uint) bool
}

func NewAdminBypassPolicy(inner Policy, isAdminFunc func(ctx context.Context, userID uint) bool) *AdminBypassPolicy {
	return &AdminBypassPolicy{inner: inner, isAdminFunc: isAdminFunc}
}

func (p *AdminBypassPolicy) Can(ctx context.Context, userID uint, action Action, resource any) bool {
	if p.isAdminFunc(ctx, userID) {
		return true
	}
	return p.inner.Can(ctx, userID, action, resource)
}
