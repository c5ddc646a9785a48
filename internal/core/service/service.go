// Package service implements the Service Manager: boot-ordered discovery,
// default/override/sole resolution, and lifecycle dispatch for the core's
// long-lived in-process services.
package service

import "context"

// Role is the slot a discovered service claims during resolution.
type Role int

const (
	// RoleSole is the zero value: an untagged service that must be the
	// only claimant of its own kind.
	RoleSole Role = iota
	// RoleDefault claims its own kind's slot only while it is empty; a later
	// override replaces it, and a later default for the same kind is ignored.
	RoleDefault
	// RoleOverride replaces a default (or claims an empty slot) for a kind
	// other than its own, pre-empting later defaults for that kind.
	RoleOverride
)

// Status reflects the outcome of resolving and booting a service.
type Status int

const (
	StatusPending Status = iota
	StatusActive
	StatusFailed
)

// Service is the capability set every boot-participating component
// implements. Kind is the lookup identity; Priority orders prepare/start
// ascending and shutdown descending.
type Service interface {
	Kind() string
	Priority() int
	Prepare(ctx context.Context) error
	Start(ctx context.Context) error
	OnComplete(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// RoleProvider is implemented by services that want to be a default or an
// override rather than the implicit sole role. overrideKind is only
// meaningful when the returned Role is RoleOverride.
type RoleProvider interface {
	Role() (role Role, overrideKind string)
}

func roleOf(svc Service) (Role, string) {
	if rp, ok := svc.(RoleProvider); ok {
		return rp.Role()
	}
	return RoleSole, ""
}
