package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleClient     Role = "client"
	RoleRunner     Role = "runner"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Capability names one action a role may perform.
type Capability string

const (
	CapPostTask        Capability = "task:post"
	CapRunTask         Capability = "task:run"
	CapCancelTask      Capability = "task:cancel"
	CapViewAllTasks    Capability = "task:list"
	CapMarkPaid        Capability = "task:mark_paid"
	CapFindRunner      Capability = "matching:find"
	CapReview          Capability = "review:submit"
	CapModerateReviews Capability = "review:moderate"
	CapUseWallet       Capability = "wallet:use"
	CapViewAnyWallet   Capability = "wallet:view_any"
	CapViewLedger      Capability = "ledger:view"
	CapViewAnalytics   Capability = "analytics:view"
	CapPay             Capability = "payment:initiate"
)

type capabilitySet map[Capability]struct{}

func caps(cs ...Capability) capabilitySet {
	set := make(capabilitySet, len(cs))
	for _, c := range cs {
		set[c] = struct{}{}
	}
	return set
}

var adminCapabilities = caps(
	CapCancelTask, CapViewAllTasks, CapMarkPaid, CapFindRunner,
	CapModerateReviews, CapUseWallet, CapViewAnyWallet, CapViewLedger, CapViewAnalytics,
)

var roleCapabilities = map[Role]capabilitySet{
	RoleClient:     caps(CapPostTask, CapCancelTask, CapFindRunner, CapReview, CapUseWallet, CapPay),
	RoleRunner:     caps(CapRunTask, CapReview, CapUseWallet),
	RoleAdmin:      adminCapabilities,
	RoleSuperAdmin: adminCapabilities,
}

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := roleCapabilities[r]
	return r, ok
}

// Can reports whether the role holds capability c.
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}

// IsAdmin is true for admin and superadmin.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// SelfRegistrable reports whether the role may be chosen at signup.
func (r Role) SelfRegistrable() bool {
	return r == RoleClient || r == RoleRunner
}

// User is a marketplace account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Verified     bool      `json:"verified"`
	Location     *GeoPoint `json:"location,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LastKnownLocation returns the stored location or the origin when unknown.
func (u *User) LastKnownLocation() GeoPoint {
	if u.Location == nil {
		return GeoPoint{}
	}
	return *u.Location
}
