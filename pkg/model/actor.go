package model

type Role string

const (
	RoleOwner  Role = "owner"
	RoleRenter Role = "renter"
)

func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleRenter
}

// Actor is the caller of an engine operation, as asserted by the auth gateway.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Owns reports whether the actor acts as owner and is the owner of record.
func (a Actor) Owns(p *Property) bool {
	return p != nil && a.Role == RoleOwner && a.ID != "" && a.ID == p.Owner
}
