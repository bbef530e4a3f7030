package identity

// Role is the storefront actor role carried in the access token.
// Token issuance happens in the auth service; this service only consumes
// the role for transition authority and route gating.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsBackoffice reports whether the role belongs to the fulfillment /
// administrative side.
func (r Role) IsBackoffice() bool {
	return r == RoleStaff || r == RoleAdmin
}
