package models

type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleCustomer      Role = "Customer"
)

// Identity is the caller derived from a verified credential. It lives for one
// request and is never persisted.
type Identity struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleCustomer
}

func (i Identity) IsZero() bool {
	return i.Name == "" && i.Role == ""
}
