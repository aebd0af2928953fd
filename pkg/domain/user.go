package domain

// Privilege is an ordered access level. Lower values grant MORE access:
// 0 is the highest privilege in this system. Authorization checks rely on
// this inverted ordering; do not change it to an ascending scale.
type Privilege int

const (
	// PrivilegeAdmin is the highest privilege (station listing, full access).
	PrivilegeAdmin Privilege = 0
	// PrivilegeUser is a regular authenticated caller.
	PrivilegeUser Privilege = 1
)

// Allows reports whether a holder of p may use an operation that requires
// at most required (lower = more privileged).
func (p Privilege) Allows(required Privilege) bool {
	return p <= required
}

// Credentials is a transient login pair. It is constructed per login attempt
// and never persisted by this service.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// User is the stored identity record. PasswordHash is a bcrypt hash and is
// never serialized into responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Privilege    Privilege `json:"privilege"`
	PasswordHash string    `json:"-"`
}
