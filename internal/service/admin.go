package service

// AdminGate is the single capability check for elevated operations.
type AdminGate struct {
	adminID int64
}

func NewAdminGate(adminID int64) AdminGate {
	return AdminGate{adminID: adminID}
}

// IsAdmin reports whether id is the configured administrator. An unset
// admin id (zero) never matches.
func (g AdminGate) IsAdmin(id int64) bool {
	return g.adminID != 0 && id == g.adminID
}

// AdminID returns the configured administrator id, zero when unset.
func (g AdminGate) AdminID() int64 {
	return g.adminID
}
