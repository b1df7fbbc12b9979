package auth

// Gate decides whether a caller identity belongs to a privileged operator.
type Gate struct {
	admins map[int64]struct{}
}

// NewGate creates a gate from the configured allow-list.
func NewGate(adminIDs []int64) *Gate {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Gate{admins: admins}
}

// IsPrivileged reports whether the caller may operate on certificates.
// An empty allow-list opens the gate to everyone; this mirrors the
// first-run bootstrap behavior of the deployment and is intentional.
func (g *Gate) IsPrivileged(callerID int64) bool {
	if len(g.admins) == 0 {
		return true
	}
	_, ok := g.admins[callerID]
	return ok
}
