package shared

// Identity describes the authenticated caller of a request.
type Identity struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Groups   []string `json:"groups"`
}

// GroupsOf returns the caller's groups; anonymous callers belong to none.
func GroupsOf(id *Identity) []string {
	if id == nil {
		return nil
	}
	return id.Groups
}

// InGroup reports whether the identity is a member of the named group.
func (id *Identity) InGroup(name string) bool {
	if id == nil {
		return false
	}
	for _, g := range id.Groups {
		if g == name {
			return true
		}
	}
	return false
}
