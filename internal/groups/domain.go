// Package groups manages group membership, the input of every
// authorization decision.
package groups

// Group is an authorization tag with its member count.
type Group struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// Membership is the grant payload.
type Membership struct {
	UserID int64 `json:"user" validate:"required,gt=0"`
}
