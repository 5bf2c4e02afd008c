// Package rbac holds the group-based authorization policy guarding the
// directory resources.
package rbac

// Resource names a guarded resource type.
type Resource string

// Guarded resource types.
const (
	ResourceBiz     Resource = "biz"
	ResourceHours   Resource = "hours"
	ResourceComment Resource = "comment"
	ResourceAudit   Resource = "audit"
	ResourceGroup   Resource = "group"
)

// Action names a CRUD operation on a resource.
type Action string

// Known actions.
const (
	ActionList          Action = "list"
	ActionCreate        Action = "create"
	ActionRetrieve      Action = "retrieve"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

// AllGroups lifts the group restriction of a policy entry.
const AllGroups = "__all__"

var knownActions = map[Action]struct{}{
	ActionList:          {},
	ActionCreate:        {},
	ActionRetrieve:      {},
	ActionUpdate:        {},
	ActionPartialUpdate: {},
	ActionDestroy:       {},
}

// Known reports whether a is one of the CRUD actions.
func (a Action) Known() bool {
	_, ok := knownActions[a]
	return ok
}

// Policy maps actions to the groups allowed to perform them.
type Policy map[Action][]string

// Registry holds one Policy per resource type. It is built once at startup
// and only read afterwards.
type Registry map[Resource]Policy

// Authorize decides whether a caller in groups may perform action on res.
// Membership in any one listed group suffices. Missing entries and unknown
// actions deny.
func (r Registry) Authorize(groups []string, res Resource, action Action) bool {
	if !action.Known() {
		return false
	}
	policy, ok := r[res]
	if !ok {
		return false
	}
	required, ok := policy[action]
	if !ok {
		return false
	}
	return allows(required, groups)
}

func allows(required, groups []string) bool {
	if len(required) == 0 {
		return false
	}
	for _, g := range required {
		if g == AllGroups {
			return true
		}
	}
	member := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		member[g] = struct{}{}
	}
	for _, g := range required {
		if _, ok := member[g]; ok {
			return true
		}
	}
	return false
}
