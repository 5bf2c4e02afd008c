package rbac

// Group names referenced by the directory policies.
const (
	GroupMember  = "member"
	GroupAdmin   = "admin"
	GroupBizPost = "biz_post"
	GroupBizEdit = "biz_edit"
)

// NewRegistry returns the directory's authorization table. Directory reads
// are public; every write needs membership in one of the listed groups. The
// audit trail and group membership are admin only.
func NewRegistry() Registry {
	return Registry{
		ResourceBiz: {
			ActionList:          {AllGroups},
			ActionRetrieve:      {AllGroups},
			ActionCreate:        {GroupMember, GroupBizPost},
			ActionUpdate:        {GroupMember, GroupBizEdit},
			ActionPartialUpdate: {GroupMember, GroupBizEdit},
			ActionDestroy:       {GroupMember, GroupAdmin},
		},
		ResourceHours: {
			ActionList:          {AllGroups},
			ActionRetrieve:      {AllGroups},
			ActionCreate:        {GroupMember},
			ActionUpdate:        {GroupMember},
			ActionPartialUpdate: {GroupMember},
			ActionDestroy:       {GroupMember, GroupAdmin},
		},
		ResourceComment: {
			ActionList:          {AllGroups},
			ActionRetrieve:      {AllGroups},
			ActionCreate:        {GroupMember},
			ActionUpdate:        {GroupMember},
			ActionPartialUpdate: {GroupMember},
			ActionDestroy:       {GroupMember, GroupAdmin},
		},
		ResourceAudit: {
			ActionList: {GroupAdmin},
		},
		ResourceGroup: {
			ActionList:    {GroupAdmin},
			ActionCreate:  {GroupAdmin},
			ActionDestroy: {GroupAdmin},
		},
	}
}

// LegacyRegistry reproduces the table the directory originally shipped with:
// full updates were keyed as "upate" and single-object reads had no entry,
// so both fall through to deny.
func LegacyRegistry() Registry {
	reg := NewRegistry()
	for _, policy := range reg {
		if groups, ok := policy[ActionUpdate]; ok {
			policy["upate"] = groups
			delete(policy, ActionUpdate)
		}
		delete(policy, ActionRetrieve)
	}
	return reg
}
