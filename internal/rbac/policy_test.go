package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var groupSets = [][]string{
	nil,
	{},
	{GroupMember},
	{GroupAdmin, GroupBizPost},
	{"unrelated"},
}

func TestAuthorizeAllSentinelAllowsEveryone(t *testing.T) {
	reg := Registry{ResourceBiz: {ActionList: {AllGroups}}}
	for _, groups := range groupSets {
		assert.True(t, reg.Authorize(groups, ResourceBiz, ActionList), "groups=%v", groups)
	}
}

func TestAuthorizeAllSentinelMixedWithGroups(t *testing.T) {
	reg := Registry{ResourceBiz: {ActionList: {GroupAdmin, AllGroups}}}
	assert.True(t, reg.Authorize(nil, ResourceBiz, ActionList))
}

func TestAuthorizeMissingEntryDenies(t *testing.T) {
	reg := Registry{ResourceBiz: {ActionList: {AllGroups}}}
	for _, groups := range groupSets {
		assert.False(t, reg.Authorize(groups, ResourceBiz, ActionCreate), "missing action, groups=%v", groups)
		assert.False(t, reg.Authorize(groups, ResourceHours, ActionList), "missing resource, groups=%v", groups)
	}
}

func TestAuthorizeUnknownActionDenies(t *testing.T) {
	reg := Registry{ResourceBiz: {"publish": {AllGroups}}}
	assert.False(t, reg.Authorize([]string{GroupAdmin}, ResourceBiz, "publish"))
}

func TestAuthorizeEmptyEntryDenies(t *testing.T) {
	reg := Registry{ResourceBiz: {ActionDestroy: {}}}
	assert.False(t, reg.Authorize([]string{GroupAdmin}, ResourceBiz, ActionDestroy))
}

func TestAuthorizeNilRegistryDenies(t *testing.T) {
	var reg Registry
	assert.False(t, reg.Authorize([]string{GroupAdmin}, ResourceBiz, ActionList))
}

func TestAuthorizeIsAnOrPolicy(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		groups   []string
		want     bool
	}{
		{"single match", []string{GroupMember, GroupBizPost}, []string{GroupMember}, true},
		{"second listed group", []string{GroupMember, GroupBizPost}, []string{GroupBizPost}, true},
		{"both", []string{GroupMember, GroupBizPost}, []string{GroupBizPost, GroupMember}, true},
		{"no intersection", []string{GroupMember, GroupAdmin}, []string{GroupBizPost, GroupBizEdit}, false},
		{"anonymous", []string{GroupMember}, nil, false},
		{"duplicates in caller set", []string{GroupAdmin}, []string{GroupMember, GroupMember}, false},
		{"case sensitive", []string{GroupAdmin}, []string{"Admin"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := Registry{ResourceComment: {ActionCreate: tt.required}}
			assert.Equal(t, tt.want, reg.Authorize(tt.groups, ResourceComment, ActionCreate))
		})
	}
}

func TestAuthorizeDocumentedScenarios(t *testing.T) {
	reg := Registry{ResourceBiz: {
		ActionCreate:  {GroupMember, GroupBizPost},
		ActionDestroy: {GroupMember, GroupAdmin},
	}}
	assert.True(t, reg.Authorize([]string{GroupMember}, ResourceBiz, ActionCreate))
	// member is listed for destroy; see the no-intersection case below.
	assert.True(t, reg.Authorize([]string{GroupMember, GroupBizPost}, ResourceBiz, ActionDestroy))

	reg = Registry{ResourceBiz: {ActionDestroy: {GroupAdmin}}}
	assert.False(t, reg.Authorize([]string{GroupMember, GroupBizPost}, ResourceBiz, ActionDestroy))
}

func TestNewRegistryCoversEveryAction(t *testing.T) {
	reg := NewRegistry()
	actions := []Action{ActionList, ActionCreate, ActionRetrieve, ActionUpdate, ActionPartialUpdate, ActionDestroy}
	for _, res := range []Resource{ResourceBiz, ResourceHours, ResourceComment} {
		policy, ok := reg[res]
		if !assert.True(t, ok, "resource %s", res) {
			continue
		}
		for _, action := range actions {
			assert.NotEmpty(t, policy[action], "%s/%s", res, action)
		}
		assert.Equal(t, policy[ActionUpdate], policy[ActionPartialUpdate], "%s update and partial_update share groups", res)
	}
}

func TestNewRegistryDirectoryRules(t *testing.T) {
	reg := NewRegistry()

	assert.True(t, reg.Authorize(nil, ResourceBiz, ActionList))
	assert.True(t, reg.Authorize(nil, ResourceComment, ActionRetrieve))
	assert.False(t, reg.Authorize(nil, ResourceHours, ActionCreate))

	assert.True(t, reg.Authorize([]string{GroupBizPost}, ResourceBiz, ActionCreate))
	assert.False(t, reg.Authorize([]string{GroupBizPost}, ResourceBiz, ActionUpdate))
	assert.True(t, reg.Authorize([]string{GroupBizEdit}, ResourceBiz, ActionPartialUpdate))
	assert.False(t, reg.Authorize([]string{GroupBizEdit}, ResourceHours, ActionPartialUpdate))
	assert.True(t, reg.Authorize([]string{GroupAdmin}, ResourceComment, ActionDestroy))
	assert.False(t, reg.Authorize([]string{GroupAdmin}, ResourceComment, ActionCreate))
}

func TestNewRegistryReturnsIndependentTables(t *testing.T) {
	a := NewRegistry()
	a[ResourceBiz][ActionCreate] = []string{"nobody"}
	b := NewRegistry()
	assert.True(t, b.Authorize([]string{GroupBizPost}, ResourceBiz, ActionCreate))
}

func TestLegacyRegistryDeniesFullUpdateAndRetrieve(t *testing.T) {
	reg := LegacyRegistry()
	admin := []string{GroupMember, GroupAdmin, GroupBizEdit}
	for _, res := range []Resource{ResourceBiz, ResourceHours, ResourceComment} {
		assert.False(t, reg.Authorize(admin, res, ActionUpdate), "%s update", res)
		assert.False(t, reg.Authorize(admin, res, ActionRetrieve), "%s retrieve", res)
		assert.False(t, reg.Authorize(admin, res, "upate"), "%s misspelled key is not an action", res)
		assert.True(t, reg.Authorize(admin, res, ActionPartialUpdate), "%s partial_update", res)
	}
}

func TestActionKnown(t *testing.T) {
	assert.True(t, ActionPartialUpdate.Known())
	assert.False(t, Action("upate").Known())
	assert.False(t, Action("").Known())
}

func TestNewRegistryAuditTrailAdminOnly(t *testing.T) {
	reg := NewRegistry()
	assert.True(t, reg.Authorize([]string{GroupAdmin}, ResourceAudit, ActionList))
	assert.False(t, reg.Authorize([]string{GroupMember}, ResourceAudit, ActionList))
	assert.False(t, reg.Authorize(nil, ResourceAudit, ActionList))
	assert.False(t, reg.Authorize([]string{GroupAdmin}, ResourceAudit, ActionDestroy))
}

func TestNewRegistryGroupManagementAdminOnly(t *testing.T) {
	reg := NewRegistry()
	for _, action := range []Action{ActionList, ActionCreate, ActionDestroy} {
		assert.True(t, reg.Authorize([]string{GroupAdmin}, ResourceGroup, action), action)
		assert.False(t, reg.Authorize([]string{GroupMember, GroupBizEdit}, ResourceGroup, action), action)
	}
	assert.False(t, reg.Authorize([]string{GroupAdmin}, ResourceGroup, ActionUpdate))
}
