package auth

import "strings"

// Permission 项目内权限, 以"资源:动作"形式组织
type Permission string

const (
	PermProjectView   Permission = "project:view"
	PermProjectModify Permission = "project:modify"
	PermProjectDelete Permission = "project:delete"
	PermProjectAdmin  Permission = "project:admin"

	PermUserStoryView   Permission = "userstory:view"
	PermUserStoryAdd    Permission = "userstory:add"
	PermUserStoryModify Permission = "userstory:modify"
	PermUserStoryDelete Permission = "userstory:delete"

	PermTaskView   Permission = "task:view"
	PermTaskAdd    Permission = "task:add"
	PermTaskModify Permission = "task:modify"
	PermTaskDelete Permission = "task:delete"

	PermIssueView   Permission = "issue:view"
	PermIssueAdd    Permission = "issue:add"
	PermIssueModify Permission = "issue:modify"
	PermIssueDelete Permission = "issue:delete"

	PermEpicView   Permission = "epic:view"
	PermEpicAdd    Permission = "epic:add"
	PermEpicModify Permission = "epic:modify"
	PermEpicDelete Permission = "epic:delete"

	PermWikiView   Permission = "wiki:view"
	PermWikiAdd    Permission = "wiki:add"
	PermWikiModify Permission = "wiki:modify"
	PermWikiDelete Permission = "wiki:delete"

	PermMilestoneView   Permission = "milestone:view"
	PermMilestoneAdd    Permission = "milestone:add"
	PermMilestoneModify Permission = "milestone:modify"
	PermMilestoneDelete Permission = "milestone:delete"
)

// OwnerPermissions 模板默认所有者角色的权限集合
var OwnerPermissions = []string{"*"}

// MemberPermissions 普通成员角色的默认权限集合
var MemberPermissions = []string{
	"project:view",
	"userstory:*",
	"task:*",
	"issue:*",
	"epic:*",
	"wiki:*",
	"milestone:view",
}

// ViewerPermissions 只读角色的默认权限集合
var ViewerPermissions = []string{
	"project:view",
	"userstory:view",
	"task:view",
	"issue:view",
	"epic:view",
	"wiki:view",
	"milestone:view",
}

// Allow 判断权限集合是否包含所需权限，支持通配符
func Allow(have []string, need Permission) bool {
	return len(have) > 0 && allow(have, need)
}

func allow(have []string, need Permission) bool {
	for _, p := range have {
		if Permission(p) == need {
			return true
		}

		if p == "*" {
			return true
		}

		reqParts := strings.Split(string(need), ":")
		allParts := strings.Split(p, ":")

		matched := true
		for i := 0; i < len(allParts); i++ {
			if allParts[i] == "*" {
				// * 匹配剩余所有段
				break
			}
			if i >= len(reqParts) || allParts[i] != reqParts[i] {
				matched = false
				break
			}
		}
		if matched && (len(allParts) >= len(reqParts) ||
			allParts[len(allParts)-1] == "*") {
			return true
		}
	}
	return false
}
