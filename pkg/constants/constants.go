package constants

import "fmt"

// TaxonomyKind 项目配置项类型
const (
	KindUserStoryStatus = "userstory_status"
	KindTaskStatus      = "task_status"
	KindIssueStatus     = "issue_status"
	KindIssueType       = "issue_type"
	KindPriority        = "priority"
	KindSeverity        = "severity"
	KindPoints          = "points"
	KindRole            = "role"
)

// ReferentKind 编号实体类型, 同时作为 references 表的 content_type
const (
	RefKindUserStory = "userstory"
	RefKindTask      = "task"
	RefKindIssue     = "issue"
	RefKindEpic      = "epic"
)

// 附件等通用外键可指向的实体类型
const (
	ObjectKindUserStory = RefKindUserStory
	ObjectKindTask      = RefKindTask
	ObjectKindIssue     = RefKindIssue
	ObjectKindEpic      = RefKindEpic
	ObjectKindWikiPage  = "wikipage"
	ObjectKindMilestone = "milestone"
)

// BlockedCode 项目锁定原因
const (
	BlockedNone           int8 = 0
	BlockedByStaff        int8 = 1
	BlockedByOwnerLeaving int8 = 2
	BlockedByDeleting     int8 = 4
	BlockedByExpired      int8 = 5 // 账单过期
)

// int8 → string
var blockedCodeName = map[int8]string{
	BlockedNone:           "None",
	BlockedByStaff:        "BlockedByStaff",
	BlockedByOwnerLeaving: "BlockedByOwnerLeaving",
	BlockedByDeleting:     "Deleting",
	BlockedByExpired:      "ExpiredInvoice",
}

// BlockedCodeToString int8 → string
func BlockedCodeToString(code int8) string {
	if name, ok := blockedCodeName[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", code)
}

// 模板 default_options 的键
const (
	DefaultOptionUsStatus    = "us_status"
	DefaultOptionTaskStatus  = "task_status"
	DefaultOptionIssueStatus = "issue_status"
	DefaultOptionIssueType   = "issue_type"
	DefaultOptionPriority    = "priority"
	DefaultOptionSeverity    = "severity"
	DefaultOptionPoints      = "points"
)

// 认证类型
const (
	AuthTypeLDAP  = "ldap"
	AuthTypeLocal = "local"
)

// JWT Token类型
const (
	JWTTypeAccess  = "access"
	JWTTypeRefresh = "refresh"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
)
