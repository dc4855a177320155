package model

const (
	UserStoryStatusTableName = "userstory_statuses"
	TaskStatusTableName      = "task_statuses"
	IssueStatusTableName     = "issue_statuses"
	IssueTypeTableName       = "issue_types"
	PriorityTableName        = "priorities"
	SeverityTableName        = "severities"
	PointsTableName          = "points"
	RoleTableName            = "roles"
)

// UserStoryStatus 用户故事状态
// (project_id, name) 唯一
type UserStoryStatus struct {
	BaseModel
	ProjectID int64  `gorm:"not null;uniqueIndex:idx_us_status_project_name" json:"project_id"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_us_status_project_name" json:"name"`
	Order     int    `gorm:"not null;default:10" json:"order"`
	IsClosed  bool   `gorm:"not null;default:false" json:"is_closed"`
	Color     string `gorm:"size:20;not null;default:#999999" json:"color"`
	WipLimit  *int   `json:"wip_limit"`
}

func (UserStoryStatus) TableName() string {
	return UserStoryStatusTableName
}

// TaskStatus 任务状态
type TaskStatus struct {
	BaseModel
	ProjectID int64  `gorm:"not null;uniqueIndex:idx_task_status_project_name" json:"project_id"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_task_status_project_name" json:"name"`
	Order     int    `gorm:"not null;default:10" json:"order"`
	IsClosed  bool   `gorm:"not null;default:false" json:"is_closed"`
	Color     string `gorm:"size:20;not null;default:#999999" json:"color"`
}

func (TaskStatus) TableName() string {
	return TaskStatusTableName
}

// IssueStatus 问题状态
type IssueStatus struct {
	BaseModel
	ProjectID int64  `gorm:"not null;uniqueIndex:idx_issue_status_project_name" json:"project_id"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_issue_status_project_name" json:"name"`
	Order     int    `gorm:"not null;default:10" json:"order"`
	IsClosed  bool   `gorm:"not null;default:false" json:"is_closed"`
	Color     string `gorm:"size:20;not null;default:#999999" json:"color"`
}

func (IssueStatus) TableName() string {
	return IssueStatusTableName
}

// IssueType 问题类型
type IssueType struct {
	BaseModel
	ProjectID int64  `gorm:"not null;uniqueIndex:idx_issue_type_project_name" json:"project_id"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_issue_type_project_name" json:"name"`
	Order     int    `gorm:"not null;default:10" json:"order"`
	Color     string `gorm:"size:20;not null;default:#999999" json:"color"`
}

func (IssueType) TableName() string {
	return IssueTypeTableName
}

// Priority 优先级
type Priority struct {
	BaseModel
	ProjectID int64  `gorm:"not null;uniqueIndex:idx_priority_project_name" json:"project_id"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_priority_project_name" json:"name"`
	Order     int    `gorm:"not null;default:10" json:"order"`
	Color     string `gorm:"size:20;not null;default:#999999" json:"color"`
}

func (Priority) TableName() string {
	return PriorityTableName
}

// Severity 严重程度
type Severity struct {
	BaseModel
	ProjectID int64  `gorm:"not null;uniqueIndex:idx_severity_project_name" json:"project_id"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_severity_project_name" json:"name"`
	Order     int    `gorm:"not null;default:10" json:"order"`
	Color     string `gorm:"size:20;not null;default:#999999" json:"color"`
}

func (Severity) TableName() string {
	return SeverityTableName
}

// Points 估点刻度
// Value 为 nil 表示 "?"（未估点）
type Points struct {
	BaseModel
	ProjectID int64    `gorm:"not null;uniqueIndex:idx_points_project_name" json:"project_id"`
	Name      string   `gorm:"size:255;not null;uniqueIndex:idx_points_project_name" json:"name"`
	Order     int      `gorm:"not null;default:10" json:"order"`
	Value     *float64 `json:"value"`
}

func (Points) TableName() string {
	return PointsTableName
}

// Role 项目角色
// (project_id, slug) 唯一; Computable 的角色参与故事点合计
type Role struct {
	BaseModel
	ProjectID   int64      `gorm:"not null;uniqueIndex:idx_role_project_slug;index:idx_role_project_name" json:"project_id"`
	Slug        string     `gorm:"size:250;not null;uniqueIndex:idx_role_project_slug" json:"slug"`
	Name        string     `gorm:"size:200;not null;index:idx_role_project_name" json:"name"`
	Order       int        `gorm:"not null;default:10" json:"order"`
	Computable  bool       `gorm:"not null;default:true" json:"computable"`
	Permissions StringList `gorm:"type:json" json:"permissions"`
}

func (Role) TableName() string {
	return RoleTableName
}
