package model

const ProjectTableName = "projects"

// Project 项目聚合根
// 每个项目独占自己的配置目录（状态/类型/优先级/严重度/点数/角色）,
// 默认指针指向各类配置中的一行, 被指向的行删除后指针置空。
type Project struct {
	BaseModelWithSoftDelete
	Name        string  `gorm:"size:250;not null;uniqueIndex" json:"name"`
	Slug        string  `gorm:"size:250;not null;uniqueIndex" json:"slug"`
	Description *string `gorm:"type:text" json:"description"`
	OwnerID     *int64  `gorm:"index" json:"owner_id"` // 项目移交失败后可能为空
	IsPrivate   bool    `gorm:"not null;default:false" json:"is_private"`
	BlockedCode int8    `gorm:"not null;default:0" json:"blocked_code"` // 0=未锁定, 见 constants.BlockedBy*

	Tags       StringList   `gorm:"type:json" json:"tags"`
	TagsColors TagColorList `gorm:"type:json" json:"tags_colors"` // 项目内使用中的 (tag, color) 登记表

	// 统计缓存
	TotalStoryPoints float64 `gorm:"not null;default:0" json:"total_story_points"`
	TotalMilestones  int     `gorm:"not null;default:0" json:"total_milestones"`

	// 创建时使用的模板
	CreatedFromTemplateID *int64 `json:"created_from_template_id"`

	// 各类配置的默认指针, 可为空
	DefaultUsStatusID    *int64 `json:"default_us_status_id"`
	DefaultTaskStatusID  *int64 `json:"default_task_status_id"`
	DefaultIssueStatusID *int64 `json:"default_issue_status_id"`
	DefaultIssueTypeID   *int64 `json:"default_issue_type_id"`
	DefaultPriorityID    *int64 `json:"default_priority_id"`
	DefaultSeverityID    *int64 `json:"default_severity_id"`
	DefaultPointsID      *int64 `json:"default_points_id"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (Project) TableName() string {
	return ProjectTableName
}

// IsBlocked 项目是否被锁定（锁定后仅允许读操作）
func (p *Project) IsBlocked() bool {
	return p.BlockedCode != 0
}
