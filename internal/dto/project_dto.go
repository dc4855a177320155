package dto

import "agile-pm/internal/model"

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name         string   `json:"name" binding:"required,max=250"`
	Description  string   `json:"description"`
	IsPrivate    *bool    `json:"is_private"`
	TemplateSlug string   `json:"template_slug"` // 可选：不传使用默认模板
	Tags         []string `json:"tags"`
}

// UpdateProjectRequest 更新项目请求, 所有字段可选
type UpdateProjectRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=250"`
	Description *string   `json:"description"`
	IsPrivate   *bool     `json:"is_private"`
	OwnerID     *int64    `json:"owner_id"` // 所有权转移
	Tags        *[]string `json:"tags"`
}

// TransferProjectRequest 所有权转让请求
type TransferProjectRequest struct {
	OwnerID int64 `json:"owner_id" binding:"required,min=1"`
}

// DuplicateProjectRequest 复制项目请求
type DuplicateProjectRequest struct {
	Name        string  `json:"name" binding:"required,max=250"`
	Description string  `json:"description"`
	IsPrivate   *bool   `json:"is_private"`
	Users       []int64 `json:"users"` // 连同源项目角色一起带入的成员
}

// ProjectListQuery 项目列表查询
type ProjectListQuery struct {
	PageQuery
}

// SetTagColorRequest 设置项目标签颜色, color 为空表示清除颜色
type SetTagColorRequest struct {
	Tag   string  `json:"tag" binding:"required"`
	Color *string `json:"color" binding:"omitempty,hexcolor"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	OwnerID     *int64 `json:"owner_id"`
	IsPrivate   bool   `json:"is_private"`

	BlockedCode     int8   `json:"blocked_code"`
	BlockedCodeName string `json:"blocked_code_name"`

	Tags       []string           `json:"tags"`
	TagsColors model.TagColorList `json:"tags_colors"`

	TotalStoryPoints float64 `json:"total_story_points"`
	TotalMilestones  int     `json:"total_milestones"`

	CreatedFromTemplateID *int64 `json:"created_from_template_id,omitempty"`

	DefaultUsStatusID    *int64 `json:"default_us_status_id"`
	DefaultTaskStatusID  *int64 `json:"default_task_status_id"`
	DefaultIssueStatusID *int64 `json:"default_issue_status_id"`
	DefaultIssueTypeID   *int64 `json:"default_issue_type_id"`
	DefaultPriorityID    *int64 `json:"default_priority_id"`
	DefaultSeverityID    *int64 `json:"default_severity_id"`
	DefaultPointsID      *int64 `json:"default_points_id"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
