package dto

// CreateUserStoryRequest 创建用户故事请求
type CreateUserStoryRequest struct {
	Subject     string   `json:"subject" binding:"required,max=500"`
	Description string   `json:"description"`
	StatusID    *int64   `json:"status_id"` // 不传使用项目默认状态
	MilestoneID *int64   `json:"milestone_id"`
	AssignedTo  *int64   `json:"assigned_to_id"`
	Tags        []string `json:"tags"`
	IsBlocked   bool     `json:"is_blocked"`
	BlockedNote string   `json:"blocked_note"`

	RolePoints map[int64]int64 `json:"role_points"` // role_id -> points_id
}

// UpdateUserStoryRequest 更新用户故事请求, version 必传用于乐观锁
type UpdateUserStoryRequest struct {
	Version      int64     `json:"version" binding:"required,min=1"`
	Subject      *string   `json:"subject" binding:"omitempty,max=500"`
	Description  *string   `json:"description"`
	StatusID     *int64    `json:"status_id"`
	MilestoneID  *int64    `json:"milestone_id"`
	AssignedTo   *int64    `json:"assigned_to_id"`
	Tags         *[]string `json:"tags"`
	IsBlocked    *bool     `json:"is_blocked"`
	BlockedNote  *string   `json:"blocked_note"`
	BacklogOrder *int64    `json:"backlog_order"`

	RolePoints map[int64]int64 `json:"role_points"`
}

// UserStoryResponse 用户故事响应
type UserStoryResponse struct {
	ID           int64    `json:"id"`
	Ref          int64    `json:"ref"`
	ProjectID    int64    `json:"project_id"`
	Subject      string   `json:"subject"`
	Description  string   `json:"description"`
	OwnerID      *int64   `json:"owner_id"`
	AssignedTo   *int64   `json:"assigned_to_id"`
	StatusID     *int64   `json:"status_id"`
	MilestoneID  *int64   `json:"milestone_id"`
	Tags         []string `json:"tags"`
	Version      int64    `json:"version"`
	IsClosed     bool     `json:"is_closed"`
	IsBlocked    bool     `json:"is_blocked"`
	BlockedNote  string   `json:"blocked_note"`
	BacklogOrder int64    `json:"backlog_order"`
	TotalPoints  *float64 `json:"total_points"`

	RolePoints map[int64]int64 `json:"role_points,omitempty"`

	GeneratedFromIssueID *int64 `json:"generated_from_issue_id,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Subject     string   `json:"subject" binding:"required,max=500"`
	Description string   `json:"description"`
	StatusID    *int64   `json:"status_id"`
	MilestoneID *int64   `json:"milestone_id"`
	UserStoryID *int64   `json:"user_story_id"`
	AssignedTo  *int64   `json:"assigned_to_id"`
	Tags        []string `json:"tags"`
	IsIocaine   bool     `json:"is_iocaine"`
}

// UpdateTaskRequest 更新任务请求
type UpdateTaskRequest struct {
	Version     int64     `json:"version" binding:"required,min=1"`
	Subject     *string   `json:"subject" binding:"omitempty,max=500"`
	Description *string   `json:"description"`
	StatusID    *int64    `json:"status_id"`
	MilestoneID *int64    `json:"milestone_id"`
	UserStoryID *int64    `json:"user_story_id"`
	AssignedTo  *int64    `json:"assigned_to_id"`
	Tags        *[]string `json:"tags"`
	IsIocaine   *bool     `json:"is_iocaine"`
	TaskOrder   *int64    `json:"task_order"`
}

// TaskResponse 任务响应
type TaskResponse struct {
	ID          int64    `json:"id"`
	Ref         int64    `json:"ref"`
	ProjectID   int64    `json:"project_id"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	OwnerID     *int64   `json:"owner_id"`
	AssignedTo  *int64   `json:"assigned_to_id"`
	StatusID    *int64   `json:"status_id"`
	MilestoneID *int64   `json:"milestone_id"`
	UserStoryID *int64   `json:"user_story_id"`
	Tags        []string `json:"tags"`
	Version     int64    `json:"version"`
	IsClosed    bool     `json:"is_closed"`
	IsIocaine   bool     `json:"is_iocaine"`
	TaskOrder   int64    `json:"task_order"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// CreateIssueRequest 创建问题请求
type CreateIssueRequest struct {
	Subject     string   `json:"subject" binding:"required,max=500"`
	Description string   `json:"description"`
	StatusID    *int64   `json:"status_id"`
	TypeID      *int64   `json:"type_id"`
	PriorityID  *int64   `json:"priority_id"`
	SeverityID  *int64   `json:"severity_id"`
	MilestoneID *int64   `json:"milestone_id"`
	AssignedTo  *int64   `json:"assigned_to_id"`
	Tags        []string `json:"tags"`
}

// UpdateIssueRequest 更新问题请求
type UpdateIssueRequest struct {
	Version     int64     `json:"version" binding:"required,min=1"`
	Subject     *string   `json:"subject" binding:"omitempty,max=500"`
	Description *string   `json:"description"`
	StatusID    *int64    `json:"status_id"`
	TypeID      *int64    `json:"type_id"`
	PriorityID  *int64    `json:"priority_id"`
	SeverityID  *int64    `json:"severity_id"`
	MilestoneID *int64    `json:"milestone_id"`
	AssignedTo  *int64    `json:"assigned_to_id"`
	Tags        *[]string `json:"tags"`
}

// IssueResponse 问题响应
type IssueResponse struct {
	ID          int64    `json:"id"`
	Ref         int64    `json:"ref"`
	ProjectID   int64    `json:"project_id"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	OwnerID     *int64   `json:"owner_id"`
	AssignedTo  *int64   `json:"assigned_to_id"`
	StatusID    *int64   `json:"status_id"`
	TypeID      *int64   `json:"type_id"`
	PriorityID  *int64   `json:"priority_id"`
	SeverityID  *int64   `json:"severity_id"`
	MilestoneID *int64   `json:"milestone_id"`
	Tags        []string `json:"tags"`
	Version     int64    `json:"version"`
	IsClosed    bool     `json:"is_closed"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// PromoteIssueRequest 把问题转化为用户故事
type PromoteIssueRequest struct {
	Subject string `json:"subject" binding:"omitempty,max=500"` // 可选：不传沿用问题标题
}

// CreateEpicRequest 创建史诗请求
type CreateEpicRequest struct {
	Subject     string   `json:"subject" binding:"required,max=500"`
	Description string   `json:"description"`
	StatusID    *int64   `json:"status_id"`
	AssignedTo  *int64   `json:"assigned_to_id"`
	Color       string   `json:"color" binding:"omitempty,hexcolor"`
	Tags        []string `json:"tags"`
}

// UpdateEpicRequest 更新史诗请求
type UpdateEpicRequest struct {
	Version     int64     `json:"version" binding:"required,min=1"`
	Subject     *string   `json:"subject" binding:"omitempty,max=500"`
	Description *string   `json:"description"`
	StatusID    *int64    `json:"status_id"`
	AssignedTo  *int64    `json:"assigned_to_id"`
	Color       *string   `json:"color" binding:"omitempty,hexcolor"`
	Tags        *[]string `json:"tags"`
	EpicOrder   *int64    `json:"epic_order"`
}

// EpicResponse 史诗响应
type EpicResponse struct {
	ID          int64    `json:"id"`
	Ref         int64    `json:"ref"`
	ProjectID   int64    `json:"project_id"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	OwnerID     *int64   `json:"owner_id"`
	AssignedTo  *int64   `json:"assigned_to_id"`
	StatusID    *int64   `json:"status_id"`
	Color       string   `json:"color"`
	Tags        []string `json:"tags"`
	Version     int64    `json:"version"`
	IsClosed    bool     `json:"is_closed"`
	EpicOrder   int64    `json:"epic_order"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// LinkUserStoryRequest 关联用户故事到史诗
type LinkUserStoryRequest struct {
	UserStoryID int64 `json:"user_story_id" binding:"required,min=1"`
}
