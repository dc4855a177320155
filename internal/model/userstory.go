package model

const (
	UserStoryTableName  = "userstories"
	RolePointsTableName = "role_points"
)

// UserStory 用户故事
// Ref 在项目内单调递增且永不复用; IsClosed 是状态闭合的镜像字段,
// 由闭合传播器维护（自身状态闭合且全部任务闭合才算闭合）。
type UserStory struct {
	BaseModel
	ProjectID    int64  `gorm:"not null;uniqueIndex:idx_us_project_ref;index" json:"project_id"`
	Ref          int64  `gorm:"not null;uniqueIndex:idx_us_project_ref" json:"ref"`
	Subject      string `gorm:"size:500;not null" json:"subject"`
	Description  string `gorm:"type:text" json:"description"`
	OwnerID      *int64 `json:"owner_id"`
	AssignedToID *int64 `json:"assigned_to_id"`
	StatusID     *int64 `gorm:"index" json:"status_id"`
	MilestoneID  *int64 `gorm:"index" json:"milestone_id"`

	Tags        StringList `gorm:"type:json" json:"tags"`
	Version     int64      `gorm:"not null;default:1" json:"version"`
	IsClosed    bool       `gorm:"not null;default:false" json:"is_closed"`
	IsBlocked   bool       `gorm:"not null;default:false" json:"is_blocked"`
	BlockedNote string     `gorm:"type:text" json:"blocked_note"`

	BacklogOrder         int64  `gorm:"not null;default:0" json:"backlog_order"`
	GeneratedFromIssueID *int64 `json:"generated_from_issue_id"`

	// Relations
	Status     *UserStoryStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Milestone  *Milestone       `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
	RolePoints []RolePoints     `gorm:"foreignKey:UserStoryID" json:"role_points,omitempty"`
}

func (UserStory) TableName() string {
	return UserStoryTableName
}

// RolePoints 用户故事按角色的估点
// (user_story_id, role_id) 唯一
type RolePoints struct {
	BaseModel
	UserStoryID int64 `gorm:"not null;uniqueIndex:idx_role_points_us_role" json:"user_story_id"`
	RoleID      int64 `gorm:"not null;uniqueIndex:idx_role_points_us_role" json:"role_id"`
	PointsID    int64 `gorm:"not null" json:"points_id"`

	Points *Points `gorm:"foreignKey:PointsID" json:"points,omitempty"`
}

func (RolePoints) TableName() string {
	return RolePointsTableName
}
