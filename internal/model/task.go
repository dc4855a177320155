package model

const TaskTableName = "tasks"

// Task 任务, 可挂在一个用户故事之下
type Task struct {
	BaseModel
	ProjectID    int64  `gorm:"not null;uniqueIndex:idx_task_project_ref;index" json:"project_id"`
	Ref          int64  `gorm:"not null;uniqueIndex:idx_task_project_ref" json:"ref"`
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

	UserStoryID *int64 `gorm:"index" json:"user_story_id"`
	IsIocaine   bool   `gorm:"not null;default:false" json:"is_iocaine"` // 长耗时任务标记
	TaskOrder   int64  `gorm:"not null;default:0" json:"task_order"`

	// Relations
	Status    *TaskStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	UserStory *UserStory  `gorm:"foreignKey:UserStoryID" json:"user_story,omitempty"`
}

func (Task) TableName() string {
	return TaskTableName
}
