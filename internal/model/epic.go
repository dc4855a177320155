package model

const (
	EpicTableName          = "epics"
	EpicUserStoryTableName = "epic_userstories"
)

// Epic 史诗, 通过显式有序的中间表关联用户故事
type Epic struct {
	BaseModel
	ProjectID    int64  `gorm:"not null;uniqueIndex:idx_epic_project_ref;index" json:"project_id"`
	Ref          int64  `gorm:"not null;uniqueIndex:idx_epic_project_ref" json:"ref"`
	Subject      string `gorm:"size:500;not null" json:"subject"`
	Description  string `gorm:"type:text" json:"description"`
	OwnerID      *int64 `json:"owner_id"`
	AssignedToID *int64 `json:"assigned_to_id"`
	StatusID     *int64 `gorm:"index" json:"status_id"` // 复用用户故事状态

	Tags        StringList `gorm:"type:json" json:"tags"`
	Version     int64      `gorm:"not null;default:1" json:"version"`
	IsClosed    bool       `gorm:"not null;default:false" json:"is_closed"`
	IsBlocked   bool       `gorm:"not null;default:false" json:"is_blocked"`
	BlockedNote string     `gorm:"type:text" json:"blocked_note"`

	Color     string `gorm:"size:20;not null;default:#999999" json:"color"`
	EpicOrder int64  `gorm:"not null;default:0" json:"epic_order"`
}

func (Epic) TableName() string {
	return EpicTableName
}

// EpicUserStory 史诗与用户故事的关联
// (epic_id, user_story_id) 唯一, Order 决定故事在史诗内的排序
type EpicUserStory struct {
	BaseModel
	EpicID      int64 `gorm:"not null;uniqueIndex:idx_epic_us" json:"epic_id"`
	UserStoryID int64 `gorm:"not null;uniqueIndex:idx_epic_us" json:"user_story_id"`
	Order       int   `gorm:"not null;default:0" json:"order"`
}

func (EpicUserStory) TableName() string {
	return EpicUserStoryTableName
}
