package model

const IssueTableName = "issues"

// Issue 问题
type Issue struct {
	BaseModel
	ProjectID    int64  `gorm:"not null;uniqueIndex:idx_issue_project_ref;index" json:"project_id"`
	Ref          int64  `gorm:"not null;uniqueIndex:idx_issue_project_ref" json:"ref"`
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

	SeverityID *int64 `gorm:"index" json:"severity_id"`
	PriorityID *int64 `gorm:"index" json:"priority_id"`
	TypeID     *int64 `gorm:"index" json:"type_id"`

	// Relations
	Status   *IssueStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Severity *Severity    `gorm:"foreignKey:SeverityID" json:"severity,omitempty"`
	Priority *Priority    `gorm:"foreignKey:PriorityID" json:"priority,omitempty"`
	Type     *IssueType   `gorm:"foreignKey:TypeID" json:"type,omitempty"`
}

func (Issue) TableName() string {
	return IssueTableName
}
