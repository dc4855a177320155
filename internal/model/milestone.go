package model

import "time"

const MilestoneTableName = "milestones"

// Milestone 里程碑/迭代
type Milestone struct {
	BaseModel
	ProjectID       int64      `gorm:"not null;uniqueIndex:idx_milestone_project_name;uniqueIndex:idx_milestone_project_slug" json:"project_id"`
	Name            string     `gorm:"size:200;not null;uniqueIndex:idx_milestone_project_name" json:"name"`
	Slug            string     `gorm:"size:250;not null;uniqueIndex:idx_milestone_project_slug" json:"slug"`
	OwnerID         *int64     `json:"owner_id"`
	EstimatedStart  *time.Time `json:"estimated_start"`
	EstimatedFinish *time.Time `json:"estimated_finish"`
	Closed          bool       `gorm:"not null;default:false" json:"closed"`
	Order           int        `gorm:"not null;default:10" json:"order"`
}

func (Milestone) TableName() string {
	return MilestoneTableName
}
