package database

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
)

// AutoMigrate 同步所有业务表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Membership{},
		&model.UserStoryStatus{},
		&model.TaskStatus{},
		&model.IssueStatus{},
		&model.IssueType{},
		&model.Priority{},
		&model.Severity{},
		&model.Points{},
		&model.Role{},
		&model.Reference{},
		&model.UserStory{},
		&model.RolePoints{},
		&model.Task{},
		&model.Issue{},
		&model.Epic{},
		&model.EpicUserStory{},
		&model.Milestone{},
		&model.WikiPage{},
		&model.WikiLink{},
		&model.Attachment{},
		&model.ProjectTemplate{},
	)
}
