package dto

import "time"

// CreateMilestoneRequest 创建里程碑请求
type CreateMilestoneRequest struct {
	Name            string     `json:"name" binding:"required,max=200"`
	EstimatedStart  *time.Time `json:"estimated_start"`
	EstimatedFinish *time.Time `json:"estimated_finish"`
	Order           int        `json:"order"`
}

// UpdateMilestoneRequest 更新里程碑请求
type UpdateMilestoneRequest struct {
	Name            *string    `json:"name" binding:"omitempty,max=200"`
	EstimatedStart  *time.Time `json:"estimated_start"`
	EstimatedFinish *time.Time `json:"estimated_finish"`
	Closed          *bool      `json:"closed"`
	Order           *int       `json:"order"`
}

// MilestoneResponse 里程碑响应
type MilestoneResponse struct {
	ID              int64      `json:"id"`
	ProjectID       int64      `json:"project_id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	EstimatedStart  *time.Time `json:"estimated_start"`
	EstimatedFinish *time.Time `json:"estimated_finish"`
	Closed          bool       `json:"closed"`
	Order           int        `json:"order"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}
