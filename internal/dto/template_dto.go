package dto

import "agile-pm/internal/model"

// SnapshotTemplateRequest 从现有项目抽取模板
type SnapshotTemplateRequest struct {
	ProjectID   int64  `json:"project_id" binding:"required,min=1"`
	Slug        string `json:"slug" binding:"required,max=250"`
	Name        string `json:"name" binding:"required,max=250"`
	Description string `json:"description"`
}

// TemplateResponse 项目模板响应
type TemplateResponse struct {
	ID               int64   `json:"id"`
	Slug             string  `json:"slug"`
	Domain           *string `json:"domain,omitempty"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	DefaultOwnerRole string  `json:"default_owner_role"`

	Definition *model.TemplateDefinition `json:"definition,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
