package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

const ProjectTemplateTableName = "project_templates"

// ProjectTemplate 项目模板
// 惰性的目录描述: 既是新项目的工厂, 也是已有项目目录的快照。
// (slug, domain) 唯一, domain 为空表示全局模板。
type ProjectTemplate struct {
	BaseModel
	Slug        string  `gorm:"size:250;not null;uniqueIndex:idx_template_slug_domain" json:"slug"`
	Domain      *string `gorm:"size:250;uniqueIndex:idx_template_slug_domain" json:"domain"`
	Name        string  `gorm:"size:250;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`

	DefaultOwnerRole string `gorm:"size:250;not null" json:"default_owner_role"` // 项目所有者注册时使用的角色slug

	UsStatuses     datatypes.JSON `gorm:"type:json" json:"us_statuses"`
	TaskStatuses   datatypes.JSON `gorm:"type:json" json:"task_statuses"`
	IssueStatuses  datatypes.JSON `gorm:"type:json" json:"issue_statuses"`
	IssueTypes     datatypes.JSON `gorm:"type:json" json:"issue_types"`
	Priorities     datatypes.JSON `gorm:"type:json" json:"priorities"`
	Severities     datatypes.JSON `gorm:"type:json" json:"severities"`
	Points         datatypes.JSON `gorm:"type:json" json:"points"`
	Roles          datatypes.JSON `gorm:"type:json" json:"roles"`
	DefaultOptions datatypes.JSON `gorm:"type:json" json:"default_options"`
}

func (ProjectTemplate) TableName() string {
	return ProjectTemplateTableName
}

// TemplateStatus 模板内的状态/类型/优先级/严重度定义
type TemplateStatus struct {
	Name     string `json:"name"`
	Order    int    `json:"order"`
	IsClosed bool   `json:"is_closed,omitempty"`
	Color    string `json:"color,omitempty"`
	WipLimit *int   `json:"wip_limit,omitempty"`
}

// TemplatePoints 模板内的估点定义
type TemplatePoints struct {
	Name  string   `json:"name"`
	Order int      `json:"order"`
	Value *float64 `json:"value"`
}

// TemplateRole 模板内的角色定义
type TemplateRole struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Order       int      `json:"order"`
	Computable  bool     `json:"computable"`
	Permissions []string `json:"permissions"`
}

// TemplateDefinition 模板的完整展开形式, 供模板引擎使用
type TemplateDefinition struct {
	UsStatuses     []TemplateStatus  `json:"us_statuses"`
	TaskStatuses   []TemplateStatus  `json:"task_statuses"`
	IssueStatuses  []TemplateStatus  `json:"issue_statuses"`
	IssueTypes     []TemplateStatus  `json:"issue_types"`
	Priorities     []TemplateStatus  `json:"priorities"`
	Severities     []TemplateStatus  `json:"severities"`
	Points         []TemplatePoints  `json:"points"`
	Roles          []TemplateRole    `json:"roles"`
	DefaultOptions map[string]string `json:"default_options"` // 键见 constants.DefaultOption*
}

// Decode 将JSON列展开为 TemplateDefinition
func (t *ProjectTemplate) Decode() (*TemplateDefinition, error) {
	def := &TemplateDefinition{DefaultOptions: map[string]string{}}

	cols := []struct {
		raw datatypes.JSON
		dst interface{}
	}{
		{t.UsStatuses, &def.UsStatuses},
		{t.TaskStatuses, &def.TaskStatuses},
		{t.IssueStatuses, &def.IssueStatuses},
		{t.IssueTypes, &def.IssueTypes},
		{t.Priorities, &def.Priorities},
		{t.Severities, &def.Severities},
		{t.Points, &def.Points},
		{t.Roles, &def.Roles},
		{t.DefaultOptions, &def.DefaultOptions},
	}
	for _, col := range cols {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, err
		}
	}
	return def, nil
}

// Encode 将 TemplateDefinition 写回JSON列
func (t *ProjectTemplate) Encode(def *TemplateDefinition) error {
	cols := []struct {
		src interface{}
		dst *datatypes.JSON
	}{
		{def.UsStatuses, &t.UsStatuses},
		{def.TaskStatuses, &t.TaskStatuses},
		{def.IssueStatuses, &t.IssueStatuses},
		{def.IssueTypes, &t.IssueTypes},
		{def.Priorities, &t.Priorities},
		{def.Severities, &t.Severities},
		{def.Points, &t.Points},
		{def.Roles, &t.Roles},
		{def.DefaultOptions, &t.DefaultOptions},
	}
	for _, col := range cols {
		b, err := json.Marshal(col.src)
		if err != nil {
			return err
		}
		*col.dst = b
	}
	return nil
}
