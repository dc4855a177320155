package service

import (
	"agile-pm/internal/model"
	"agile-pm/internal/pkg/auth"
	"agile-pm/pkg/constants"
)

func floatPtr(v float64) *float64 { return &v }

// builtinTemplates 内置的 scrum / kanban 模板
func builtinTemplates() []*model.ProjectTemplate {
	defs := []struct {
		slug, name, description string
		def                     *model.TemplateDefinition
	}{
		{"scrum", "Scrum", "迭代制敏捷项目模板", scrumDefinition()},
		{"kanban", "Kanban", "看板制敏捷项目模板", kanbanDefinition()},
	}

	templates := make([]*model.ProjectTemplate, 0, len(defs))
	for _, d := range defs {
		t := &model.ProjectTemplate{
			Slug:             d.slug,
			Name:             d.name,
			Description:      d.description,
			DefaultOwnerRole: "product-owner",
		}
		if err := t.Encode(d.def); err != nil {
			// 内置定义是静态数据, 序列化失败属于编程错误
			panic(err)
		}
		templates = append(templates, t)
	}
	return templates
}

func scrumDefinition() *model.TemplateDefinition {
	return &model.TemplateDefinition{
		UsStatuses: []model.TemplateStatus{
			{Name: "New", Order: 1, Color: "#999999"},
			{Name: "Ready", Order: 2, Color: "#ff8a84"},
			{Name: "In progress", Order: 3, Color: "#ff9900"},
			{Name: "Ready for test", Order: 4, Color: "#fcc000"},
			{Name: "Done", Order: 5, IsClosed: true, Color: "#669900"},
			{Name: "Archived", Order: 6, IsClosed: true, Color: "#5c3566"},
		},
		TaskStatuses: []model.TemplateStatus{
			{Name: "New", Order: 1, Color: "#999999"},
			{Name: "In progress", Order: 2, Color: "#ff9900"},
			{Name: "Ready for test", Order: 3, Color: "#ffcc00"},
			{Name: "Closed", Order: 4, IsClosed: true, Color: "#669900"},
			{Name: "Needs Info", Order: 5, Color: "#999999"},
		},
		IssueStatuses: []model.TemplateStatus{
			{Name: "New", Order: 1, Color: "#8C2318"},
			{Name: "In progress", Order: 2, Color: "#5E8C6A"},
			{Name: "Ready for test", Order: 3, Color: "#88A65E"},
			{Name: "Closed", Order: 4, IsClosed: true, Color: "#BFB35A"},
			{Name: "Needs Info", Order: 5, Color: "#89BAB4"},
			{Name: "Rejected", Order: 6, IsClosed: true, Color: "#CC0000"},
			{Name: "Postponed", Order: 7, Color: "#666666"},
		},
		IssueTypes: []model.TemplateStatus{
			{Name: "Bug", Order: 1, Color: "#89BAB4"},
			{Name: "Question", Order: 2, Color: "#ba89a8"},
			{Name: "Enhancement", Order: 3, Color: "#89a8ba"},
		},
		Priorities: []model.TemplateStatus{
			{Name: "Low", Order: 1, Color: "#666666"},
			{Name: "Normal", Order: 3, Color: "#669933"},
			{Name: "High", Order: 5, Color: "#CC0000"},
		},
		Severities: []model.TemplateStatus{
			{Name: "Wishlist", Order: 1, Color: "#666666"},
			{Name: "Minor", Order: 2, Color: "#669933"},
			{Name: "Normal", Order: 3, Color: "#0000FF"},
			{Name: "Important", Order: 4, Color: "#FFA500"},
			{Name: "Critical", Order: 5, Color: "#CC0000"},
		},
		Points: []model.TemplatePoints{
			{Name: "?", Order: 1, Value: nil},
			{Name: "0", Order: 2, Value: floatPtr(0)},
			{Name: "1/2", Order: 3, Value: floatPtr(0.5)},
			{Name: "1", Order: 4, Value: floatPtr(1)},
			{Name: "2", Order: 5, Value: floatPtr(2)},
			{Name: "3", Order: 6, Value: floatPtr(3)},
			{Name: "5", Order: 7, Value: floatPtr(5)},
			{Name: "8", Order: 8, Value: floatPtr(8)},
			{Name: "13", Order: 9, Value: floatPtr(13)},
			{Name: "20", Order: 10, Value: floatPtr(20)},
			{Name: "40", Order: 11, Value: floatPtr(40)},
		},
		Roles: []model.TemplateRole{
			{Slug: "ux", Name: "UX", Order: 10, Computable: true, Permissions: auth.MemberPermissions},
			{Slug: "design", Name: "Design", Order: 20, Computable: true, Permissions: auth.MemberPermissions},
			{Slug: "front", Name: "Front", Order: 30, Computable: true, Permissions: auth.MemberPermissions},
			{Slug: "back", Name: "Back", Order: 40, Computable: true, Permissions: auth.MemberPermissions},
			{Slug: "product-owner", Name: "Product Owner", Order: 50, Computable: false, Permissions: auth.OwnerPermissions},
			{Slug: "stakeholder", Name: "Stakeholder", Order: 60, Computable: false, Permissions: auth.ViewerPermissions},
		},
		DefaultOptions: map[string]string{
			constants.DefaultOptionUsStatus:    "New",
			constants.DefaultOptionTaskStatus:  "New",
			constants.DefaultOptionIssueStatus: "New",
			constants.DefaultOptionIssueType:   "Bug",
			constants.DefaultOptionPriority:    "Normal",
			constants.DefaultOptionSeverity:    "Normal",
			constants.DefaultOptionPoints:      "?",
		},
	}
}

func kanbanDefinition() *model.TemplateDefinition {
	def := scrumDefinition()
	def.UsStatuses = []model.TemplateStatus{
		{Name: "New", Order: 1, Color: "#999999"},
		{Name: "Ready", Order: 2, Color: "#ff8a84", WipLimit: intPtr(6)},
		{Name: "In progress", Order: 3, Color: "#ff9900", WipLimit: intPtr(4)},
		{Name: "Ready for test", Order: 4, Color: "#fcc000", WipLimit: intPtr(4)},
		{Name: "Done", Order: 5, IsClosed: true, Color: "#669900"},
		{Name: "Archived", Order: 6, IsClosed: true, Color: "#5c3566"},
	}
	return def
}

func intPtr(v int) *int { return &v }
