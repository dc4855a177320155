package dto

// CreateTaxonomyRequest 创建配置项请求, 按配置类型使用其中的子集字段
type CreateTaxonomyRequest struct {
	Name     string   `json:"name" binding:"required,max=255"`
	Order    int      `json:"order"`
	IsClosed *bool    `json:"is_closed"` // 状态类
	Color    string   `json:"color" binding:"omitempty,hexcolor"`
	WipLimit *int     `json:"wip_limit"` // 仅故事状态
	Value    *float64 `json:"value"`     // 仅估点, null 表示未定("?")
	// 仅角色
	Slug        string   `json:"slug" binding:"omitempty,max=250"`
	Computable  *bool    `json:"computable"`
	Permissions []string `json:"permissions"`
}

// UpdateTaxonomyRequest 更新配置项请求
type UpdateTaxonomyRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=255"`
	Order       *int      `json:"order"`
	IsClosed    *bool     `json:"is_closed"`
	Color       *string   `json:"color" binding:"omitempty,hexcolor"`
	WipLimit    *int      `json:"wip_limit"`
	Value       *float64  `json:"value"`
	Computable  *bool     `json:"computable"`
	Permissions *[]string `json:"permissions"`
}

// DeleteTaxonomyQuery 删除配置项查询参数
type DeleteTaxonomyQuery struct {
	MoveTo int64 `form:"moveTo"` // 可选：引用迁移目标, 同项目同类型
}

// TaxonomyResponse 配置项响应
type TaxonomyResponse struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	IsDefault bool   `json:"is_default"`

	IsClosed bool     `json:"is_closed,omitempty"`
	Color    string   `json:"color,omitempty"`
	WipLimit *int     `json:"wip_limit,omitempty"`
	Value    *float64 `json:"value,omitempty"`

	Slug        string   `json:"slug,omitempty"`
	Computable  bool     `json:"computable,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}
