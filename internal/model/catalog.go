package model

import "time"

// CatalogRow 各类项目配置行的统一视图
// 配置目录的八类行结构高度相似, 仓储层按 kind 分发到具体表,
// 服务层与API层统一使用该视图, 避免八套重复的CRUD管道。
type CatalogRow struct {
	Kind      string `json:"kind"`
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`

	// 状态类字段
	IsClosed bool   `json:"is_closed,omitempty"`
	Color    string `json:"color,omitempty"`
	WipLimit *int   `json:"wip_limit,omitempty"`

	// 估点字段
	Value *float64 `json:"value,omitempty"`

	// 角色字段
	Slug        string   `json:"slug,omitempty"`
	Computable  bool     `json:"computable,omitempty"`
	Permissions []string `json:"permissions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
