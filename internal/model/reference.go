package model

const ReferenceTableName = "references"

// Reference 项目内编号计数器
// 每个 (project, content_type) 一行, 行锁串行化编号分配。
// 该表是编号的唯一事实来源, 项目上不保留 last_*_ref 冗余列。
type Reference struct {
	BaseModel
	ProjectID   int64  `gorm:"not null;uniqueIndex:idx_reference_project_kind;index:idx_reference_project_ref" json:"project_id"`
	ContentType string `gorm:"size:30;not null;uniqueIndex:idx_reference_project_kind" json:"content_type"`
	Ref         int64  `gorm:"not null;default:0;index:idx_reference_project_ref" json:"ref"`
}

func (Reference) TableName() string {
	return ReferenceTableName
}
