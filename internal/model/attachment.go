package model

const AttachmentTableName = "attachments"

// Attachment 附件
// 通过 (content_type, object_id) 指向任意归属实体,
// content_type 取值见 constants.ObjectKind*, 按类型分发做存在性校验。
type Attachment struct {
	BaseModel
	ProjectID    int64  `gorm:"not null;index:idx_attachment_project_object" json:"project_id"`
	OwnerID      *int64 `json:"owner_id"`
	ContentType  string `gorm:"size:30;not null;index:idx_attachment_project_object" json:"content_type"`
	ObjectID     int64  `gorm:"not null;index:idx_attachment_project_object" json:"object_id"`
	AttachedFile string `gorm:"size:500;not null" json:"attached_file"` // 存储路径, 实际文件由外部存储协作方管理
	Order        int    `gorm:"not null;default:0" json:"order"`
	IsDeprecated bool   `gorm:"not null;default:false" json:"is_deprecated"`
	Description  string `gorm:"type:text" json:"description"`
}

func (Attachment) TableName() string {
	return AttachmentTableName
}
