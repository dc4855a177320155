package dto

// CreateAttachmentRequest 创建附件请求
type CreateAttachmentRequest struct {
	ContentType  string `json:"content_type" binding:"required"` // 归属实体类型
	ObjectID     int64  `json:"object_id" binding:"required,min=1"`
	AttachedFile string `json:"attached_file" binding:"required,max=500"`
	Description  string `json:"description"`
	Order        int    `json:"order"`
}

// UpdateAttachmentRequest 更新附件请求
type UpdateAttachmentRequest struct {
	Description  *string `json:"description"`
	IsDeprecated *bool   `json:"is_deprecated"`
	Order        *int    `json:"order"`
}

// AttachmentListQuery 附件列表查询
type AttachmentListQuery struct {
	ContentType string `form:"content_type" binding:"required"`
	ObjectID    int64  `form:"object_id" binding:"required,min=1"`
}

// AttachmentResponse 附件响应
type AttachmentResponse struct {
	ID           int64  `json:"id"`
	ProjectID    int64  `json:"project_id"`
	OwnerID      *int64 `json:"owner_id"`
	ContentType  string `json:"content_type"`
	ObjectID     int64  `json:"object_id"`
	AttachedFile string `json:"attached_file"`
	Description  string `json:"description"`
	Order        int    `json:"order"`
	IsDeprecated bool   `json:"is_deprecated"`
	CreatedAt    string `json:"created_at"`
}
