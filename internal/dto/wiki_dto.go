package dto

// CreateWikiPageRequest 创建Wiki页面请求
type CreateWikiPageRequest struct {
	Slug    string `json:"slug" binding:"required,max=500"`
	Content string `json:"content"`
}

// UpdateWikiPageRequest 更新Wiki页面请求
type UpdateWikiPageRequest struct {
	Version int64   `json:"version" binding:"required,min=1"`
	Content *string `json:"content"`
}

// WikiPageResponse Wiki页面响应
type WikiPageResponse struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Slug      string `json:"slug"`
	Content   string `json:"content"`
	OwnerID   *int64 `json:"owner_id"`
	Version   int64  `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateWikiLinkRequest 创建Wiki链接请求
type CreateWikiLinkRequest struct {
	Title string `json:"title" binding:"required,max=500"`
	Href  string `json:"href" binding:"required,max=500"`
	Order int    `json:"order"`
}

// WikiLinkResponse Wiki链接响应
type WikiLinkResponse struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Title     string `json:"title"`
	Href      string `json:"href"`
	Order     int    `json:"order"`
}
