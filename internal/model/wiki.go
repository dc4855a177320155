package model

const (
	WikiPageTableName = "wiki_pages"
	WikiLinkTableName = "wiki_links"
)

// WikiPage 项目内的wiki页面
// (project_id, slug) 唯一, Version 用于乐观并发控制
type WikiPage struct {
	BaseModel
	ProjectID      int64  `gorm:"not null;uniqueIndex:idx_wiki_page_project_slug" json:"project_id"`
	Slug           string `gorm:"size:500;not null;uniqueIndex:idx_wiki_page_project_slug" json:"slug"`
	Content        string `gorm:"type:text" json:"content"`
	OwnerID        *int64 `json:"owner_id"`
	LastModifierID *int64 `json:"last_modifier_id"`
	Version        int64  `gorm:"not null;default:1" json:"version"`
}

func (WikiPage) TableName() string {
	return WikiPageTableName
}

// WikiLink 项目wiki侧边导航链接
// (project_id, href) 唯一
type WikiLink struct {
	BaseModel
	ProjectID int64  `gorm:"not null;uniqueIndex:idx_wiki_link_project_href" json:"project_id"`
	Title     string `gorm:"size:500;not null" json:"title"`
	Href      string `gorm:"size:500;not null;uniqueIndex:idx_wiki_link_project_href" json:"href"`
	Order     int    `gorm:"not null;default:10" json:"order"`
}

func (WikiLink) TableName() string {
	return WikiLinkTableName
}
