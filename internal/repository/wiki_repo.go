package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type WikiRepository interface {
	CreatePage(tx *gorm.DB, page *model.WikiPage) error
	FindPageByID(id int64) (*model.WikiPage, error)
	FindPageByIDTx(tx *gorm.DB, id int64) (*model.WikiPage, error)
	FindPageBySlug(projectID int64, slug string) (*model.WikiPage, error)
	ListPages(projectID int64) ([]*model.WikiPage, error)
	UpdatePage(tx *gorm.DB, page *model.WikiPage) error
	DeletePage(tx *gorm.DB, id int64) error

	CreateLink(tx *gorm.DB, link *model.WikiLink) error
	ListLinks(projectID int64) ([]*model.WikiLink, error)
	DeleteLink(tx *gorm.DB, id int64) error

	DeleteByProject(tx *gorm.DB, projectID int64) error
}

type wikiRepository struct {
	db *gorm.DB
}

func NewWikiRepository(db *gorm.DB) WikiRepository {
	return &wikiRepository{db: db}
}

func (r *wikiRepository) CreatePage(tx *gorm.DB, page *model.WikiPage) error {
	if err := tx.Create(page).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建Wiki页面失败", err)
	}
	return nil
}

func (r *wikiRepository) FindPageByID(id int64) (*model.WikiPage, error) {
	return r.FindPageByIDTx(r.db, id)
}

func (r *wikiRepository) FindPageByIDTx(tx *gorm.DB, id int64) (*model.WikiPage, error) {
	var page model.WikiPage
	if err := tx.First(&page, id).Error; err != nil {
		return nil, translateNotFound(err, "查询Wiki页面失败")
	}
	return &page, nil
}

func (r *wikiRepository) FindPageBySlug(projectID int64, slug string) (*model.WikiPage, error) {
	var page model.WikiPage
	err := r.db.Where("project_id = ? AND slug = ?", projectID, slug).First(&page).Error
	if err != nil {
		return nil, translateNotFound(err, "查询Wiki页面失败")
	}
	return &page, nil
}

func (r *wikiRepository) ListPages(projectID int64) ([]*model.WikiPage, error) {
	var pages []*model.WikiPage
	err := r.db.Where("project_id = ?", projectID).Order("slug ASC").Find(&pages).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询Wiki页面列表失败", err)
	}
	return pages, nil
}

func (r *wikiRepository) UpdatePage(tx *gorm.DB, page *model.WikiPage) error {
	if err := tx.Save(page).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新Wiki页面失败", err)
	}
	return nil
}

func (r *wikiRepository) DeletePage(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.WikiPage{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除Wiki页面失败", err)
	}
	return nil
}

func (r *wikiRepository) CreateLink(tx *gorm.DB, link *model.WikiLink) error {
	if err := tx.Create(link).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建Wiki链接失败", err)
	}
	return nil
}

func (r *wikiRepository) ListLinks(projectID int64) ([]*model.WikiLink, error) {
	var links []*model.WikiLink
	err := r.db.Where("project_id = ?", projectID).Order("`order` ASC, id ASC").Find(&links).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询Wiki链接失败", err)
	}
	return links, nil
}

func (r *wikiRepository) DeleteLink(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.WikiLink{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除Wiki链接失败", err)
	}
	return nil
}

func (r *wikiRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&model.WikiLink{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除Wiki链接失败", err)
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&model.WikiPage{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除Wiki页面失败", err)
	}
	return nil
}
