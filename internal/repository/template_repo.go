package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type TemplateRepository interface {
	Create(tx *gorm.DB, template *model.ProjectTemplate) error
	FindByID(id int64) (*model.ProjectTemplate, error)
	FindBySlug(slug string) (*model.ProjectTemplate, error)
	List() ([]*model.ProjectTemplate, error)
	Update(tx *gorm.DB, template *model.ProjectTemplate) error
	Delete(tx *gorm.DB, id int64) error
	Count() (int64, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(tx *gorm.DB, template *model.ProjectTemplate) error {
	if err := tx.Create(template).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建项目模板失败", err)
	}
	return nil
}

func (r *templateRepository) FindByID(id int64) (*model.ProjectTemplate, error) {
	var template model.ProjectTemplate
	if err := r.db.First(&template, id).Error; err != nil {
		return nil, translateNotFound(err, "查询项目模板失败")
	}
	return &template, nil
}

func (r *templateRepository) FindBySlug(slug string) (*model.ProjectTemplate, error) {
	var template model.ProjectTemplate
	if err := r.db.Where("slug = ?", slug).First(&template).Error; err != nil {
		return nil, translateNotFound(err, "查询项目模板失败")
	}
	return &template, nil
}

func (r *templateRepository) List() ([]*model.ProjectTemplate, error) {
	var templates []*model.ProjectTemplate
	if err := r.db.Order("id ASC").Find(&templates).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目模板列表失败", err)
	}
	return templates, nil
}

func (r *templateRepository) Update(tx *gorm.DB, template *model.ProjectTemplate) error {
	if err := tx.Save(template).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新项目模板失败", err)
	}
	return nil
}

func (r *templateRepository) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.ProjectTemplate{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目模板失败", err)
	}
	return nil
}

func (r *templateRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.ProjectTemplate{}).Count(&count).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计项目模板失败", err)
	}
	return count, nil
}
