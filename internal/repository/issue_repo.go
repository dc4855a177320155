package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type IssueRepository interface {
	Create(tx *gorm.DB, issue *model.Issue) error
	FindByID(id int64) (*model.Issue, error)
	FindByIDTx(tx *gorm.DB, id int64) (*model.Issue, error)
	FindByRef(projectID, ref int64) (*model.Issue, error)
	ListByProject(projectID int64, page, pageSize int) ([]*model.Issue, int64, error)
	Update(tx *gorm.DB, issue *model.Issue) error
	Delete(tx *gorm.DB, id int64) error
	DeleteByProject(tx *gorm.DB, projectID int64) error
}

type issueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Create(tx *gorm.DB, issue *model.Issue) error {
	if err := tx.Create(issue).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建问题失败", err)
	}
	return nil
}

func (r *issueRepository) FindByID(id int64) (*model.Issue, error) {
	return r.FindByIDTx(r.db, id)
}

func (r *issueRepository) FindByIDTx(tx *gorm.DB, id int64) (*model.Issue, error) {
	var issue model.Issue
	if err := tx.First(&issue, id).Error; err != nil {
		return nil, translateNotFound(err, "查询问题失败")
	}
	return &issue, nil
}

func (r *issueRepository) FindByRef(projectID, ref int64) (*model.Issue, error) {
	var issue model.Issue
	err := r.db.Where("project_id = ? AND ref = ?", projectID, ref).First(&issue).Error
	if err != nil {
		return nil, translateNotFound(err, "查询问题失败")
	}
	return &issue, nil
}

func (r *issueRepository) ListByProject(projectID int64, page, pageSize int) ([]*model.Issue, int64, error) {
	var issues []*model.Issue
	var total int64

	query := r.db.Model(&model.Issue{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计问题失败", err)
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("ref DESC").Find(&issues).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询问题列表失败", err)
	}

	return issues, total, nil
}

func (r *issueRepository) Update(tx *gorm.DB, issue *model.Issue) error {
	if err := tx.Save(issue).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新问题失败", err)
	}
	return nil
}

func (r *issueRepository) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.Issue{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除问题失败", err)
	}
	return nil
}

func (r *issueRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&model.Issue{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除问题失败", err)
	}
	return nil
}
