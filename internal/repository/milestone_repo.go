package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type MilestoneRepository interface {
	Create(tx *gorm.DB, milestone *model.Milestone) error
	FindByID(id int64) (*model.Milestone, error)
	FindByIDTx(tx *gorm.DB, id int64) (*model.Milestone, error)
	FindBySlug(projectID int64, slug string) (*model.Milestone, error)
	ListByProject(projectID int64) ([]*model.Milestone, error)
	Update(tx *gorm.DB, milestone *model.Milestone) error
	Delete(tx *gorm.DB, id int64) error
	DeleteByProject(tx *gorm.DB, projectID int64) error
	ExistsName(projectID int64, name string, excludeID int64) (bool, error)
}

type milestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) Create(tx *gorm.DB, milestone *model.Milestone) error {
	if err := tx.Create(milestone).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建里程碑失败", err)
	}
	return nil
}

func (r *milestoneRepository) FindByID(id int64) (*model.Milestone, error) {
	return r.FindByIDTx(r.db, id)
}

func (r *milestoneRepository) FindByIDTx(tx *gorm.DB, id int64) (*model.Milestone, error) {
	var milestone model.Milestone
	if err := tx.First(&milestone, id).Error; err != nil {
		return nil, translateNotFound(err, "查询里程碑失败")
	}
	return &milestone, nil
}

func (r *milestoneRepository) FindBySlug(projectID int64, slug string) (*model.Milestone, error) {
	var milestone model.Milestone
	err := r.db.Where("project_id = ? AND slug = ?", projectID, slug).First(&milestone).Error
	if err != nil {
		return nil, translateNotFound(err, "查询里程碑失败")
	}
	return &milestone, nil
}

func (r *milestoneRepository) ListByProject(projectID int64) ([]*model.Milestone, error) {
	var milestones []*model.Milestone
	err := r.db.Where("project_id = ?", projectID).
		Order("`order` ASC, id ASC").Find(&milestones).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询里程碑列表失败", err)
	}
	return milestones, nil
}

func (r *milestoneRepository) Update(tx *gorm.DB, milestone *model.Milestone) error {
	if err := tx.Save(milestone).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新里程碑失败", err)
	}
	return nil
}

func (r *milestoneRepository) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.Milestone{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除里程碑失败", err)
	}
	return nil
}

func (r *milestoneRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&model.Milestone{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除里程碑失败", err)
	}
	return nil
}

func (r *milestoneRepository) ExistsName(projectID int64, name string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.Model(&model.Milestone{}).
		Where("project_id = ? AND name = ?", projectID, name)
	if excludeID > 0 {
		query = query.Where("id != ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询里程碑失败", err)
	}
	return count > 0, nil
}
