package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type EpicRepository interface {
	Create(tx *gorm.DB, epic *model.Epic) error
	FindByID(id int64) (*model.Epic, error)
	FindByIDTx(tx *gorm.DB, id int64) (*model.Epic, error)
	FindByRef(projectID, ref int64) (*model.Epic, error)
	ListByProject(projectID int64, page, pageSize int) ([]*model.Epic, int64, error)
	Update(tx *gorm.DB, epic *model.Epic) error
	Delete(tx *gorm.DB, id int64) error
	DeleteByProject(tx *gorm.DB, projectID int64) error

	FindLink(epicID, userStoryID int64) (*model.EpicUserStory, error)
	CreateLink(tx *gorm.DB, link *model.EpicUserStory) error
	DeleteLink(tx *gorm.DB, epicID, userStoryID int64) error
	ListLinks(epicID int64) ([]*model.EpicUserStory, error)
	MaxLinkOrder(epicID int64) (int, error)
}

type epicRepository struct {
	db *gorm.DB
}

func NewEpicRepository(db *gorm.DB) EpicRepository {
	return &epicRepository{db: db}
}

func (r *epicRepository) Create(tx *gorm.DB, epic *model.Epic) error {
	if err := tx.Create(epic).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建史诗失败", err)
	}
	return nil
}

func (r *epicRepository) FindByID(id int64) (*model.Epic, error) {
	return r.FindByIDTx(r.db, id)
}

func (r *epicRepository) FindByIDTx(tx *gorm.DB, id int64) (*model.Epic, error) {
	var epic model.Epic
	if err := tx.First(&epic, id).Error; err != nil {
		return nil, translateNotFound(err, "查询史诗失败")
	}
	return &epic, nil
}

func (r *epicRepository) FindByRef(projectID, ref int64) (*model.Epic, error) {
	var epic model.Epic
	err := r.db.Where("project_id = ? AND ref = ?", projectID, ref).First(&epic).Error
	if err != nil {
		return nil, translateNotFound(err, "查询史诗失败")
	}
	return &epic, nil
}

func (r *epicRepository) ListByProject(projectID int64, page, pageSize int) ([]*model.Epic, int64, error) {
	var epics []*model.Epic
	var total int64

	query := r.db.Model(&model.Epic{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计史诗失败", err)
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).
		Order("epic_order ASC, ref ASC").Find(&epics).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询史诗列表失败", err)
	}

	return epics, total, nil
}

func (r *epicRepository) Update(tx *gorm.DB, epic *model.Epic) error {
	if err := tx.Save(epic).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新史诗失败", err)
	}
	return nil
}

func (r *epicRepository) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Where("epic_id = ?", id).Delete(&model.EpicUserStory{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除史诗关联失败", err)
	}
	if err := tx.Delete(&model.Epic{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除史诗失败", err)
	}
	return nil
}

func (r *epicRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	subQuery := tx.Model(&model.Epic{}).Select("id").Where("project_id = ?", projectID)
	if err := tx.Where("epic_id IN (?)", subQuery).Delete(&model.EpicUserStory{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除史诗关联失败", err)
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&model.Epic{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除史诗失败", err)
	}
	return nil
}

func (r *epicRepository) FindLink(epicID, userStoryID int64) (*model.EpicUserStory, error) {
	var link model.EpicUserStory
	err := r.db.Where("epic_id = ? AND user_story_id = ?", epicID, userStoryID).First(&link).Error
	if err != nil {
		return nil, translateNotFound(err, "查询史诗关联失败")
	}
	return &link, nil
}

func (r *epicRepository) CreateLink(tx *gorm.DB, link *model.EpicUserStory) error {
	if err := tx.Create(link).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建史诗关联失败", err)
	}
	return nil
}

func (r *epicRepository) DeleteLink(tx *gorm.DB, epicID, userStoryID int64) error {
	err := tx.Where("epic_id = ? AND user_story_id = ?", epicID, userStoryID).
		Delete(&model.EpicUserStory{}).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除史诗关联失败", err)
	}
	return nil
}

func (r *epicRepository) ListLinks(epicID int64) ([]*model.EpicUserStory, error) {
	var links []*model.EpicUserStory
	err := r.db.Where("epic_id = ?", epicID).Order("`order` ASC, id ASC").Find(&links).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询史诗关联失败", err)
	}
	return links, nil
}

func (r *epicRepository) MaxLinkOrder(epicID int64) (int, error) {
	var max *int
	err := r.db.Model(&model.EpicUserStory{}).
		Where("epic_id = ?", epicID).
		Select("MAX(`order`)").Scan(&max).Error
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询史诗关联失败", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
