package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type UserStoryRepository interface {
	Create(tx *gorm.DB, us *model.UserStory) error
	FindByID(id int64) (*model.UserStory, error)
	FindByIDTx(tx *gorm.DB, id int64) (*model.UserStory, error)
	FindByRef(projectID, ref int64) (*model.UserStory, error)
	ListByProject(projectID int64, page, pageSize int) ([]*model.UserStory, int64, error)
	ListByStatus(tx *gorm.DB, projectID, statusID int64) ([]*model.UserStory, error)
	ListByProjectTx(tx *gorm.DB, projectID int64) ([]*model.UserStory, error)
	Update(tx *gorm.DB, us *model.UserStory) error
	UpdateColumns(tx *gorm.DB, id int64, columns map[string]interface{}) error
	Delete(tx *gorm.DB, id int64) error
	DeleteByProject(tx *gorm.DB, projectID int64) error

	ListRolePoints(userStoryID int64) ([]*model.RolePoints, error)
	ReplaceRolePoints(tx *gorm.DB, userStoryID int64, rolePoints []model.RolePoints) error
}

type userStoryRepository struct {
	db *gorm.DB
}

func NewUserStoryRepository(db *gorm.DB) UserStoryRepository {
	return &userStoryRepository{db: db}
}

func (r *userStoryRepository) Create(tx *gorm.DB, us *model.UserStory) error {
	if err := tx.Create(us).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建用户故事失败", err)
	}
	return nil
}

func (r *userStoryRepository) FindByID(id int64) (*model.UserStory, error) {
	return r.FindByIDTx(r.db, id)
}

func (r *userStoryRepository) FindByIDTx(tx *gorm.DB, id int64) (*model.UserStory, error) {
	var us model.UserStory
	if err := tx.First(&us, id).Error; err != nil {
		return nil, translateNotFound(err, "查询用户故事失败")
	}
	return &us, nil
}

func (r *userStoryRepository) FindByRef(projectID, ref int64) (*model.UserStory, error) {
	var us model.UserStory
	err := r.db.Where("project_id = ? AND ref = ?", projectID, ref).First(&us).Error
	if err != nil {
		return nil, translateNotFound(err, "查询用户故事失败")
	}
	return &us, nil
}

func (r *userStoryRepository) ListByProject(projectID int64, page, pageSize int) ([]*model.UserStory, int64, error) {
	var stories []*model.UserStory
	var total int64

	query := r.db.Model(&model.UserStory{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计用户故事失败", err)
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).
		Order("backlog_order ASC, ref ASC").Find(&stories).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户故事列表失败", err)
	}

	return stories, total, nil
}

func (r *userStoryRepository) ListByStatus(tx *gorm.DB, projectID, statusID int64) ([]*model.UserStory, error) {
	var stories []*model.UserStory
	err := tx.Where("project_id = ? AND status_id = ?", projectID, statusID).Find(&stories).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户故事列表失败", err)
	}
	return stories, nil
}

func (r *userStoryRepository) ListByProjectTx(tx *gorm.DB, projectID int64) ([]*model.UserStory, error) {
	var stories []*model.UserStory
	if err := tx.Where("project_id = ?", projectID).Find(&stories).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户故事列表失败", err)
	}
	return stories, nil
}

func (r *userStoryRepository) Update(tx *gorm.DB, us *model.UserStory) error {
	if err := tx.Save(us).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新用户故事失败", err)
	}
	return nil
}

func (r *userStoryRepository) UpdateColumns(tx *gorm.DB, id int64, columns map[string]interface{}) error {
	if err := tx.Model(&model.UserStory{}).Where("id = ?", id).Updates(columns).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新用户故事失败", err)
	}
	return nil
}

func (r *userStoryRepository) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Where("user_story_id = ?", id).Delete(&model.RolePoints{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除估点记录失败", err)
	}
	if err := tx.Where("user_story_id = ?", id).Delete(&model.EpicUserStory{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除史诗关联失败", err)
	}
	if err := tx.Delete(&model.UserStory{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除用户故事失败", err)
	}
	return nil
}

func (r *userStoryRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	subQuery := tx.Model(&model.UserStory{}).Select("id").Where("project_id = ?", projectID)
	if err := tx.Where("user_story_id IN (?)", subQuery).Delete(&model.RolePoints{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除估点记录失败", err)
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&model.UserStory{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除用户故事失败", err)
	}
	return nil
}

func (r *userStoryRepository) ListRolePoints(userStoryID int64) ([]*model.RolePoints, error) {
	var rolePoints []*model.RolePoints
	err := r.db.Where("user_story_id = ?", userStoryID).
		Preload("Points").Order("role_id ASC").Find(&rolePoints).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询估点记录失败", err)
	}
	return rolePoints, nil
}

func (r *userStoryRepository) ReplaceRolePoints(tx *gorm.DB, userStoryID int64, rolePoints []model.RolePoints) error {
	if err := tx.Where("user_story_id = ?", userStoryID).Delete(&model.RolePoints{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除估点记录失败", err)
	}
	if len(rolePoints) == 0 {
		return nil
	}
	if err := tx.Create(&rolePoints).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "写入估点记录失败", err)
	}
	return nil
}
