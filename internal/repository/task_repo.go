package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type TaskRepository interface {
	Create(tx *gorm.DB, task *model.Task) error
	FindByID(id int64) (*model.Task, error)
	FindByIDTx(tx *gorm.DB, id int64) (*model.Task, error)
	FindByRef(projectID, ref int64) (*model.Task, error)
	ListByProject(projectID int64, page, pageSize int) ([]*model.Task, int64, error)
	ListByUserStory(tx *gorm.DB, userStoryID int64) ([]*model.Task, error)
	ListByStatus(tx *gorm.DB, projectID, statusID int64) ([]*model.Task, error)
	Update(tx *gorm.DB, task *model.Task) error
	Delete(tx *gorm.DB, id int64) error
	DeleteByProject(tx *gorm.DB, projectID int64) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(tx *gorm.DB, task *model.Task) error {
	if err := tx.Create(task).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建任务失败", err)
	}
	return nil
}

func (r *taskRepository) FindByID(id int64) (*model.Task, error) {
	return r.FindByIDTx(r.db, id)
}

func (r *taskRepository) FindByIDTx(tx *gorm.DB, id int64) (*model.Task, error) {
	var task model.Task
	if err := tx.First(&task, id).Error; err != nil {
		return nil, translateNotFound(err, "查询任务失败")
	}
	return &task, nil
}

func (r *taskRepository) FindByRef(projectID, ref int64) (*model.Task, error) {
	var task model.Task
	err := r.db.Where("project_id = ? AND ref = ?", projectID, ref).First(&task).Error
	if err != nil {
		return nil, translateNotFound(err, "查询任务失败")
	}
	return &task, nil
}

func (r *taskRepository) ListByProject(projectID int64, page, pageSize int) ([]*model.Task, int64, error) {
	var tasks []*model.Task
	var total int64

	query := r.db.Model(&model.Task{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计任务失败", err)
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).
		Order("task_order ASC, ref ASC").Find(&tasks).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询任务列表失败", err)
	}

	return tasks, total, nil
}

func (r *taskRepository) ListByUserStory(tx *gorm.DB, userStoryID int64) ([]*model.Task, error) {
	var tasks []*model.Task
	err := tx.Where("user_story_id = ?", userStoryID).Order("task_order ASC").Find(&tasks).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询任务列表失败", err)
	}
	return tasks, nil
}

func (r *taskRepository) ListByStatus(tx *gorm.DB, projectID, statusID int64) ([]*model.Task, error) {
	var tasks []*model.Task
	err := tx.Where("project_id = ? AND status_id = ?", projectID, statusID).Find(&tasks).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询任务列表失败", err)
	}
	return tasks, nil
}

func (r *taskRepository) Update(tx *gorm.DB, task *model.Task) error {
	if err := tx.Save(task).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新任务失败", err)
	}
	return nil
}

func (r *taskRepository) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.Task{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除任务失败", err)
	}
	return nil
}

func (r *taskRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&model.Task{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除任务失败", err)
	}
	return nil
}
