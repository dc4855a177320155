package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

type ProjectRepository interface {
	Create(tx *gorm.DB, project *model.Project) error
	FindByID(id int64) (*model.Project, error)
	FindByIDTx(tx *gorm.DB, id int64) (*model.Project, error)
	FindBySlug(slug string) (*model.Project, error)
	FindByName(name string) (*model.Project, error)
	List(page, pageSize int, keyword string) ([]*model.Project, int64, error)
	Update(tx *gorm.DB, project *model.Project) error
	UpdateColumns(tx *gorm.DB, id int64, columns map[string]interface{}) error
	Delete(tx *gorm.DB, id int64) error
	CountByOwner(ownerID int64, isPrivate bool, excludeProjectID int64) (int64, error)
	ListOwnedIDs(ownerID int64, isPrivate bool, excludeProjectID int64) ([]int64, error)
	ListDeleting(limit int) ([]*model.Project, error)
	// CollectUsedTags 收集项目内所有编号实体当前使用的标签, 保持首次出现顺序
	CollectUsedTags(tx *gorm.DB, projectID int64) ([]string, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(tx *gorm.DB, project *model.Project) error {
	if err := tx.Create(project).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建项目失败", err)
	}
	return nil
}

func (r *projectRepository) FindByID(id int64) (*model.Project, error) {
	return r.FindByIDTx(r.db, id)
}

func (r *projectRepository) FindByIDTx(tx *gorm.DB, id int64) (*model.Project, error) {
	var project model.Project
	if err := tx.First(&project, id).Error; err != nil {
		return nil, translateNotFound(err, "查询项目失败")
	}
	return &project, nil
}

func (r *projectRepository) FindBySlug(slug string) (*model.Project, error) {
	var project model.Project
	if err := r.db.Where("slug = ?", slug).First(&project).Error; err != nil {
		return nil, translateNotFound(err, "查询项目失败")
	}
	return &project, nil
}

func (r *projectRepository) FindByName(name string) (*model.Project, error) {
	var project model.Project
	if err := r.db.Where("name = ?", name).First(&project).Error; err != nil {
		return nil, translateNotFound(err, "查询项目失败")
	}
	return &project, nil
}

func (r *projectRepository) List(page, pageSize int, keyword string) ([]*model.Project, int64, error) {
	var projects []*model.Project
	var total int64

	query := r.db.Model(&model.Project{})

	// 关键字搜索
	if keyword != "" {
		query = query.Where("name LIKE ? OR description LIKE ?",
			"%"+keyword+"%", "%"+keyword+"%")
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计项目数量失败", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目列表失败", err)
	}

	return projects, total, nil
}

func (r *projectRepository) Update(tx *gorm.DB, project *model.Project) error {
	if err := tx.Save(project).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新项目失败", err)
	}
	return nil
}

func (r *projectRepository) UpdateColumns(tx *gorm.DB, id int64, columns map[string]interface{}) error {
	if err := tx.Model(&model.Project{}).Where("id = ?", id).Updates(columns).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新项目失败", err)
	}
	return nil
}

func (r *projectRepository) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.Project{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目失败", err)
	}
	return nil
}

func (r *projectRepository) CountByOwner(ownerID int64, isPrivate bool, excludeProjectID int64) (int64, error) {
	var count int64
	query := r.db.Model(&model.Project{}).
		Where("owner_id = ? AND is_private = ?", ownerID, isPrivate)
	if excludeProjectID > 0 {
		query = query.Where("id <> ?", excludeProjectID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计项目数量失败", err)
	}
	return count, nil
}

func (r *projectRepository) ListOwnedIDs(ownerID int64, isPrivate bool, excludeProjectID int64) ([]int64, error) {
	var ids []int64
	query := r.db.Model(&model.Project{}).
		Where("owner_id = ? AND is_private = ?", ownerID, isPrivate)
	if excludeProjectID > 0 {
		query = query.Where("id <> ?", excludeProjectID)
	}
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目列表失败", err)
	}
	return ids, nil
}

func (r *projectRepository) ListDeleting(limit int) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.Where("blocked_code = ?", constants.BlockedByDeleting).
		Order("updated_at ASC").Limit(limit).Find(&projects).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询待删除项目失败", err)
	}
	return projects, nil
}

func (r *projectRepository) CollectUsedTags(tx *gorm.DB, projectID int64) ([]string, error) {
	tables := []string{
		model.UserStoryTableName,
		model.TaskTableName,
		model.IssueTableName,
		model.EpicTableName,
	}

	seen := make(map[string]struct{})
	used := make([]string, 0)

	for _, table := range tables {
		var lists []model.StringList
		if err := tx.Table(table).Where("project_id = ?", projectID).
			Pluck("tags", &lists).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "收集标签失败", err)
		}
		for _, tags := range lists {
			for _, tag := range tags {
				if _, ok := seen[tag]; ok {
					continue
				}
				seen[tag] = struct{}{}
				used = append(used, tag)
			}
		}
	}

	return used, nil
}
