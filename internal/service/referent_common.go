package service

import (
	"gorm.io/gorm"

	"agile-pm/internal/core"
	"agile-pm/internal/model"
	"agile-pm/internal/repository"
	pkgErrors "agile-pm/pkg/errors"
)

// loadWritableProject 加载项目并拒绝被阻塞的项目
func loadWritableProject(projectRepo repository.ProjectRepository, projectID int64) (*model.Project, error) {
	project, err := projectRepo.FindByID(projectID)
	if err != nil {
		return nil, err
	}
	if project.IsBlocked() {
		return nil, pkgErrors.ErrBlocked
	}
	return project, nil
}

// checkCatalogRow 校验配置行属于该项目(类型由调用方的kind决定)
func checkCatalogRow(taxonomyRepo repository.TaxonomyRepository, kind string, id, projectID int64) error {
	row, err := taxonomyRepo.FindByID(kind, id)
	if err != nil {
		return err
	}
	if row.ProjectID != projectID {
		return pkgErrors.ErrWrongProject
	}
	return nil
}

// registerProjectTags 把条目上的新标签登记到项目登记表
func registerProjectTags(tx *gorm.DB, projectRepo repository.ProjectRepository, project *model.Project, tags []string) error {
	if !core.RegisterTags(project, tags) {
		return nil
	}
	return projectRepo.UpdateColumns(tx, project.ID, map[string]interface{}{
		"tags_colors": project.TagsColors,
	})
}

// syncTagRegistry 按项目内实际在用的标签重建登记表, 清掉不再使用的标签
func syncTagRegistry(tx *gorm.DB, projectRepo repository.ProjectRepository, project *model.Project) error {
	used, err := projectRepo.CollectUsedTags(tx, project.ID)
	if err != nil {
		return err
	}
	if !core.RebuildTagRegistry(project, used) {
		return nil
	}
	return projectRepo.UpdateColumns(tx, project.ID, map[string]interface{}{
		"tags_colors": project.TagsColors,
	})
}

// refreshTotalStoryPoints 重算项目总估点缓存(可计点角色的估点值求和)
func refreshTotalStoryPoints(tx *gorm.DB, projectRepo repository.ProjectRepository, projectID int64) error {
	var total float64
	err := tx.Table(model.RolePointsTableName+" rp").
		Joins("JOIN "+model.UserStoryTableName+" us ON us.id = rp.user_story_id").
		Joins("JOIN "+model.PointsTableName+" p ON p.id = rp.points_id").
		Joins("JOIN "+model.RoleTableName+" r ON r.id = rp.role_id").
		Where("us.project_id = ? AND r.computable = ? AND p.value IS NOT NULL", projectID, true).
		Select("COALESCE(SUM(p.value), 0)").
		Scan(&total).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计项目总估点失败", err)
	}
	return projectRepo.UpdateColumns(tx, projectID, map[string]interface{}{
		"total_story_points": total,
	})
}
