package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type ReferenceRepository interface {
	// Next 为 (project, kind) 分配下一个编号, 必须在事务内调用。
	// 计数器行加行锁, 并发创建被串行化, 编号稠密且单调递增。
	Next(tx *gorm.DB, projectID int64, contentType string) (int64, error)
	// Current 读取当前计数器值, 计数器行不存在时返回0
	Current(projectID int64, contentType string) (int64, error)
	// DeleteByProject 删除项目的全部计数器行
	DeleteByProject(tx *gorm.DB, projectID int64) error
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) Next(tx *gorm.DB, projectID int64, contentType string) (int64, error) {
	var ref model.Reference

	// 行锁读, 计数器行不存在时先插入
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("project_id = ? AND content_type = ?", projectID, contentType).
		First(&ref).Error
	if err == gorm.ErrRecordNotFound {
		ref = model.Reference{ProjectID: projectID, ContentType: contentType, Ref: 0}
		if err := tx.Create(&ref).Error; err != nil {
			return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "初始化编号计数器失败", err)
		}
		// 插入后重新加锁读取, 处理并发初始化
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ? AND content_type = ?", projectID, contentType).
			First(&ref).Error; err != nil {
			return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "读取编号计数器失败", err)
		}
	} else if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "读取编号计数器失败", err)
	}

	next := ref.Ref + 1
	if err := tx.Model(&model.Reference{}).
		Where("id = ?", ref.ID).
		Update("ref", next).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新编号计数器失败", err)
	}

	return next, nil
}

func (r *referenceRepository) Current(projectID int64, contentType string) (int64, error) {
	var ref model.Reference
	err := r.db.Where("project_id = ? AND content_type = ?", projectID, contentType).First(&ref).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "读取编号计数器失败", err)
	}
	return ref.Ref, nil
}

func (r *referenceRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&model.Reference{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除编号计数器失败", err)
	}
	return nil
}
