package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type AttachmentRepository interface {
	Create(tx *gorm.DB, attachment *model.Attachment) error
	FindByID(id int64) (*model.Attachment, error)
	ListByObject(projectID int64, contentType string, objectID int64) ([]*model.Attachment, error)
	Update(tx *gorm.DB, attachment *model.Attachment) error
	Delete(tx *gorm.DB, id int64) error
	DeleteByObject(tx *gorm.DB, contentType string, objectID int64) error
	DeleteByProject(tx *gorm.DB, projectID int64) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(tx *gorm.DB, attachment *model.Attachment) error {
	if err := tx.Create(attachment).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建附件失败", err)
	}
	return nil
}

func (r *attachmentRepository) FindByID(id int64) (*model.Attachment, error) {
	var attachment model.Attachment
	if err := r.db.First(&attachment, id).Error; err != nil {
		return nil, translateNotFound(err, "查询附件失败")
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByObject(projectID int64, contentType string, objectID int64) ([]*model.Attachment, error) {
	var attachments []*model.Attachment
	err := r.db.Where("project_id = ? AND content_type = ? AND object_id = ?",
		projectID, contentType, objectID).
		Order("`order` ASC, id ASC").Find(&attachments).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询附件列表失败", err)
	}
	return attachments, nil
}

func (r *attachmentRepository) Update(tx *gorm.DB, attachment *model.Attachment) error {
	if err := tx.Save(attachment).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新附件失败", err)
	}
	return nil
}

func (r *attachmentRepository) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.Attachment{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除附件失败", err)
	}
	return nil
}

func (r *attachmentRepository) DeleteByObject(tx *gorm.DB, contentType string, objectID int64) error {
	err := tx.Where("content_type = ? AND object_id = ?", contentType, objectID).
		Delete(&model.Attachment{}).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除附件失败", err)
	}
	return nil
}

func (r *attachmentRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&model.Attachment{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除附件失败", err)
	}
	return nil
}
