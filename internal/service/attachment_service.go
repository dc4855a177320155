package service

import (
	"time"

	"gorm.io/gorm"

	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/repository"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

type AttachmentService interface {
	Create(projectID, ownerID int64, req *dto.CreateAttachmentRequest) (*dto.AttachmentResponse, error)
	ListByObject(projectID int64, query *dto.AttachmentListQuery) ([]*dto.AttachmentResponse, error)
	Update(projectID, id int64, req *dto.UpdateAttachmentRequest) (*dto.AttachmentResponse, error)
	Delete(projectID, id int64) error
}

type attachmentService struct {
	db             *gorm.DB
	attachmentRepo repository.AttachmentRepository
	projectRepo    repository.ProjectRepository
}

func NewAttachmentService(
	db *gorm.DB,
	attachmentRepo repository.AttachmentRepository,
	projectRepo repository.ProjectRepository,
) AttachmentService {
	return &attachmentService{
		db:             db,
		attachmentRepo: attachmentRepo,
		projectRepo:    projectRepo,
	}
}

// objectModels 附件归属实体的存在性校验按 content_type 分发
var objectModels = map[string]func() interface{}{
	constants.ObjectKindUserStory: func() interface{} { return &model.UserStory{} },
	constants.ObjectKindTask:      func() interface{} { return &model.Task{} },
	constants.ObjectKindIssue:     func() interface{} { return &model.Issue{} },
	constants.ObjectKindEpic:      func() interface{} { return &model.Epic{} },
	constants.ObjectKindWikiPage:  func() interface{} { return &model.WikiPage{} },
	constants.ObjectKindMilestone: func() interface{} { return &model.Milestone{} },
}

func (s *attachmentService) Create(projectID, ownerID int64, req *dto.CreateAttachmentRequest) (*dto.AttachmentResponse, error) {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return nil, err
	}
	if err := s.checkObject(projectID, req.ContentType, req.ObjectID); err != nil {
		return nil, err
	}

	attachment := &model.Attachment{
		ProjectID:    projectID,
		OwnerID:      &ownerID,
		ContentType:  req.ContentType,
		ObjectID:     req.ObjectID,
		AttachedFile: req.AttachedFile,
		Description:  req.Description,
		Order:        req.Order,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.attachmentRepo.Create(tx, attachment)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(attachment), nil
}

func (s *attachmentService) ListByObject(projectID int64, query *dto.AttachmentListQuery) ([]*dto.AttachmentResponse, error) {
	if _, ok := objectModels[query.ContentType]; !ok {
		return nil, pkgErrors.NewValidation("content_type", "未知的归属实体类型")
	}
	attachments, err := s.attachmentRepo.ListByObject(projectID, query.ContentType, query.ObjectID)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.AttachmentResponse, len(attachments))
	for i, attachment := range attachments {
		responses[i] = s.toResponse(attachment)
	}
	return responses, nil
}

func (s *attachmentService) Update(projectID, id int64, req *dto.UpdateAttachmentRequest) (*dto.AttachmentResponse, error) {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return nil, err
	}
	attachment, err := s.attachmentOfProject(id, projectID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		attachment.Description = *req.Description
	}
	if req.IsDeprecated != nil {
		attachment.IsDeprecated = *req.IsDeprecated
	}
	if req.Order != nil {
		attachment.Order = *req.Order
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.attachmentRepo.Update(tx, attachment)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(attachment), nil
}

func (s *attachmentService) Delete(projectID, id int64) error {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return err
	}
	attachment, err := s.attachmentOfProject(id, projectID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.attachmentRepo.Delete(tx, attachment.ID)
	})
}

// checkObject 归属实体必须存在且属于该项目
func (s *attachmentService) checkObject(projectID int64, contentType string, objectID int64) error {
	newModel, ok := objectModels[contentType]
	if !ok {
		return pkgErrors.NewValidation("content_type", "未知的归属实体类型")
	}
	var count int64
	err := s.db.Model(newModel()).
		Where("id = ? AND project_id = ?", objectID, projectID).
		Count(&count).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "校验附件归属实体失败", err)
	}
	if count == 0 {
		return pkgErrors.New(pkgErrors.CodeNotFound, "附件归属实体不存在")
	}
	return nil
}

func (s *attachmentService) attachmentOfProject(id, projectID int64) (*model.Attachment, error) {
	attachment, err := s.attachmentRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if attachment.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return attachment, nil
}

func (s *attachmentService) toResponse(attachment *model.Attachment) *dto.AttachmentResponse {
	return &dto.AttachmentResponse{
		ID:           attachment.ID,
		ProjectID:    attachment.ProjectID,
		OwnerID:      attachment.OwnerID,
		ContentType:  attachment.ContentType,
		ObjectID:     attachment.ObjectID,
		AttachedFile: attachment.AttachedFile,
		Description:  attachment.Description,
		Order:        attachment.Order,
		IsDeprecated: attachment.IsDeprecated,
		CreatedAt:    attachment.CreatedAt.Format(time.RFC3339),
	}
}
