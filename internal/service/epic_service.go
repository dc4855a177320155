package service

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"agile-pm/internal/core"
	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/repository"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

type EpicService interface {
	Create(projectID, ownerID int64, req *dto.CreateEpicRequest) (*dto.EpicResponse, error)
	GetByRef(projectID, ref int64) (*dto.EpicResponse, error)
	List(projectID int64, page, pageSize int) ([]*dto.EpicResponse, int64, error)
	Update(projectID, id int64, req *dto.UpdateEpicRequest) (*dto.EpicResponse, error)
	Delete(projectID, id int64) error

	// LinkUserStory 把用户故事挂到史诗末尾, 重复关联返回冲突
	LinkUserStory(projectID, epicID int64, req *dto.LinkUserStoryRequest) error
	UnlinkUserStory(projectID, epicID, userStoryID int64) error
	ListUserStories(projectID, epicID int64) ([]*dto.UserStoryResponse, error)
}

type epicService struct {
	db            *gorm.DB
	epicRepo      repository.EpicRepository
	userStoryRepo repository.UserStoryRepository
	taxonomyRepo  repository.TaxonomyRepository
	projectRepo   repository.ProjectRepository
	referenceRepo repository.ReferenceRepository
	storyService  UserStoryService
}

func NewEpicService(
	db *gorm.DB,
	epicRepo repository.EpicRepository,
	userStoryRepo repository.UserStoryRepository,
	taxonomyRepo repository.TaxonomyRepository,
	projectRepo repository.ProjectRepository,
	referenceRepo repository.ReferenceRepository,
	storyService UserStoryService,
) EpicService {
	return &epicService{
		db:            db,
		epicRepo:      epicRepo,
		userStoryRepo: userStoryRepo,
		taxonomyRepo:  taxonomyRepo,
		projectRepo:   projectRepo,
		referenceRepo: referenceRepo,
		storyService:  storyService,
	}
}

func (s *epicService) Create(projectID, ownerID int64, req *dto.CreateEpicRequest) (*dto.EpicResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}

	// 史诗复用故事状态集
	statusID := req.StatusID
	if statusID == nil {
		statusID = project.DefaultUsStatusID
	}
	status, err := s.statusOfProject(statusID, projectID)
	if err != nil {
		return nil, err
	}

	epic := &model.Epic{
		ProjectID:    projectID,
		Subject:      strings.TrimSpace(req.Subject),
		Description:  req.Description,
		OwnerID:      &ownerID,
		AssignedToID: req.AssignedTo,
		StatusID:     statusID,
		Tags:         core.NormalizeTags(req.Tags),
		Version:      1,
	}
	if req.Color != "" {
		epic.Color = req.Color
	}
	if status != nil {
		epic.IsClosed = status.IsClosed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := registerProjectTags(tx, s.projectRepo, project, epic.Tags); err != nil {
			return err
		}

		ref, err := s.referenceRepo.Next(tx, projectID, constants.RefKindEpic)
		if err != nil {
			return err
		}
		epic.Ref = ref

		return s.epicRepo.Create(tx, epic)
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(epic), nil
}

func (s *epicService) GetByRef(projectID, ref int64) (*dto.EpicResponse, error) {
	epic, err := s.epicRepo.FindByRef(projectID, ref)
	if err != nil {
		return nil, err
	}
	return s.toResponse(epic), nil
}

func (s *epicService) List(projectID int64, page, pageSize int) ([]*dto.EpicResponse, int64, error) {
	epics, total, err := s.epicRepo.ListByProject(projectID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]*dto.EpicResponse, len(epics))
	for i, epic := range epics {
		responses[i] = s.toResponse(epic)
	}
	return responses, total, nil
}

func (s *epicService) Update(projectID, id int64, req *dto.UpdateEpicRequest) (*dto.EpicResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	epic, err := s.epicOfProject(id, projectID)
	if err != nil {
		return nil, err
	}
	if epic.Version != req.Version {
		return nil, pkgErrors.ErrStaleWrite
	}

	if req.StatusID != nil && (epic.StatusID == nil || *epic.StatusID != *req.StatusID) {
		status, err := s.statusOfProject(req.StatusID, projectID)
		if err != nil {
			return nil, err
		}
		epic.StatusID = req.StatusID
		epic.IsClosed = status.IsClosed
	}

	if req.Subject != nil {
		epic.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Description != nil {
		epic.Description = *req.Description
	}
	if req.AssignedTo != nil {
		epic.AssignedToID = req.AssignedTo
	}
	if req.Color != nil {
		epic.Color = *req.Color
	}
	if req.EpicOrder != nil {
		epic.EpicOrder = *req.EpicOrder
	}

	tagsChanged := false
	if req.Tags != nil {
		epic.Tags = core.NormalizeTags(*req.Tags)
		tagsChanged = true
	}

	epic.Version++

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.epicRepo.Update(tx, epic); err != nil {
			return err
		}
		if tagsChanged {
			if err := registerProjectTags(tx, s.projectRepo, project, epic.Tags); err != nil {
				return err
			}
			return syncTagRegistry(tx, s.projectRepo, project)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(epic), nil
}

func (s *epicService) Delete(projectID, id int64) error {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return err
	}
	epic, err := s.epicOfProject(id, projectID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.epicRepo.Delete(tx, epic.ID); err != nil {
			return err
		}
		return syncTagRegistry(tx, s.projectRepo, project)
	})
}

func (s *epicService) LinkUserStory(projectID, epicID int64, req *dto.LinkUserStoryRequest) error {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return err
	}
	epic, err := s.epicOfProject(epicID, projectID)
	if err != nil {
		return err
	}
	story, err := s.userStoryRepo.FindByID(req.UserStoryID)
	if err != nil {
		return err
	}
	if story.ProjectID != projectID {
		return pkgErrors.ErrWrongProject
	}

	if _, err := s.epicRepo.FindLink(epic.ID, story.ID); err == nil {
		return pkgErrors.New(pkgErrors.CodeConflict, "故事已关联到该史诗")
	} else if !pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
		return err
	}

	maxOrder, err := s.epicRepo.MaxLinkOrder(epic.ID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.epicRepo.CreateLink(tx, &model.EpicUserStory{
			EpicID:      epic.ID,
			UserStoryID: story.ID,
			Order:       maxOrder + 1,
		})
	})
}

func (s *epicService) UnlinkUserStory(projectID, epicID, userStoryID int64) error {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return err
	}
	epic, err := s.epicOfProject(epicID, projectID)
	if err != nil {
		return err
	}
	if _, err := s.epicRepo.FindLink(epic.ID, userStoryID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.epicRepo.DeleteLink(tx, epic.ID, userStoryID)
	})
}

func (s *epicService) ListUserStories(projectID, epicID int64) ([]*dto.UserStoryResponse, error) {
	epic, err := s.epicOfProject(epicID, projectID)
	if err != nil {
		return nil, err
	}
	links, err := s.epicRepo.ListLinks(epic.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.UserStoryResponse, 0, len(links))
	for _, link := range links {
		story, err := s.userStoryRepo.FindByID(link.UserStoryID)
		if err != nil {
			return nil, err
		}
		resp, err := s.storyService.GetByRef(projectID, story.Ref)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *epicService) epicOfProject(id, projectID int64) (*model.Epic, error) {
	epic, err := s.epicRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if epic.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return epic, nil
}

func (s *epicService) statusOfProject(statusID *int64, projectID int64) (*model.CatalogRow, error) {
	if statusID == nil {
		return nil, nil
	}
	row, err := s.taxonomyRepo.FindByID(constants.KindUserStoryStatus, *statusID)
	if err != nil {
		return nil, err
	}
	if row.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return row, nil
}

func (s *epicService) toResponse(epic *model.Epic) *dto.EpicResponse {
	return &dto.EpicResponse{
		ID:          epic.ID,
		Ref:         epic.Ref,
		ProjectID:   epic.ProjectID,
		Subject:     epic.Subject,
		Description: epic.Description,
		OwnerID:     epic.OwnerID,
		AssignedTo:  epic.AssignedToID,
		StatusID:    epic.StatusID,
		Color:       epic.Color,
		Tags:        epic.Tags,
		Version:     epic.Version,
		IsClosed:    epic.IsClosed,
		EpicOrder:   epic.EpicOrder,
		CreatedAt:   epic.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   epic.UpdatedAt.Format(time.RFC3339),
	}
}
