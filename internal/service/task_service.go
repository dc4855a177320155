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

type TaskService interface {
	Create(projectID, ownerID int64, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	GetByRef(projectID, ref int64) (*dto.TaskResponse, error)
	List(projectID int64, page, pageSize int) ([]*dto.TaskResponse, int64, error)
	Update(projectID, id int64, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(projectID, id int64) error
}

type taskService struct {
	db            *gorm.DB
	taskRepo      repository.TaskRepository
	userStoryRepo repository.UserStoryRepository
	taxonomyRepo  repository.TaxonomyRepository
	projectRepo   repository.ProjectRepository
	milestoneRepo repository.MilestoneRepository
	referenceRepo repository.ReferenceRepository
	closure       *core.ClosureEvaluator
}

func NewTaskService(
	db *gorm.DB,
	taskRepo repository.TaskRepository,
	userStoryRepo repository.UserStoryRepository,
	taxonomyRepo repository.TaxonomyRepository,
	projectRepo repository.ProjectRepository,
	milestoneRepo repository.MilestoneRepository,
	referenceRepo repository.ReferenceRepository,
	closure *core.ClosureEvaluator,
) TaskService {
	return &taskService{
		db:            db,
		taskRepo:      taskRepo,
		userStoryRepo: userStoryRepo,
		taxonomyRepo:  taxonomyRepo,
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		referenceRepo: referenceRepo,
		closure:       closure,
	}
}

func (s *taskService) Create(projectID, ownerID int64, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}

	statusID := req.StatusID
	if statusID == nil {
		statusID = project.DefaultTaskStatusID
	}
	status, err := s.statusOfProject(statusID, projectID)
	if err != nil {
		return nil, err
	}
	if req.UserStoryID != nil {
		if _, err := s.storyOfProject(*req.UserStoryID, projectID); err != nil {
			return nil, err
		}
	}
	if err := s.checkMilestone(req.MilestoneID, projectID); err != nil {
		return nil, err
	}

	task := &model.Task{
		ProjectID:    projectID,
		Subject:      strings.TrimSpace(req.Subject),
		Description:  req.Description,
		OwnerID:      &ownerID,
		AssignedToID: req.AssignedTo,
		StatusID:     statusID,
		MilestoneID:  req.MilestoneID,
		UserStoryID:  req.UserStoryID,
		Tags:         core.NormalizeTags(req.Tags),
		Version:      1,
		IsIocaine:    req.IsIocaine,
	}
	if status != nil {
		task.IsClosed = status.IsClosed // 闭合镜像随状态
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := registerProjectTags(tx, s.projectRepo, project, task.Tags); err != nil {
			return err
		}

		ref, err := s.referenceRepo.Next(tx, projectID, constants.RefKindTask)
		if err != nil {
			return err
		}
		task.Ref = ref

		if err := s.taskRepo.Create(tx, task); err != nil {
			return err
		}
		return s.recomputeParent(tx, task.UserStoryID)
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(task), nil
}

func (s *taskService) GetByRef(projectID, ref int64) (*dto.TaskResponse, error) {
	task, err := s.taskRepo.FindByRef(projectID, ref)
	if err != nil {
		return nil, err
	}
	return s.toResponse(task), nil
}

func (s *taskService) List(projectID int64, page, pageSize int) ([]*dto.TaskResponse, int64, error) {
	tasks, total, err := s.taskRepo.ListByProject(projectID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]*dto.TaskResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = s.toResponse(task)
	}
	return responses, total, nil
}

func (s *taskService) Update(projectID, id int64, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	task, err := s.taskOfProject(id, projectID)
	if err != nil {
		return nil, err
	}
	if task.Version != req.Version {
		return nil, pkgErrors.ErrStaleWrite
	}

	oldParent := task.UserStoryID
	closureDirty := false

	if req.StatusID != nil && (task.StatusID == nil || *task.StatusID != *req.StatusID) {
		status, err := s.statusOfProject(req.StatusID, projectID)
		if err != nil {
			return nil, err
		}
		task.StatusID = req.StatusID
		task.IsClosed = status.IsClosed
		closureDirty = true
	}
	if req.UserStoryID != nil {
		if *req.UserStoryID != 0 {
			if _, err := s.storyOfProject(*req.UserStoryID, projectID); err != nil {
				return nil, err
			}
			task.UserStoryID = req.UserStoryID
		} else {
			task.UserStoryID = nil // 0 表示从故事上摘下
		}
		closureDirty = true
	}
	if req.MilestoneID != nil {
		if err := s.checkMilestone(req.MilestoneID, projectID); err != nil {
			return nil, err
		}
		task.MilestoneID = req.MilestoneID
	}

	if req.Subject != nil {
		task.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AssignedTo != nil {
		task.AssignedToID = req.AssignedTo
	}
	if req.IsIocaine != nil {
		task.IsIocaine = *req.IsIocaine
	}
	if req.TaskOrder != nil {
		task.TaskOrder = *req.TaskOrder
	}

	tagsChanged := false
	if req.Tags != nil {
		task.Tags = core.NormalizeTags(*req.Tags)
		tagsChanged = true
	}

	task.Version++

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.Update(tx, task); err != nil {
			return err
		}
		if closureDirty {
			if err := s.recomputeParent(tx, oldParent); err != nil {
				return err
			}
			if task.UserStoryID != nil && (oldParent == nil || *oldParent != *task.UserStoryID) {
				if err := s.recomputeParent(tx, task.UserStoryID); err != nil {
					return err
				}
			}
		}
		if tagsChanged {
			if err := registerProjectTags(tx, s.projectRepo, project, task.Tags); err != nil {
				return err
			}
			return syncTagRegistry(tx, s.projectRepo, project)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(task), nil
}

func (s *taskService) Delete(projectID, id int64) error {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return err
	}
	task, err := s.taskOfProject(id, projectID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.Delete(tx, task.ID); err != nil {
			return err
		}
		// 开任务没了, 父故事可能因此闭合
		if err := s.recomputeParent(tx, task.UserStoryID); err != nil {
			return err
		}
		return syncTagRegistry(tx, s.projectRepo, project)
	})
}

func (s *taskService) recomputeParent(tx *gorm.DB, userStoryID *int64) error {
	if userStoryID == nil {
		return nil
	}
	story, err := s.userStoryRepo.FindByIDTx(tx, *userStoryID)
	if err != nil {
		return err
	}
	return s.closure.Recompute(tx, story)
}

func (s *taskService) taskOfProject(id, projectID int64) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if task.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return task, nil
}

func (s *taskService) storyOfProject(id, projectID int64) (*model.UserStory, error) {
	story, err := s.userStoryRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if story.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return story, nil
}

func (s *taskService) statusOfProject(statusID *int64, projectID int64) (*model.CatalogRow, error) {
	if statusID == nil {
		return nil, nil
	}
	row, err := s.taxonomyRepo.FindByID(constants.KindTaskStatus, *statusID)
	if err != nil {
		return nil, err
	}
	if row.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return row, nil
}

func (s *taskService) checkMilestone(milestoneID *int64, projectID int64) error {
	if milestoneID == nil {
		return nil
	}
	milestone, err := s.milestoneRepo.FindByID(*milestoneID)
	if err != nil {
		return err
	}
	if milestone.ProjectID != projectID {
		return pkgErrors.ErrWrongProject
	}
	return nil
}

func (s *taskService) toResponse(task *model.Task) *dto.TaskResponse {
	return &dto.TaskResponse{
		ID:          task.ID,
		Ref:         task.Ref,
		ProjectID:   task.ProjectID,
		Subject:     task.Subject,
		Description: task.Description,
		OwnerID:     task.OwnerID,
		AssignedTo:  task.AssignedToID,
		StatusID:    task.StatusID,
		MilestoneID: task.MilestoneID,
		UserStoryID: task.UserStoryID,
		Tags:        task.Tags,
		Version:     task.Version,
		IsClosed:    task.IsClosed,
		IsIocaine:   task.IsIocaine,
		TaskOrder:   task.TaskOrder,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
}
