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

type UserStoryService interface {
	Create(projectID, ownerID int64, req *dto.CreateUserStoryRequest) (*dto.UserStoryResponse, error)
	GetByRef(projectID, ref int64) (*dto.UserStoryResponse, error)
	List(projectID int64, page, pageSize int) ([]*dto.UserStoryResponse, int64, error)
	// Update 乐观锁更新: 请求中的version必须等于当前行version, 否则返回过期写错误
	Update(projectID, id int64, req *dto.UpdateUserStoryRequest) (*dto.UserStoryResponse, error)
	Delete(projectID, id int64) error
}

type userStoryService struct {
	db            *gorm.DB
	userStoryRepo repository.UserStoryRepository
	taskRepo      repository.TaskRepository
	taxonomyRepo  repository.TaxonomyRepository
	projectRepo   repository.ProjectRepository
	milestoneRepo repository.MilestoneRepository
	referenceRepo repository.ReferenceRepository
	closure       *core.ClosureEvaluator
	bus           *core.Bus
}

func NewUserStoryService(
	db *gorm.DB,
	userStoryRepo repository.UserStoryRepository,
	taskRepo repository.TaskRepository,
	taxonomyRepo repository.TaxonomyRepository,
	projectRepo repository.ProjectRepository,
	milestoneRepo repository.MilestoneRepository,
	referenceRepo repository.ReferenceRepository,
	closure *core.ClosureEvaluator,
	bus *core.Bus,
) UserStoryService {
	return &userStoryService{
		db:            db,
		userStoryRepo: userStoryRepo,
		taskRepo:      taskRepo,
		taxonomyRepo:  taxonomyRepo,
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		referenceRepo: referenceRepo,
		closure:       closure,
		bus:           bus,
	}
}

func (s *userStoryService) Create(projectID, ownerID int64, req *dto.CreateUserStoryRequest) (*dto.UserStoryResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}

	statusID := req.StatusID
	if statusID == nil {
		statusID = project.DefaultUsStatusID
	}
	if statusID != nil {
		if err := checkCatalogRow(s.taxonomyRepo, constants.KindUserStoryStatus, *statusID, projectID); err != nil {
			return nil, err
		}
	}
	if err := s.checkMilestone(req.MilestoneID, projectID); err != nil {
		return nil, err
	}
	rolePoints, err := s.buildRolePoints(projectID, req.RolePoints)
	if err != nil {
		return nil, err
	}

	story := &model.UserStory{
		ProjectID:    projectID,
		Subject:      strings.TrimSpace(req.Subject),
		Description:  req.Description,
		OwnerID:      &ownerID,
		AssignedToID: req.AssignedTo,
		StatusID:     statusID,
		MilestoneID:  req.MilestoneID,
		Tags:         core.NormalizeTags(req.Tags),
		Version:      1,
		IsBlocked:    req.IsBlocked,
		BlockedNote:  req.BlockedNote,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := registerProjectTags(tx, s.projectRepo, project, story.Tags); err != nil {
			return err
		}

		ref, err := s.referenceRepo.Next(tx, projectID, constants.RefKindUserStory)
		if err != nil {
			return err
		}
		story.Ref = ref

		if err := s.userStoryRepo.Create(tx, story); err != nil {
			return err
		}
		if len(rolePoints) > 0 {
			for i := range rolePoints {
				rolePoints[i].UserStoryID = story.ID
			}
			if err := s.userStoryRepo.ReplaceRolePoints(tx, story.ID, rolePoints); err != nil {
				return err
			}
			if err := refreshTotalStoryPoints(tx, s.projectRepo, projectID); err != nil {
				return err
			}
		}
		return s.closure.Recompute(tx, story)
	})
	if err != nil {
		return nil, err
	}

	return s.loadResponse(story)
}

func (s *userStoryService) GetByRef(projectID, ref int64) (*dto.UserStoryResponse, error) {
	story, err := s.userStoryRepo.FindByRef(projectID, ref)
	if err != nil {
		return nil, err
	}
	return s.loadResponse(story)
}

func (s *userStoryService) List(projectID int64, page, pageSize int) ([]*dto.UserStoryResponse, int64, error) {
	stories, total, err := s.userStoryRepo.ListByProject(projectID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]*dto.UserStoryResponse, len(stories))
	for i, story := range stories {
		responses[i] = s.toResponse(story, nil)
	}
	return responses, total, nil
}

func (s *userStoryService) Update(projectID, id int64, req *dto.UpdateUserStoryRequest) (*dto.UserStoryResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	story, err := s.storyOfProject(id, projectID)
	if err != nil {
		return nil, err
	}
	if story.Version != req.Version {
		return nil, pkgErrors.ErrStaleWrite
	}

	statusChanged := false
	if req.StatusID != nil && (story.StatusID == nil || *story.StatusID != *req.StatusID) {
		if err := checkCatalogRow(s.taxonomyRepo, constants.KindUserStoryStatus, *req.StatusID, projectID); err != nil {
			return nil, err
		}
		story.StatusID = req.StatusID
		statusChanged = true
	}
	if req.MilestoneID != nil {
		if err := s.checkMilestone(req.MilestoneID, projectID); err != nil {
			return nil, err
		}
		story.MilestoneID = req.MilestoneID
	}

	if req.Subject != nil {
		story.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Description != nil {
		story.Description = *req.Description
	}
	if req.AssignedTo != nil {
		story.AssignedToID = req.AssignedTo
	}
	if req.IsBlocked != nil {
		story.IsBlocked = *req.IsBlocked
	}
	if req.BlockedNote != nil {
		story.BlockedNote = *req.BlockedNote
	}
	if req.BacklogOrder != nil {
		story.BacklogOrder = *req.BacklogOrder
	}

	tagsChanged := false
	if req.Tags != nil {
		story.Tags = core.NormalizeTags(*req.Tags)
		tagsChanged = true
	}

	var rolePoints []model.RolePoints
	if req.RolePoints != nil {
		rolePoints, err = s.buildRolePoints(projectID, req.RolePoints)
		if err != nil {
			return nil, err
		}
		for i := range rolePoints {
			rolePoints[i].UserStoryID = story.ID
		}
	}

	story.Version++

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userStoryRepo.Update(tx, story); err != nil {
			return err
		}
		if req.RolePoints != nil {
			if err := s.userStoryRepo.ReplaceRolePoints(tx, story.ID, rolePoints); err != nil {
				return err
			}
			if err := refreshTotalStoryPoints(tx, s.projectRepo, projectID); err != nil {
				return err
			}
		}
		if tagsChanged {
			if err := registerProjectTags(tx, s.projectRepo, project, story.Tags); err != nil {
				return err
			}
			if err := syncTagRegistry(tx, s.projectRepo, project); err != nil {
				return err
			}
		}
		if statusChanged {
			return s.closure.Recompute(tx, story)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadResponse(story)
}

func (s *userStoryService) Delete(projectID, id int64) error {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return err
	}
	story, err := s.storyOfProject(id, projectID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// 故事下的任务一并删除
		err := tx.Where("user_story_id = ?", story.ID).Delete(&model.Task{}).Error
		if err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除故事下任务失败", err)
		}
		if err := s.userStoryRepo.Delete(tx, story.ID); err != nil {
			return err
		}
		if err := refreshTotalStoryPoints(tx, s.projectRepo, projectID); err != nil {
			return err
		}
		return syncTagRegistry(tx, s.projectRepo, project)
	})
}

func (s *userStoryService) storyOfProject(id, projectID int64) (*model.UserStory, error) {
	story, err := s.userStoryRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if story.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return story, nil
}

func (s *userStoryService) checkMilestone(milestoneID *int64, projectID int64) error {
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

// buildRolePoints 校验 role/points 均属于该项目后构造估点记录
func (s *userStoryService) buildRolePoints(projectID int64, m map[int64]int64) ([]model.RolePoints, error) {
	if len(m) == 0 {
		return nil, nil
	}
	rolePoints := make([]model.RolePoints, 0, len(m))
	for roleID, pointsID := range m {
		role, err := s.taxonomyRepo.FindByID(constants.KindRole, roleID)
		if err != nil {
			return nil, err
		}
		if role.ProjectID != projectID {
			return nil, pkgErrors.ErrWrongProject
		}
		// 只有可计点角色有估点
		if !role.Computable {
			return nil, pkgErrors.NewValidation("role_points", "角色 "+role.Name+" 不参与估点")
		}
		if err := checkCatalogRow(s.taxonomyRepo, constants.KindPoints, pointsID, projectID); err != nil {
			return nil, err
		}
		rolePoints = append(rolePoints, model.RolePoints{RoleID: roleID, PointsID: pointsID})
	}
	return rolePoints, nil
}

func (s *userStoryService) loadResponse(story *model.UserStory) (*dto.UserStoryResponse, error) {
	rolePoints, err := s.userStoryRepo.ListRolePoints(story.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(story, rolePoints), nil
}

func (s *userStoryService) toResponse(story *model.UserStory, rolePoints []*model.RolePoints) *dto.UserStoryResponse {
	resp := &dto.UserStoryResponse{
		ID:                   story.ID,
		Ref:                  story.Ref,
		ProjectID:            story.ProjectID,
		Subject:              story.Subject,
		Description:          story.Description,
		OwnerID:              story.OwnerID,
		AssignedTo:           story.AssignedToID,
		StatusID:             story.StatusID,
		MilestoneID:          story.MilestoneID,
		Tags:                 story.Tags,
		Version:              story.Version,
		IsClosed:             story.IsClosed,
		IsBlocked:            story.IsBlocked,
		BlockedNote:          story.BlockedNote,
		BacklogOrder:         story.BacklogOrder,
		GeneratedFromIssueID: story.GeneratedFromIssueID,
		CreatedAt:            story.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            story.UpdatedAt.Format(time.RFC3339),
	}
	if len(rolePoints) > 0 {
		resp.RolePoints = make(map[int64]int64, len(rolePoints))
		var total float64
		counted := false
		for _, rp := range rolePoints {
			resp.RolePoints[rp.RoleID] = rp.PointsID
			if rp.Points != nil && rp.Points.Value != nil {
				total += *rp.Points.Value
				counted = true
			}
		}
		if counted {
			resp.TotalPoints = &total
		}
	}
	return resp
}
