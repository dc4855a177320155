package service

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/repository"
	pkgErrors "agile-pm/pkg/errors"
	"agile-pm/pkg/utils"
)

type MilestoneService interface {
	Create(projectID, ownerID int64, req *dto.CreateMilestoneRequest) (*dto.MilestoneResponse, error)
	Get(projectID, id int64) (*dto.MilestoneResponse, error)
	List(projectID int64) ([]*dto.MilestoneResponse, error)
	Update(projectID, id int64, req *dto.UpdateMilestoneRequest) (*dto.MilestoneResponse, error)
	Delete(projectID, id int64) error
}

type milestoneService struct {
	db            *gorm.DB
	milestoneRepo repository.MilestoneRepository
	projectRepo   repository.ProjectRepository
}

func NewMilestoneService(
	db *gorm.DB,
	milestoneRepo repository.MilestoneRepository,
	projectRepo repository.ProjectRepository,
) MilestoneService {
	return &milestoneService{
		db:            db,
		milestoneRepo: milestoneRepo,
		projectRepo:   projectRepo,
	}
}

func (s *milestoneService) Create(projectID, ownerID int64, req *dto.CreateMilestoneRequest) (*dto.MilestoneResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgErrors.NewValidation("name", "名称不能为空")
	}
	exists, err := s.milestoneRepo.ExistsName(projectID, name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgErrors.ErrNameConflict
	}

	slug, err := s.uniqueSlug(projectID, name)
	if err != nil {
		return nil, err
	}

	milestone := &model.Milestone{
		ProjectID:       projectID,
		Name:            name,
		Slug:            slug,
		OwnerID:         &ownerID,
		EstimatedStart:  req.EstimatedStart,
		EstimatedFinish: req.EstimatedFinish,
	}
	if req.Order != 0 {
		milestone.Order = req.Order
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.milestoneRepo.Create(tx, milestone); err != nil {
			return err
		}
		// 项目里程碑计数缓存
		return s.projectRepo.UpdateColumns(tx, projectID, map[string]interface{}{
			"total_milestones": project.TotalMilestones + 1,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(milestone), nil
}

func (s *milestoneService) Get(projectID, id int64) (*dto.MilestoneResponse, error) {
	milestone, err := s.milestoneOfProject(id, projectID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(milestone), nil
}

func (s *milestoneService) List(projectID int64) ([]*dto.MilestoneResponse, error) {
	milestones, err := s.milestoneRepo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.MilestoneResponse, len(milestones))
	for i, milestone := range milestones {
		responses[i] = s.toResponse(milestone)
	}
	return responses, nil
}

func (s *milestoneService) Update(projectID, id int64, req *dto.UpdateMilestoneRequest) (*dto.MilestoneResponse, error) {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return nil, err
	}
	milestone, err := s.milestoneOfProject(id, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgErrors.NewValidation("name", "名称不能为空")
		}
		if name != milestone.Name {
			exists, err := s.milestoneRepo.ExistsName(projectID, name, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, pkgErrors.ErrNameConflict
			}
			milestone.Name = name
		}
	}
	if req.EstimatedStart != nil {
		milestone.EstimatedStart = req.EstimatedStart
	}
	if req.EstimatedFinish != nil {
		milestone.EstimatedFinish = req.EstimatedFinish
	}
	if req.Closed != nil {
		milestone.Closed = *req.Closed
	}
	if req.Order != nil {
		milestone.Order = *req.Order
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.milestoneRepo.Update(tx, milestone)
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(milestone), nil
}

func (s *milestoneService) Delete(projectID, id int64) error {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return err
	}
	milestone, err := s.milestoneOfProject(id, projectID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// 挂在该里程碑上的条目摘回待办
		for _, m := range []interface{}{&model.UserStory{}, &model.Task{}, &model.Issue{}} {
			err := tx.Model(m).Where("milestone_id = ?", milestone.ID).
				Update("milestone_id", nil).Error
			if err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "解除里程碑关联失败", err)
			}
		}
		if err := s.milestoneRepo.Delete(tx, milestone.ID); err != nil {
			return err
		}
		total := project.TotalMilestones - 1
		if total < 0 {
			total = 0
		}
		return s.projectRepo.UpdateColumns(tx, projectID, map[string]interface{}{
			"total_milestones": total,
		})
	})
}

func (s *milestoneService) milestoneOfProject(id, projectID int64) (*model.Milestone, error) {
	milestone, err := s.milestoneRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if milestone.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return milestone, nil
}

// uniqueSlug 项目内slug唯一, 冲突时追加序号
func (s *milestoneService) uniqueSlug(projectID int64, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "milestone"
	}
	slug := base
	for i := 1; ; i++ {
		_, err := s.milestoneRepo.FindBySlug(projectID, slug)
		if err != nil {
			if pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
				return slug, nil
			}
			return "", err
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *milestoneService) toResponse(milestone *model.Milestone) *dto.MilestoneResponse {
	return &dto.MilestoneResponse{
		ID:              milestone.ID,
		ProjectID:       milestone.ProjectID,
		Name:            milestone.Name,
		Slug:            milestone.Slug,
		EstimatedStart:  milestone.EstimatedStart,
		EstimatedFinish: milestone.EstimatedFinish,
		Closed:          milestone.Closed,
		Order:           milestone.Order,
		CreatedAt:       milestone.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       milestone.UpdatedAt.Format(time.RFC3339),
	}
}
