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

type IssueService interface {
	Create(projectID, ownerID int64, req *dto.CreateIssueRequest) (*dto.IssueResponse, error)
	GetByRef(projectID, ref int64) (*dto.IssueResponse, error)
	List(projectID int64, page, pageSize int) ([]*dto.IssueResponse, int64, error)
	Update(projectID, id int64, req *dto.UpdateIssueRequest) (*dto.IssueResponse, error)
	Delete(projectID, id int64) error
	// Promote 把问题转化为用户故事: 新故事取故事编号序列的新编号,
	// 记录来源问题, 原问题保留不动。
	Promote(projectID, id, ownerID int64, req *dto.PromoteIssueRequest) (*dto.UserStoryResponse, error)
}

type issueService struct {
	db            *gorm.DB
	issueRepo     repository.IssueRepository
	userStoryRepo repository.UserStoryRepository
	taxonomyRepo  repository.TaxonomyRepository
	projectRepo   repository.ProjectRepository
	milestoneRepo repository.MilestoneRepository
	referenceRepo repository.ReferenceRepository
	closure       *core.ClosureEvaluator
	storyService  UserStoryService
}

func NewIssueService(
	db *gorm.DB,
	issueRepo repository.IssueRepository,
	userStoryRepo repository.UserStoryRepository,
	taxonomyRepo repository.TaxonomyRepository,
	projectRepo repository.ProjectRepository,
	milestoneRepo repository.MilestoneRepository,
	referenceRepo repository.ReferenceRepository,
	closure *core.ClosureEvaluator,
	storyService UserStoryService,
) IssueService {
	return &issueService{
		db:            db,
		issueRepo:     issueRepo,
		userStoryRepo: userStoryRepo,
		taxonomyRepo:  taxonomyRepo,
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		referenceRepo: referenceRepo,
		closure:       closure,
		storyService:  storyService,
	}
}

func (s *issueService) Create(projectID, ownerID int64, req *dto.CreateIssueRequest) (*dto.IssueResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}

	statusID := firstNonNil(req.StatusID, project.DefaultIssueStatusID)
	typeID := firstNonNil(req.TypeID, project.DefaultIssueTypeID)
	priorityID := firstNonNil(req.PriorityID, project.DefaultPriorityID)
	severityID := firstNonNil(req.SeverityID, project.DefaultSeverityID)

	status, err := s.rowOfProject(constants.KindIssueStatus, statusID, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.rowOfProject(constants.KindIssueType, typeID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.rowOfProject(constants.KindPriority, priorityID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.rowOfProject(constants.KindSeverity, severityID, projectID); err != nil {
		return nil, err
	}
	if err := s.checkMilestone(req.MilestoneID, projectID); err != nil {
		return nil, err
	}

	issue := &model.Issue{
		ProjectID:    projectID,
		Subject:      strings.TrimSpace(req.Subject),
		Description:  req.Description,
		OwnerID:      &ownerID,
		AssignedToID: req.AssignedTo,
		StatusID:     statusID,
		TypeID:       typeID,
		PriorityID:   priorityID,
		SeverityID:   severityID,
		MilestoneID:  req.MilestoneID,
		Tags:         core.NormalizeTags(req.Tags),
		Version:      1,
	}
	if status != nil {
		issue.IsClosed = status.IsClosed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := registerProjectTags(tx, s.projectRepo, project, issue.Tags); err != nil {
			return err
		}

		ref, err := s.referenceRepo.Next(tx, projectID, constants.RefKindIssue)
		if err != nil {
			return err
		}
		issue.Ref = ref

		return s.issueRepo.Create(tx, issue)
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(issue), nil
}

func (s *issueService) GetByRef(projectID, ref int64) (*dto.IssueResponse, error) {
	issue, err := s.issueRepo.FindByRef(projectID, ref)
	if err != nil {
		return nil, err
	}
	return s.toResponse(issue), nil
}

func (s *issueService) List(projectID int64, page, pageSize int) ([]*dto.IssueResponse, int64, error) {
	issues, total, err := s.issueRepo.ListByProject(projectID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]*dto.IssueResponse, len(issues))
	for i, issue := range issues {
		responses[i] = s.toResponse(issue)
	}
	return responses, total, nil
}

func (s *issueService) Update(projectID, id int64, req *dto.UpdateIssueRequest) (*dto.IssueResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	issue, err := s.issueOfProject(id, projectID)
	if err != nil {
		return nil, err
	}
	if issue.Version != req.Version {
		return nil, pkgErrors.ErrStaleWrite
	}

	if req.StatusID != nil && (issue.StatusID == nil || *issue.StatusID != *req.StatusID) {
		status, err := s.rowOfProject(constants.KindIssueStatus, req.StatusID, projectID)
		if err != nil {
			return nil, err
		}
		issue.StatusID = req.StatusID
		issue.IsClosed = status.IsClosed
	}
	if req.TypeID != nil {
		if _, err := s.rowOfProject(constants.KindIssueType, req.TypeID, projectID); err != nil {
			return nil, err
		}
		issue.TypeID = req.TypeID
	}
	if req.PriorityID != nil {
		if _, err := s.rowOfProject(constants.KindPriority, req.PriorityID, projectID); err != nil {
			return nil, err
		}
		issue.PriorityID = req.PriorityID
	}
	if req.SeverityID != nil {
		if _, err := s.rowOfProject(constants.KindSeverity, req.SeverityID, projectID); err != nil {
			return nil, err
		}
		issue.SeverityID = req.SeverityID
	}
	if req.MilestoneID != nil {
		if err := s.checkMilestone(req.MilestoneID, projectID); err != nil {
			return nil, err
		}
		issue.MilestoneID = req.MilestoneID
	}

	if req.Subject != nil {
		issue.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.AssignedTo != nil {
		issue.AssignedToID = req.AssignedTo
	}

	tagsChanged := false
	if req.Tags != nil {
		issue.Tags = core.NormalizeTags(*req.Tags)
		tagsChanged = true
	}

	issue.Version++

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.issueRepo.Update(tx, issue); err != nil {
			return err
		}
		if tagsChanged {
			if err := registerProjectTags(tx, s.projectRepo, project, issue.Tags); err != nil {
				return err
			}
			return syncTagRegistry(tx, s.projectRepo, project)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(issue), nil
}

func (s *issueService) Delete(projectID, id int64) error {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return err
	}
	issue, err := s.issueOfProject(id, projectID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.issueRepo.Delete(tx, issue.ID); err != nil {
			return err
		}
		return syncTagRegistry(tx, s.projectRepo, project)
	})
}

func (s *issueService) Promote(projectID, id, ownerID int64, req *dto.PromoteIssueRequest) (*dto.UserStoryResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	issue, err := s.issueOfProject(id, projectID)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = issue.Subject
	}

	story := &model.UserStory{
		ProjectID:            projectID,
		Subject:              subject,
		Description:          issue.Description,
		OwnerID:              &ownerID,
		AssignedToID:         issue.AssignedToID,
		StatusID:             project.DefaultUsStatusID,
		MilestoneID:          issue.MilestoneID,
		Tags:                 issue.Tags,
		Version:              1,
		GeneratedFromIssueID: &issue.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ref, err := s.referenceRepo.Next(tx, projectID, constants.RefKindUserStory)
		if err != nil {
			return err
		}
		story.Ref = ref

		if err := s.userStoryRepo.Create(tx, story); err != nil {
			return err
		}
		return s.closure.Recompute(tx, story)
	})
	if err != nil {
		return nil, err
	}

	return s.storyService.GetByRef(projectID, story.Ref)
}

func (s *issueService) issueOfProject(id, projectID int64) (*model.Issue, error) {
	issue, err := s.issueRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if issue.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return issue, nil
}

func (s *issueService) rowOfProject(kind string, id *int64, projectID int64) (*model.CatalogRow, error) {
	if id == nil {
		return nil, nil
	}
	row, err := s.taxonomyRepo.FindByID(kind, *id)
	if err != nil {
		return nil, err
	}
	if row.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return row, nil
}

func (s *issueService) checkMilestone(milestoneID *int64, projectID int64) error {
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

func firstNonNil(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func (s *issueService) toResponse(issue *model.Issue) *dto.IssueResponse {
	return &dto.IssueResponse{
		ID:          issue.ID,
		Ref:         issue.Ref,
		ProjectID:   issue.ProjectID,
		Subject:     issue.Subject,
		Description: issue.Description,
		OwnerID:     issue.OwnerID,
		AssignedTo:  issue.AssignedToID,
		StatusID:    issue.StatusID,
		TypeID:      issue.TypeID,
		PriorityID:  issue.PriorityID,
		SeverityID:  issue.SeverityID,
		MilestoneID: issue.MilestoneID,
		Tags:        issue.Tags,
		Version:     issue.Version,
		IsClosed:    issue.IsClosed,
		CreatedAt:   issue.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   issue.UpdatedAt.Format(time.RFC3339),
	}
}
