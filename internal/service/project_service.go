package service

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"agile-pm/internal/core"
	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/pkg/config"
	"agile-pm/internal/repository"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
	"agile-pm/pkg/utils"
)

type ProjectService interface {
	Create(ownerID int64, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	GetByID(id int64) (*dto.ProjectResponse, error)
	GetBySlug(slug string) (*dto.ProjectResponse, error)
	List(query *dto.ProjectListQuery) ([]*dto.ProjectResponse, int64, error)
	Update(id int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	// Delete 两阶段删除的第一阶段: 项目被孤立并标记, 级联清理由后台引擎完成
	Delete(id int64) error
	Duplicate(id, newOwnerID int64, req *dto.DuplicateProjectRequest) (*dto.ProjectResponse, error)
	SetTagColor(id int64, req *dto.SetTagColorRequest) (*dto.ProjectResponse, error)
}

type projectService struct {
	db              *gorm.DB
	projectRepo     repository.ProjectRepository
	membershipRepo  repository.MembershipRepository
	taxonomyRepo    repository.TaxonomyRepository
	templateService TemplateService
	quotaService    QuotaService
	bus             *core.Bus
}

func NewProjectService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	membershipRepo repository.MembershipRepository,
	taxonomyRepo repository.TaxonomyRepository,
	templateService TemplateService,
	quotaService QuotaService,
	bus *core.Bus,
) ProjectService {
	return &projectService{
		db:              db,
		projectRepo:     projectRepo,
		membershipRepo:  membershipRepo,
		taxonomyRepo:    taxonomyRepo,
		templateService: templateService,
		quotaService:    quotaService,
		bus:             bus,
	}
}

func (s *projectService) Create(ownerID int64, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	isPrivate := req.IsPrivate != nil && *req.IsPrivate

	result, err := s.quotaService.CheckCreate(ownerID, isPrivate)
	if err != nil {
		return nil, err
	}
	if err := s.quotaService.Enforce(result); err != nil {
		return nil, err
	}

	if existing, _ := s.projectRepo.FindByName(req.Name); existing != nil {
		return nil, pkgErrors.ErrNameConflict
	}

	templateSlug := req.TemplateSlug
	if templateSlug == "" {
		templateSlug = config.GlobalConfig.Projects.DefaultTemplateSlug
	}
	template, def, err := s.templateService.Resolve(templateSlug)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:                  req.Name,
		Slug:                  s.uniqueSlug(req.Name),
		OwnerID:               &ownerID,
		IsPrivate:             isPrivate,
		CreatedFromTemplateID: &template.ID,
		Tags:                  core.NormalizeTags(req.Tags),
	}
	if req.Description != "" {
		project.Description = &req.Description
	}
	core.RegisterTags(project, project.Tags)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.projectRepo.Create(tx, project); err != nil {
			return err
		}
		if err := s.templateService.ApplyToProject(tx, def, project); err != nil {
			return err
		}
		if err := s.bootstrapOwner(tx, project, ownerID, template.DefaultOwnerRole); err != nil {
			return err
		}
		return s.bus.PublishSync(tx, core.ProjectPostSaveEvent{Project: project, Created: true})
	})
	if err != nil {
		return nil, err
	}

	s.bus.PublishAsync(core.ProjectPostSaveEvent{Project: project, Created: true})

	// 事务内写过默认指针, 重新读取完整状态
	fresh, err := s.projectRepo.FindByID(project.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(fresh), nil
}

// bootstrapOwner 把所有者注册为管理员成员, 角色取模板声明的owner角色slug
func (s *projectService) bootstrapOwner(tx *gorm.DB, project *model.Project, ownerID int64, ownerRoleSlug string) error {
	roleID, err := s.findRoleBySlug(tx, project.ID, ownerRoleSlug)
	if err != nil {
		return err
	}

	membership := &model.Membership{
		ProjectID: project.ID,
		UserID:    &ownerID,
		RoleID:    roleID,
		IsAdmin:   true,
	}
	if err := s.membershipRepo.Create(tx, membership); err != nil {
		return err
	}
	return s.bus.PublishSync(tx, core.MembershipPostSaveEvent{Membership: membership, Created: true})
}

// findRoleBySlug 在项目角色中按slug定位, slug为空或未命中时退回第一行
func (s *projectService) findRoleBySlug(tx *gorm.DB, projectID int64, slug string) (int64, error) {
	var roles []model.Role
	if err := tx.Where("project_id = ?", projectID).Order("`order` ASC, id ASC").Find(&roles).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目角色失败", err)
	}
	if len(roles) == 0 {
		return 0, pkgErrors.New(pkgErrors.CodeValidationError, "项目没有可用角色")
	}
	for _, role := range roles {
		if role.Slug == slug {
			return role.ID, nil
		}
	}
	return roles[0].ID, nil
}

func (s *projectService) GetByID(id int64) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(project), nil
}

func (s *projectService) GetBySlug(slug string) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.toResponse(project), nil
}

func (s *projectService) List(query *dto.ProjectListQuery) ([]*dto.ProjectResponse, int64, error) {
	projects, total, err := s.projectRepo.List(query.GetPage(), query.GetPageSize(), query.Keyword)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*dto.ProjectResponse, len(projects))
	for i, project := range projects {
		responses[i] = s.toResponse(project)
	}
	return responses, total, nil
}

func (s *projectService) Update(id int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if project.IsBlocked() {
		return nil, pkgErrors.ErrBlocked
	}

	if req.Name != nil && *req.Name != project.Name {
		if existing, _ := s.projectRepo.FindByName(*req.Name); existing != nil {
			return nil, pkgErrors.ErrNameConflict
		}
		project.Name = *req.Name
	}

	// 私密性翻转先过配额
	if req.IsPrivate != nil && *req.IsPrivate != project.IsPrivate {
		result, err := s.quotaService.CheckPrivacyFlip(project)
		if err != nil {
			return nil, err
		}
		if err := s.quotaService.Enforce(result); err != nil {
			return nil, err
		}
		project.IsPrivate = *req.IsPrivate
	}

	// 所有权转移: 新所有者必须已是成员, 且不超其配额
	if req.OwnerID != nil && (project.OwnerID == nil || *req.OwnerID != *project.OwnerID) {
		membership, err := s.membershipRepo.FindByProjectAndUser(id, *req.OwnerID)
		if err != nil || !membership.IsConfirmed() {
			return nil, pkgErrors.New(pkgErrors.CodeValidationError, "新所有者必须是项目成员")
		}

		result, err := s.quotaService.CheckTransfer(project, *req.OwnerID)
		if err != nil {
			return nil, err
		}
		if err := s.quotaService.Enforce(result); err != nil {
			return nil, err
		}
		project.OwnerID = req.OwnerID
	}

	if req.Description != nil {
		project.Description = req.Description
	}
	if req.Tags != nil {
		project.Tags = core.NormalizeTags(*req.Tags)
		core.RegisterTags(project, project.Tags)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.projectRepo.Update(tx, project); err != nil {
			return err
		}
		if req.Tags != nil {
			if err := s.rebuildTagRegistry(tx, project); err != nil {
				return err
			}
		}
		return s.bus.PublishSync(tx, core.ProjectPostSaveEvent{Project: project, Created: false})
	})
	if err != nil {
		return nil, err
	}

	s.bus.PublishAsync(core.ProjectPostSaveEvent{Project: project, Created: false})
	return s.toResponse(project), nil
}

func (s *projectService) rebuildTagRegistry(tx *gorm.DB, project *model.Project) error {
	used, err := s.projectRepo.CollectUsedTags(tx, project.ID)
	if err != nil {
		return err
	}
	if core.RebuildTagRegistry(project, used) {
		return s.projectRepo.UpdateColumns(tx, project.ID, map[string]interface{}{
			"tags_colors": project.TagsColors,
		})
	}
	return nil
}

func (s *projectService) Delete(id int64) error {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return err
	}
	if project.BlockedCode == constants.BlockedByDeleting {
		return nil // 已在删除队列中
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.projectRepo.UpdateColumns(tx, id, map[string]interface{}{
			"blocked_code": constants.BlockedByDeleting,
			"owner_id":     nil,
		})
	})
}

func (s *projectService) Duplicate(id, newOwnerID int64, req *dto.DuplicateProjectRequest) (*dto.ProjectResponse, error) {
	source, err := s.projectRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if source.IsBlocked() {
		return nil, pkgErrors.ErrBlocked
	}

	isPrivate := source.IsPrivate
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}

	// 请求带入的成员 ∪ 新所有者本人, 配额侧按用户去重
	result, err := s.quotaService.CheckDuplicate(newOwnerID, isPrivate, req.Users)
	if err != nil {
		return nil, err
	}
	if err := s.quotaService.Enforce(result); err != nil {
		return nil, err
	}

	if existing, _ := s.projectRepo.FindByName(req.Name); existing != nil {
		return nil, pkgErrors.ErrNameConflict
	}

	def, err := s.templateService.LoadFromProject(id)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:      req.Name,
		Slug:      s.uniqueSlug(req.Name),
		OwnerID:   &newOwnerID,
		IsPrivate: isPrivate,
		Tags:      source.Tags,
	}
	if req.Description != "" {
		project.Description = &req.Description
	} else {
		project.Description = source.Description
	}
	core.RegisterTags(project, project.Tags)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.projectRepo.Create(tx, project); err != nil {
			return err
		}
		if err := s.templateService.ApplyToProject(tx, def, project); err != nil {
			return err
		}
		if err := s.duplicateMemberships(tx, source, project, newOwnerID, req.Users); err != nil {
			return err
		}
		return s.bus.PublishSync(tx, core.ProjectPostSaveEvent{Project: project, Created: true})
	})
	if err != nil {
		return nil, err
	}

	s.bus.PublishAsync(core.ProjectPostSaveEvent{Project: project, Created: true})

	fresh, err := s.projectRepo.FindByID(project.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(fresh), nil
}

// duplicateMemberships 新所有者入组为管理员, 请求中的用户按其在源项目中的
// 角色slug与admin标记带入
func (s *projectService) duplicateMemberships(tx *gorm.DB, source, project *model.Project, newOwnerID int64, users []int64) error {
	ownerRoleSlug := ""
	if source.OwnerID != nil {
		if m, err := s.membershipRepo.FindByProjectAndUserTx(tx, source.ID, *source.OwnerID); err == nil && m.Role != nil {
			ownerRoleSlug = m.Role.Slug
		}
	}
	if err := s.bootstrapOwner(tx, project, newOwnerID, ownerRoleSlug); err != nil {
		return err
	}

	for _, userID := range users {
		if userID == newOwnerID {
			continue
		}
		src, err := s.membershipRepo.FindByProjectAndUserTx(tx, source.ID, userID)
		if err != nil {
			return pkgErrors.New(pkgErrors.CodeValidationError,
				fmt.Sprintf("用户 %d 不是源项目成员", userID))
		}

		roleSlug := ""
		if src.Role != nil {
			roleSlug = src.Role.Slug
		}
		roleID, err := s.findRoleBySlug(tx, project.ID, roleSlug)
		if err != nil {
			return err
		}

		uid := userID
		membership := &model.Membership{
			ProjectID: project.ID,
			UserID:    &uid,
			RoleID:    roleID,
			IsAdmin:   src.IsAdmin,
		}
		if err := s.membershipRepo.Create(tx, membership); err != nil {
			return err
		}
		if err := s.bus.PublishSync(tx, core.MembershipPostSaveEvent{Membership: membership, Created: true}); err != nil {
			return err
		}
	}
	return nil
}

func (s *projectService) SetTagColor(id int64, req *dto.SetTagColorRequest) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if project.IsBlocked() {
		return nil, pkgErrors.ErrBlocked
	}

	tag := core.NormalizeTags([]string{req.Tag})
	if len(tag) == 0 {
		return nil, pkgErrors.NewValidation("tag", "标签不能为空")
	}

	found := false
	for i := range project.TagsColors {
		if project.TagsColors[i].Tag == tag[0] {
			project.TagsColors[i].Color = req.Color
			found = true
			break
		}
	}
	if !found {
		return nil, pkgErrors.NewValidation("tag", "标签未在项目中使用")
	}

	err = s.projectRepo.UpdateColumns(s.db, id, map[string]interface{}{
		"tags_colors": project.TagsColors,
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(project), nil
}

// uniqueSlug 以名称生成slug, 冲突时追加递增后缀
func (s *projectService) uniqueSlug(name string) string {
	base := utils.Slugify(name)
	if base == "" {
		base = "project"
	}

	slug := base
	for i := 1; ; i++ {
		if existing, _ := s.projectRepo.FindBySlug(slug); existing == nil {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *projectService) toResponse(project *model.Project) *dto.ProjectResponse {
	description := ""
	if project.Description != nil {
		description = *project.Description
	}
	return &dto.ProjectResponse{
		ID:                    project.ID,
		Name:                  project.Name,
		Slug:                  project.Slug,
		Description:           description,
		OwnerID:               project.OwnerID,
		IsPrivate:             project.IsPrivate,
		BlockedCode:           project.BlockedCode,
		BlockedCodeName:       constants.BlockedCodeToString(project.BlockedCode),
		Tags:                  project.Tags,
		TagsColors:            project.TagsColors,
		TotalStoryPoints:      project.TotalStoryPoints,
		TotalMilestones:       project.TotalMilestones,
		CreatedFromTemplateID: project.CreatedFromTemplateID,
		DefaultUsStatusID:     project.DefaultUsStatusID,
		DefaultTaskStatusID:   project.DefaultTaskStatusID,
		DefaultIssueStatusID:  project.DefaultIssueStatusID,
		DefaultIssueTypeID:    project.DefaultIssueTypeID,
		DefaultPriorityID:     project.DefaultPriorityID,
		DefaultSeverityID:     project.DefaultSeverityID,
		DefaultPointsID:       project.DefaultPointsID,
		CreatedAt:             project.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             project.UpdatedAt.Format(time.RFC3339),
	}
}
