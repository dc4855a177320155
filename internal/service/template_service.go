package service

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/repository"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

type TemplateService interface {
	List() ([]*dto.TemplateResponse, error)
	GetBySlug(slug string) (*dto.TemplateResponse, error)

	// Resolve 按slug解析模板, 不存在返回 TemplateUnknown
	Resolve(slug string) (*model.ProjectTemplate, *model.TemplateDefinition, error)

	// LoadFromProject 从现有项目提取模板定义（快照方向）
	LoadFromProject(projectID int64) (*model.TemplateDefinition, error)

	// Snapshot 从项目提取并持久化为新模板
	Snapshot(req *dto.SnapshotTemplateRequest) (*dto.TemplateResponse, error)

	// ApplyToProject 把模板定义落地到项目: 按序创建各类配置与角色,
	// 再按 default_options 写默认指针。整体原子, 由调用方事务包裹。
	ApplyToProject(tx *gorm.DB, def *model.TemplateDefinition, project *model.Project) error

	// SeedBuiltin 首次启动时注入内置模板
	SeedBuiltin() error
}

type templateService struct {
	db             *gorm.DB
	templateRepo   repository.TemplateRepository
	taxonomyRepo   repository.TaxonomyRepository
	projectRepo    repository.ProjectRepository
	membershipRepo repository.MembershipRepository
}

func NewTemplateService(
	db *gorm.DB,
	templateRepo repository.TemplateRepository,
	taxonomyRepo repository.TaxonomyRepository,
	projectRepo repository.ProjectRepository,
	membershipRepo repository.MembershipRepository,
) TemplateService {
	return &templateService{
		db:             db,
		templateRepo:   templateRepo,
		taxonomyRepo:   taxonomyRepo,
		projectRepo:    projectRepo,
		membershipRepo: membershipRepo,
	}
}

func (s *templateService) List() ([]*dto.TemplateResponse, error) {
	templates, err := s.templateRepo.List()
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.TemplateResponse, len(templates))
	for i, t := range templates {
		responses[i] = s.toResponse(t, false)
	}
	return responses, nil
}

func (s *templateService) GetBySlug(slug string) (*dto.TemplateResponse, error) {
	template, _, err := s.Resolve(slug)
	if err != nil {
		return nil, err
	}
	return s.toResponse(template, true), nil
}

func (s *templateService) Resolve(slug string) (*model.ProjectTemplate, *model.TemplateDefinition, error) {
	template, err := s.templateRepo.FindBySlug(slug)
	if err != nil {
		if pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
			return nil, nil, pkgErrors.ErrTemplateUnknown
		}
		return nil, nil, err
	}

	def, err := template.Decode()
	if err != nil {
		return nil, nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "解析模板定义失败", err)
	}
	return template, def, nil
}

func (s *templateService) LoadFromProject(projectID int64) (*model.TemplateDefinition, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, err
	}

	def := &model.TemplateDefinition{DefaultOptions: map[string]string{}}

	loadStatuses := func(kind string, dst *[]model.TemplateStatus) error {
		rows, err := s.taxonomyRepo.ListByProject(kind, projectID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			*dst = append(*dst, model.TemplateStatus{
				Name:     row.Name,
				Order:    row.Order,
				IsClosed: row.IsClosed,
				Color:    row.Color,
				WipLimit: row.WipLimit,
			})
		}
		return nil
	}

	statusKinds := []struct {
		kind string
		dst  *[]model.TemplateStatus
	}{
		{constants.KindUserStoryStatus, &def.UsStatuses},
		{constants.KindTaskStatus, &def.TaskStatuses},
		{constants.KindIssueStatus, &def.IssueStatuses},
		{constants.KindIssueType, &def.IssueTypes},
		{constants.KindPriority, &def.Priorities},
		{constants.KindSeverity, &def.Severities},
	}
	for _, k := range statusKinds {
		if err := loadStatuses(k.kind, k.dst); err != nil {
			return nil, err
		}
	}

	pointRows, err := s.taxonomyRepo.ListByProject(constants.KindPoints, projectID)
	if err != nil {
		return nil, err
	}
	for _, row := range pointRows {
		def.Points = append(def.Points, model.TemplatePoints{
			Name: row.Name, Order: row.Order, Value: row.Value,
		})
	}

	roleRows, err := s.taxonomyRepo.ListByProject(constants.KindRole, projectID)
	if err != nil {
		return nil, err
	}
	for _, row := range roleRows {
		def.Roles = append(def.Roles, model.TemplateRole{
			Slug:        row.Slug,
			Name:        row.Name,
			Order:       row.Order,
			Computable:  row.Computable,
			Permissions: row.Permissions,
		})
	}

	// 默认指针 → default_options (按名称)
	defaults := []struct {
		key  string
		kind string
		id   *int64
	}{
		{constants.DefaultOptionUsStatus, constants.KindUserStoryStatus, project.DefaultUsStatusID},
		{constants.DefaultOptionTaskStatus, constants.KindTaskStatus, project.DefaultTaskStatusID},
		{constants.DefaultOptionIssueStatus, constants.KindIssueStatus, project.DefaultIssueStatusID},
		{constants.DefaultOptionIssueType, constants.KindIssueType, project.DefaultIssueTypeID},
		{constants.DefaultOptionPriority, constants.KindPriority, project.DefaultPriorityID},
		{constants.DefaultOptionSeverity, constants.KindSeverity, project.DefaultSeverityID},
		{constants.DefaultOptionPoints, constants.KindPoints, project.DefaultPointsID},
	}
	for _, d := range defaults {
		if d.id == nil {
			continue
		}
		row, err := s.taxonomyRepo.FindByID(d.kind, *d.id)
		if err != nil {
			return nil, err
		}
		def.DefaultOptions[d.key] = row.Name
	}

	return def, nil
}

func (s *templateService) Snapshot(req *dto.SnapshotTemplateRequest) (*dto.TemplateResponse, error) {
	existing, _ := s.templateRepo.FindBySlug(req.Slug)
	if existing != nil {
		return nil, pkgErrors.ErrNameConflict
	}

	def, err := s.LoadFromProject(req.ProjectID)
	if err != nil {
		return nil, err
	}

	// 记录所有者注册时使用的角色slug
	defaultOwnerRole := s.ownerRoleSlug(req.ProjectID)

	template := &model.ProjectTemplate{
		Slug:             req.Slug,
		Name:             req.Name,
		Description:      req.Description,
		DefaultOwnerRole: defaultOwnerRole,
	}
	if err := template.Encode(def); err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "序列化模板定义失败", err)
	}

	if err := s.templateRepo.Create(s.db, template); err != nil {
		return nil, err
	}
	return s.toResponse(template, true), nil
}

func (s *templateService) ownerRoleSlug(projectID int64) string {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil || project.OwnerID == nil {
		return ""
	}
	membership, err := s.membershipRepo.FindByProjectAndUser(projectID, *project.OwnerID)
	if err != nil || membership.Role == nil {
		return ""
	}
	return membership.Role.Slug
}

func (s *templateService) ApplyToProject(tx *gorm.DB, def *model.TemplateDefinition, project *model.Project) error {
	created := map[string]map[string]int64{} // kind -> name -> id
	firstOfKind := map[string]int64{}

	record := func(kind, name string, id int64) {
		if created[kind] == nil {
			created[kind] = map[string]int64{}
		}
		created[kind][name] = id
		if _, ok := firstOfKind[kind]; !ok {
			firstOfKind[kind] = id
		}
	}

	statusKinds := []struct {
		kind string
		src  []model.TemplateStatus
	}{
		{constants.KindUserStoryStatus, def.UsStatuses},
		{constants.KindTaskStatus, def.TaskStatuses},
		{constants.KindIssueStatus, def.IssueStatuses},
		{constants.KindIssueType, def.IssueTypes},
		{constants.KindPriority, def.Priorities},
		{constants.KindSeverity, def.Severities},
	}
	for _, k := range statusKinds {
		for _, item := range k.src {
			row := &model.CatalogRow{
				Kind:      k.kind,
				ProjectID: project.ID,
				Name:      item.Name,
				Order:     item.Order,
				IsClosed:  item.IsClosed,
				Color:     item.Color,
				WipLimit:  item.WipLimit,
			}
			if err := s.taxonomyRepo.Create(tx, row); err != nil {
				return err
			}
			record(k.kind, item.Name, row.ID)
		}
	}

	for _, item := range def.Points {
		row := &model.CatalogRow{
			Kind:      constants.KindPoints,
			ProjectID: project.ID,
			Name:      item.Name,
			Order:     item.Order,
			Value:     item.Value,
		}
		if err := s.taxonomyRepo.Create(tx, row); err != nil {
			return err
		}
		record(constants.KindPoints, item.Name, row.ID)
	}

	for _, item := range def.Roles {
		row := &model.CatalogRow{
			Kind:        constants.KindRole,
			ProjectID:   project.ID,
			Slug:        item.Slug,
			Name:        item.Name,
			Order:       item.Order,
			Computable:  item.Computable,
			Permissions: item.Permissions,
		}
		if err := s.taxonomyRepo.Create(tx, row); err != nil {
			return err
		}
	}

	// 各类默认指针: default_options 指名则用之, 否则落到该类首行
	pointers := []struct {
		key    string
		kind   string
		column string
	}{
		{constants.DefaultOptionUsStatus, constants.KindUserStoryStatus, "default_us_status_id"},
		{constants.DefaultOptionTaskStatus, constants.KindTaskStatus, "default_task_status_id"},
		{constants.DefaultOptionIssueStatus, constants.KindIssueStatus, "default_issue_status_id"},
		{constants.DefaultOptionIssueType, constants.KindIssueType, "default_issue_type_id"},
		{constants.DefaultOptionPriority, constants.KindPriority, "default_priority_id"},
		{constants.DefaultOptionSeverity, constants.KindSeverity, "default_severity_id"},
		{constants.DefaultOptionPoints, constants.KindPoints, "default_points_id"},
	}

	columns := map[string]interface{}{}
	for _, p := range pointers {
		var id int64
		if name, ok := def.DefaultOptions[p.key]; ok {
			id, ok = created[p.kind][name]
			if !ok {
				return pkgErrors.New(pkgErrors.CodeValidationError,
					fmt.Sprintf("模板默认项 %s=%s 不在模板定义中", p.key, name))
			}
		} else if first, ok := firstOfKind[p.kind]; ok {
			id = first
		} else {
			continue
		}
		columns[p.column] = id
	}
	if len(columns) == 0 {
		return nil
	}
	return s.projectRepo.UpdateColumns(tx, project.ID, columns)
}

func (s *templateService) SeedBuiltin() error {
	count, err := s.templateRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, builtin := range builtinTemplates() {
		if err := s.templateRepo.Create(s.db, builtin); err != nil {
			return err
		}
	}
	return nil
}

func (s *templateService) toResponse(t *model.ProjectTemplate, withDefinition bool) *dto.TemplateResponse {
	resp := &dto.TemplateResponse{
		ID:               t.ID,
		Slug:             t.Slug,
		Domain:           t.Domain,
		Name:             t.Name,
		Description:      t.Description,
		DefaultOwnerRole: t.DefaultOwnerRole,
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        t.UpdatedAt.Format(time.RFC3339),
	}
	if withDefinition {
		if def, err := t.Decode(); err == nil {
			resp.Definition = def
		}
	}
	return resp
}
