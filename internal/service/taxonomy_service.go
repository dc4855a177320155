package service

import (
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"agile-pm/internal/core"
	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/repository"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
	"agile-pm/pkg/utils"
)

type TaxonomyService interface {
	List(projectID int64, kind string) ([]*dto.TaxonomyResponse, error)
	Create(projectID int64, kind string, req *dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error)
	Update(projectID int64, kind string, id int64, req *dto.UpdateTaxonomyRequest) (*dto.TaxonomyResponse, error)
	SetDefault(projectID int64, kind string, id int64) error
	// Delete 配置行删除。存在引用方时必须提供 moveTo(同项目同类型的另一行),
	// 所有引用在单事务内改写到替换行, 默认指针若指向被删行则置空。
	Delete(projectID int64, kind string, id int64, moveTo int64) error
}

type taxonomyService struct {
	db            *gorm.DB
	taxonomyRepo  repository.TaxonomyRepository
	projectRepo   repository.ProjectRepository
	userStoryRepo repository.UserStoryRepository
	taskRepo      repository.TaskRepository
	closure       *core.ClosureEvaluator
	bus           *core.Bus
}

func NewTaxonomyService(
	db *gorm.DB,
	taxonomyRepo repository.TaxonomyRepository,
	projectRepo repository.ProjectRepository,
	userStoryRepo repository.UserStoryRepository,
	taskRepo repository.TaskRepository,
	closure *core.ClosureEvaluator,
	bus *core.Bus,
) TaxonomyService {
	return &taxonomyService{
		db:            db,
		taxonomyRepo:  taxonomyRepo,
		projectRepo:   projectRepo,
		userStoryRepo: userStoryRepo,
		taskRepo:      taskRepo,
		closure:       closure,
		bus:           bus,
	}
}

func (s *taxonomyService) List(projectID int64, kind string) ([]*dto.TaxonomyResponse, error) {
	if !repository.KnownKind(kind) {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "未知的配置类型")
	}
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, err
	}

	rows, err := s.taxonomyRepo.ListByProject(kind, projectID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.TaxonomyResponse, len(rows))
	for i := range rows {
		responses[i] = s.toResponse(&rows[i], project)
	}
	return responses, nil
}

func (s *taxonomyService) Create(projectID int64, kind string, req *dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error) {
	project, err := s.writableProject(projectID)
	if err != nil {
		return nil, err
	}
	if !repository.KnownKind(kind) {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "未知的配置类型")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgErrors.NewValidation("name", "名称不能为空")
	}

	row := &model.CatalogRow{
		Kind:      kind,
		ProjectID: projectID,
		Name:      name,
		Order:     req.Order,
		Color:     req.Color,
		WipLimit:  req.WipLimit,
		Value:     req.Value,
	}
	if req.IsClosed != nil {
		row.IsClosed = *req.IsClosed
	}
	if kind == constants.KindRole {
		row.Slug = strings.TrimSpace(req.Slug)
		if row.Slug == "" {
			row.Slug = utils.Slugify(name)
		}
		if req.Computable != nil {
			row.Computable = *req.Computable
		}
		row.Permissions = req.Permissions
	}

	uniqueKey := row.Name
	if kind == constants.KindRole {
		uniqueKey = row.Slug
	}
	exists, err := s.taxonomyRepo.ExistsName(kind, projectID, uniqueKey, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgErrors.ErrNameConflict
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taxonomyRepo.Create(tx, row); err != nil {
			return err
		}
		// 该类首行成为项目默认
		return s.adoptAsDefaultIfFirst(tx, project, kind, row.ID)
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(row, fresh), nil
}

func (s *taxonomyService) adoptAsDefaultIfFirst(tx *gorm.DB, project *model.Project, kind string, rowID int64) error {
	column := repository.DefaultPointerColumn(kind)
	if column == "" {
		return nil // 角色没有默认指针
	}
	if s.defaultPointer(project, kind) != nil {
		return nil
	}
	return s.projectRepo.UpdateColumns(tx, project.ID, map[string]interface{}{column: rowID})
}

func (s *taxonomyService) Update(projectID int64, kind string, id int64, req *dto.UpdateTaxonomyRequest) (*dto.TaxonomyResponse, error) {
	project, err := s.writableProject(projectID)
	if err != nil {
		return nil, err
	}

	row, err := s.rowOfProject(kind, id, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgErrors.NewValidation("name", "名称不能为空")
		}
		if name != row.Name {
			// 角色以slug定唯一, 改名不受限
			if kind != constants.KindRole {
				exists, err := s.taxonomyRepo.ExistsName(kind, projectID, name, id)
				if err != nil {
					return nil, err
				}
				if exists {
					return nil, pkgErrors.ErrNameConflict
				}
			}
			row.Name = name
		}
	}
	if req.Order != nil {
		row.Order = *req.Order
	}
	if req.Color != nil {
		row.Color = *req.Color
	}
	if req.WipLimit != nil {
		row.WipLimit = req.WipLimit
	}
	if req.Value != nil {
		row.Value = req.Value
	}
	if req.Computable != nil {
		row.Computable = *req.Computable
	}
	if req.Permissions != nil {
		row.Permissions = *req.Permissions
	}

	closedFlipped := req.IsClosed != nil && *req.IsClosed != row.IsClosed
	if closedFlipped {
		row.IsClosed = *req.IsClosed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taxonomyRepo.Update(tx, row); err != nil {
			return err
		}
		if closedFlipped {
			return s.propagateClosedFlip(tx, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(row, project), nil
}

// propagateClosedFlip 状态行is_closed翻转后的镜像回填与闭合传播
func (s *taxonomyService) propagateClosedFlip(tx *gorm.DB, row *model.CatalogRow) error {
	switch row.Kind {
	case constants.KindUserStoryStatus:
		// 史诗镜像直接随状态
		err := tx.Model(&model.Epic{}).Where("status_id = ?", row.ID).
			Updates(map[string]interface{}{
				"is_closed": row.IsClosed,
				"version":   gorm.Expr("version + 1"),
			}).Error
		if err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "回填史诗闭合镜像失败", err)
		}

		// 故事闭合还取决于任务, 逐个重算
		stories, err := s.userStoryRepo.ListByStatus(tx, row.ProjectID, row.ID)
		if err != nil {
			return err
		}
		for _, story := range stories {
			if err := s.closure.Recompute(tx, story); err != nil {
				return err
			}
		}
		return nil

	case constants.KindTaskStatus:
		err := tx.Model(&model.Task{}).Where("status_id = ?", row.ID).
			Updates(map[string]interface{}{
				"is_closed": row.IsClosed,
				"version":   gorm.Expr("version + 1"),
			}).Error
		if err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "回填任务闭合镜像失败", err)
		}

		tasks, err := s.taskRepo.ListByStatus(tx, row.ProjectID, row.ID)
		if err != nil {
			return err
		}
		storyIDs := lo.Uniq(lo.FilterMap(tasks, func(t *model.Task, _ int) (int64, bool) {
			if t.UserStoryID == nil {
				return 0, false
			}
			return *t.UserStoryID, true
		}))
		return s.closure.RecomputeByIDs(tx, storyIDs)

	case constants.KindIssueStatus:
		err := tx.Model(&model.Issue{}).Where("status_id = ?", row.ID).
			Updates(map[string]interface{}{
				"is_closed": row.IsClosed,
				"version":   gorm.Expr("version + 1"),
			}).Error
		if err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "回填问题闭合镜像失败", err)
		}
		return nil
	}
	return nil
}

func (s *taxonomyService) SetDefault(projectID int64, kind string, id int64) error {
	project, err := s.writableProject(projectID)
	if err != nil {
		return err
	}

	column := repository.DefaultPointerColumn(kind)
	if column == "" {
		return pkgErrors.New(pkgErrors.CodeBadRequest, "该配置类型没有默认指针")
	}

	if _, err := s.rowOfProject(kind, id, projectID); err != nil {
		return err
	}
	return s.projectRepo.UpdateColumns(s.db, project.ID, map[string]interface{}{column: id})
}

func (s *taxonomyService) Delete(projectID int64, kind string, id int64, moveTo int64) error {
	project, err := s.writableProject(projectID)
	if err != nil {
		return err
	}

	row, err := s.rowOfProject(kind, id, projectID)
	if err != nil {
		return err
	}

	var event *core.MoveOnDestroyEvent

	err = s.db.Transaction(func(tx *gorm.DB) error {
		count, err := s.taxonomyRepo.CountReferrers(tx, kind, projectID, id)
		if err != nil {
			return err
		}

		if count > 0 {
			replacement, err := s.validateReplacement(tx, row, moveTo)
			if err != nil {
				return err
			}
			if err := s.taxonomyRepo.MoveReferrers(tx, row, replacement); err != nil {
				return err
			}
			event = &core.MoveOnDestroyEvent{
				TaxonomyKind: kind,
				Deleted:      row,
				MovedTo:      replacement,
				MovedCount:   count,
			}
		}

		if err := s.clearDefaultIfPointing(tx, project, kind, id); err != nil {
			return err
		}
		if err := s.taxonomyRepo.DeleteRow(tx, kind, id); err != nil {
			return err
		}

		if event != nil {
			if err := s.postMoveClosure(tx, event); err != nil {
				return err
			}
			return s.bus.PublishSync(tx, *event)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if event != nil {
		s.bus.PublishAsync(*event)
	}
	return nil
}

// validateReplacement 替换行必须存在、同项目同类型且不同于被删行
func (s *taxonomyService) validateReplacement(tx *gorm.DB, row *model.CatalogRow, moveTo int64) (*model.CatalogRow, error) {
	if moveTo == 0 || moveTo == row.ID {
		return nil, pkgErrors.ErrBadReplacement
	}

	replacement, err := s.taxonomyRepo.FindByIDTx(tx, row.Kind, moveTo)
	if err != nil {
		if pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
			return nil, pkgErrors.ErrBadReplacement
		}
		return nil, err
	}
	if replacement.ProjectID != row.ProjectID {
		return nil, pkgErrors.ErrBadReplacement
	}
	return replacement, nil
}

func (s *taxonomyService) clearDefaultIfPointing(tx *gorm.DB, project *model.Project, kind string, rowID int64) error {
	column := repository.DefaultPointerColumn(kind)
	if column == "" {
		return nil
	}
	current := s.defaultPointer(project, kind)
	if current == nil || *current != rowID {
		return nil
	}
	return s.projectRepo.UpdateColumns(tx, project.ID, map[string]interface{}{column: nil})
}

// postMoveClosure 引用迁移后补算闭合: 镜像已随迁移写入, 故事还要看任务
func (s *taxonomyService) postMoveClosure(tx *gorm.DB, event *core.MoveOnDestroyEvent) error {
	switch event.TaxonomyKind {
	case constants.KindUserStoryStatus:
		stories, err := s.userStoryRepo.ListByStatus(tx, event.MovedTo.ProjectID, event.MovedTo.ID)
		if err != nil {
			return err
		}
		for _, story := range stories {
			if err := s.closure.Recompute(tx, story); err != nil {
				return err
			}
		}
		return nil

	case constants.KindTaskStatus:
		tasks, err := s.taskRepo.ListByStatus(tx, event.MovedTo.ProjectID, event.MovedTo.ID)
		if err != nil {
			return err
		}
		storyIDs := lo.Uniq(lo.FilterMap(tasks, func(t *model.Task, _ int) (int64, bool) {
			if t.UserStoryID == nil {
				return 0, false
			}
			return *t.UserStoryID, true
		}))
		return s.closure.RecomputeByIDs(tx, storyIDs)
	}
	return nil
}

func (s *taxonomyService) writableProject(projectID int64) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, err
	}
	if project.IsBlocked() {
		return nil, pkgErrors.ErrBlocked
	}
	return project, nil
}

// rowOfProject 行必须属于该项目, 否则 WrongProject
func (s *taxonomyService) rowOfProject(kind string, id, projectID int64) (*model.CatalogRow, error) {
	if !repository.KnownKind(kind) {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "未知的配置类型")
	}
	row, err := s.taxonomyRepo.FindByID(kind, id)
	if err != nil {
		return nil, err
	}
	if row.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return row, nil
}

func (s *taxonomyService) defaultPointer(project *model.Project, kind string) *int64 {
	switch kind {
	case constants.KindUserStoryStatus:
		return project.DefaultUsStatusID
	case constants.KindTaskStatus:
		return project.DefaultTaskStatusID
	case constants.KindIssueStatus:
		return project.DefaultIssueStatusID
	case constants.KindIssueType:
		return project.DefaultIssueTypeID
	case constants.KindPriority:
		return project.DefaultPriorityID
	case constants.KindSeverity:
		return project.DefaultSeverityID
	case constants.KindPoints:
		return project.DefaultPointsID
	}
	return nil
}

func (s *taxonomyService) toResponse(row *model.CatalogRow, project *model.Project) *dto.TaxonomyResponse {
	isDefault := false
	if ptr := s.defaultPointer(project, row.Kind); ptr != nil && *ptr == row.ID {
		isDefault = true
	}
	return &dto.TaxonomyResponse{
		ID:          row.ID,
		Kind:        row.Kind,
		ProjectID:   row.ProjectID,
		Name:        row.Name,
		Order:       row.Order,
		IsDefault:   isDefault,
		IsClosed:    row.IsClosed,
		Color:       row.Color,
		WipLimit:    row.WipLimit,
		Value:       row.Value,
		Slug:        row.Slug,
		Computable:  row.Computable,
		Permissions: row.Permissions,
	}
}
