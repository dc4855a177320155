package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

// referrerSpec 描述引用某类配置行的一张表
type referrerSpec struct {
	table        string
	column       string
	bumpVersion  bool // 引用方是编号实体, 批量改写时同步递增version
	mirrorClosed bool // 引用方携带is_closed镜像, 批量改写时同步镜像
}

// kindSpec 每类配置行的分发描述
type kindSpec struct {
	newRow        func() interface{}
	referrers     []referrerSpec
	defaultColumn string // projects 表上的默认指针列, 角色没有默认指针
}

// 分发表, 键为 constants.Kind*
var kindSpecs = map[string]kindSpec{
	constants.KindUserStoryStatus: {
		newRow: func() interface{} { return &model.UserStoryStatus{} },
		referrers: []referrerSpec{
			{table: model.UserStoryTableName, column: "status_id", bumpVersion: true, mirrorClosed: true},
			{table: model.EpicTableName, column: "status_id", bumpVersion: true, mirrorClosed: true},
		},
		defaultColumn: "default_us_status_id",
	},
	constants.KindTaskStatus: {
		newRow: func() interface{} { return &model.TaskStatus{} },
		referrers: []referrerSpec{
			{table: model.TaskTableName, column: "status_id", bumpVersion: true, mirrorClosed: true},
		},
		defaultColumn: "default_task_status_id",
	},
	constants.KindIssueStatus: {
		newRow: func() interface{} { return &model.IssueStatus{} },
		referrers: []referrerSpec{
			{table: model.IssueTableName, column: "status_id", bumpVersion: true, mirrorClosed: true},
		},
		defaultColumn: "default_issue_status_id",
	},
	constants.KindIssueType: {
		newRow: func() interface{} { return &model.IssueType{} },
		referrers: []referrerSpec{
			{table: model.IssueTableName, column: "type_id", bumpVersion: true},
		},
		defaultColumn: "default_issue_type_id",
	},
	constants.KindPriority: {
		newRow: func() interface{} { return &model.Priority{} },
		referrers: []referrerSpec{
			{table: model.IssueTableName, column: "priority_id", bumpVersion: true},
		},
		defaultColumn: "default_priority_id",
	},
	constants.KindSeverity: {
		newRow: func() interface{} { return &model.Severity{} },
		referrers: []referrerSpec{
			{table: model.IssueTableName, column: "severity_id", bumpVersion: true},
		},
		defaultColumn: "default_severity_id",
	},
	constants.KindPoints: {
		newRow: func() interface{} { return &model.Points{} },
		referrers: []referrerSpec{
			{table: model.RolePointsTableName, column: "points_id"},
		},
		defaultColumn: "default_points_id",
	},
	constants.KindRole: {
		newRow: func() interface{} { return &model.Role{} },
		referrers: []referrerSpec{
			{table: model.MembershipTableName, column: "role_id"},
			{table: model.RolePointsTableName, column: "role_id"},
		},
	},
}

// KnownKind 判断配置类型是否合法
func KnownKind(kind string) bool {
	_, ok := kindSpecs[kind]
	return ok
}

// DefaultPointerColumn 返回 projects 表上该类配置的默认指针列, 角色返回空串
func DefaultPointerColumn(kind string) string {
	return kindSpecs[kind].defaultColumn
}

type TaxonomyRepository interface {
	Create(tx *gorm.DB, row *model.CatalogRow) error
	FindByID(kind string, id int64) (*model.CatalogRow, error)
	FindByIDTx(tx *gorm.DB, kind string, id int64) (*model.CatalogRow, error)
	ListByProject(kind string, projectID int64) ([]model.CatalogRow, error)
	Update(tx *gorm.DB, row *model.CatalogRow) error
	DeleteRow(tx *gorm.DB, kind string, id int64) error
	DeleteByProject(tx *gorm.DB, projectID int64) error
	ExistsName(kind string, projectID int64, name string, excludeID int64) (bool, error)
	CountReferrers(tx *gorm.DB, kind string, projectID, rowID int64) (int64, error)
	// MoveReferrers 将所有指向 from 的引用方改写为指向 to。
	// 编号实体同步递增version; 状态类引用方同步is_closed镜像。
	MoveReferrers(tx *gorm.DB, from, to *model.CatalogRow) error
}

type taxonomyRepository struct {
	db *gorm.DB
}

func NewTaxonomyRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

func (r *taxonomyRepository) Create(tx *gorm.DB, row *model.CatalogRow) error {
	m := rowToModel(row)
	if err := tx.Create(m).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建配置项失败", err)
	}
	*row = *modelToRow(row.Kind, m)
	return nil
}

func (r *taxonomyRepository) FindByID(kind string, id int64) (*model.CatalogRow, error) {
	return r.FindByIDTx(r.db, kind, id)
}

func (r *taxonomyRepository) FindByIDTx(tx *gorm.DB, kind string, id int64) (*model.CatalogRow, error) {
	spec := kindSpecs[kind]
	m := spec.newRow()
	if err := tx.First(m, id).Error; err != nil {
		return nil, translateNotFound(err, "查询配置项失败")
	}
	return modelToRow(kind, m), nil
}

func (r *taxonomyRepository) ListByProject(kind string, projectID int64) ([]model.CatalogRow, error) {
	rows := make([]model.CatalogRow, 0)

	switch kind {
	case constants.KindUserStoryStatus:
		var ms []model.UserStoryStatus
		if err := r.orderedByProject(projectID).Find(&ms).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项列表失败", err)
		}
		for i := range ms {
			rows = append(rows, *modelToRow(kind, &ms[i]))
		}
	case constants.KindTaskStatus:
		var ms []model.TaskStatus
		if err := r.orderedByProject(projectID).Find(&ms).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项列表失败", err)
		}
		for i := range ms {
			rows = append(rows, *modelToRow(kind, &ms[i]))
		}
	case constants.KindIssueStatus:
		var ms []model.IssueStatus
		if err := r.orderedByProject(projectID).Find(&ms).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项列表失败", err)
		}
		for i := range ms {
			rows = append(rows, *modelToRow(kind, &ms[i]))
		}
	case constants.KindIssueType:
		var ms []model.IssueType
		if err := r.orderedByProject(projectID).Find(&ms).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项列表失败", err)
		}
		for i := range ms {
			rows = append(rows, *modelToRow(kind, &ms[i]))
		}
	case constants.KindPriority:
		var ms []model.Priority
		if err := r.orderedByProject(projectID).Find(&ms).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项列表失败", err)
		}
		for i := range ms {
			rows = append(rows, *modelToRow(kind, &ms[i]))
		}
	case constants.KindSeverity:
		var ms []model.Severity
		if err := r.orderedByProject(projectID).Find(&ms).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项列表失败", err)
		}
		for i := range ms {
			rows = append(rows, *modelToRow(kind, &ms[i]))
		}
	case constants.KindPoints:
		var ms []model.Points
		if err := r.orderedByProject(projectID).Find(&ms).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项列表失败", err)
		}
		for i := range ms {
			rows = append(rows, *modelToRow(kind, &ms[i]))
		}
	case constants.KindRole:
		var ms []model.Role
		if err := r.orderedByProject(projectID).Find(&ms).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项列表失败", err)
		}
		for i := range ms {
			rows = append(rows, *modelToRow(kind, &ms[i]))
		}
	default:
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "未知的配置类型")
	}

	return rows, nil
}

func (r *taxonomyRepository) orderedByProject(projectID int64) *gorm.DB {
	return r.db.Where("project_id = ?", projectID).Order("`order` ASC, id ASC")
}

func (r *taxonomyRepository) Update(tx *gorm.DB, row *model.CatalogRow) error {
	m := rowToModel(row)
	if err := tx.Save(m).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新配置项失败", err)
	}
	return nil
}

func (r *taxonomyRepository) DeleteRow(tx *gorm.DB, kind string, id int64) error {
	spec := kindSpecs[kind]
	if err := tx.Delete(spec.newRow(), id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除配置项失败", err)
	}
	return nil
}

func (r *taxonomyRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	for kind := range kindSpecs {
		spec := kindSpecs[kind]
		if err := tx.Where("project_id = ?", projectID).Delete(spec.newRow()).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目配置失败", err)
		}
	}
	return nil
}

func (r *taxonomyRepository) ExistsName(kind string, projectID int64, name string, excludeID int64) (bool, error) {
	spec := kindSpecs[kind]
	column := "name"
	if kind == constants.KindRole {
		// 角色的项目内唯一键是slug
		column = "slug"
	}

	var count int64
	query := r.db.Model(spec.newRow()).
		Where("project_id = ? AND "+column+" = ?", projectID, name)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项失败", err)
	}
	return count > 0, nil
}

func (r *taxonomyRepository) CountReferrers(tx *gorm.DB, kind string, projectID, rowID int64) (int64, error) {
	var total int64
	for _, ref := range kindSpecs[kind].referrers {
		var count int64
		if err := tx.Table(ref.table).Where(ref.column+" = ?", rowID).Count(&count).Error; err != nil {
			return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计引用数量失败", err)
		}
		total += count
	}
	return total, nil
}

func (r *taxonomyRepository) MoveReferrers(tx *gorm.DB, from, to *model.CatalogRow) error {
	for _, ref := range kindSpecs[from.Kind].referrers {
		updates := map[string]interface{}{ref.column: to.ID}
		if ref.bumpVersion {
			updates["version"] = gorm.Expr("version + 1")
		}
		if ref.mirrorClosed {
			updates["is_closed"] = to.IsClosed
		}
		if err := tx.Table(ref.table).
			Where(ref.column+" = ?", from.ID).
			Updates(updates).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "改写配置项引用失败", err)
		}
	}
	return nil
}

// rowToModel 统一视图 → 具体表模型
func rowToModel(row *model.CatalogRow) interface{} {
	base := model.BaseModel{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}

	switch row.Kind {
	case constants.KindUserStoryStatus:
		return &model.UserStoryStatus{BaseModel: base, ProjectID: row.ProjectID, Name: row.Name,
			Order: row.Order, IsClosed: row.IsClosed, Color: row.Color, WipLimit: row.WipLimit}
	case constants.KindTaskStatus:
		return &model.TaskStatus{BaseModel: base, ProjectID: row.ProjectID, Name: row.Name,
			Order: row.Order, IsClosed: row.IsClosed, Color: row.Color}
	case constants.KindIssueStatus:
		return &model.IssueStatus{BaseModel: base, ProjectID: row.ProjectID, Name: row.Name,
			Order: row.Order, IsClosed: row.IsClosed, Color: row.Color}
	case constants.KindIssueType:
		return &model.IssueType{BaseModel: base, ProjectID: row.ProjectID, Name: row.Name,
			Order: row.Order, Color: row.Color}
	case constants.KindPriority:
		return &model.Priority{BaseModel: base, ProjectID: row.ProjectID, Name: row.Name,
			Order: row.Order, Color: row.Color}
	case constants.KindSeverity:
		return &model.Severity{BaseModel: base, ProjectID: row.ProjectID, Name: row.Name,
			Order: row.Order, Color: row.Color}
	case constants.KindPoints:
		return &model.Points{BaseModel: base, ProjectID: row.ProjectID, Name: row.Name,
			Order: row.Order, Value: row.Value}
	case constants.KindRole:
		return &model.Role{BaseModel: base, ProjectID: row.ProjectID, Slug: row.Slug, Name: row.Name,
			Order: row.Order, Computable: row.Computable, Permissions: row.Permissions}
	}
	return nil
}

// modelToRow 具体表模型 → 统一视图
func modelToRow(kind string, m interface{}) *model.CatalogRow {
	switch v := m.(type) {
	case *model.UserStoryStatus:
		return &model.CatalogRow{Kind: kind, ID: v.ID, ProjectID: v.ProjectID, Name: v.Name,
			Order: v.Order, IsClosed: v.IsClosed, Color: v.Color, WipLimit: v.WipLimit,
			CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	case *model.TaskStatus:
		return &model.CatalogRow{Kind: kind, ID: v.ID, ProjectID: v.ProjectID, Name: v.Name,
			Order: v.Order, IsClosed: v.IsClosed, Color: v.Color,
			CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	case *model.IssueStatus:
		return &model.CatalogRow{Kind: kind, ID: v.ID, ProjectID: v.ProjectID, Name: v.Name,
			Order: v.Order, IsClosed: v.IsClosed, Color: v.Color,
			CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	case *model.IssueType:
		return &model.CatalogRow{Kind: kind, ID: v.ID, ProjectID: v.ProjectID, Name: v.Name,
			Order: v.Order, Color: v.Color, CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	case *model.Priority:
		return &model.CatalogRow{Kind: kind, ID: v.ID, ProjectID: v.ProjectID, Name: v.Name,
			Order: v.Order, Color: v.Color, CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	case *model.Severity:
		return &model.CatalogRow{Kind: kind, ID: v.ID, ProjectID: v.ProjectID, Name: v.Name,
			Order: v.Order, Color: v.Color, CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	case *model.Points:
		return &model.CatalogRow{Kind: kind, ID: v.ID, ProjectID: v.ProjectID, Name: v.Name,
			Order: v.Order, Value: v.Value, CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	case *model.Role:
		return &model.CatalogRow{Kind: kind, ID: v.ID, ProjectID: v.ProjectID, Name: v.Name,
			Order: v.Order, Slug: v.Slug, Computable: v.Computable, Permissions: v.Permissions,
			CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	}
	return nil
}
