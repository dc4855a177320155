package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"agile-pm/internal/core"
	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/pkg/config"
	"agile-pm/internal/pkg/database"
	"agile-pm/internal/repository"
)

// testEnv 内存库上的完整服务栈
type testEnv struct {
	db      *gorm.DB
	bus     *core.Bus
	closure *core.ClosureEvaluator
	engine  *core.DeletionEngine

	projects    ProjectService
	taxonomies  TaxonomyService
	stories     UserStoryService
	tasks       TaskService
	issues      IssueService
	epics       EpicService
	milestones  MilestoneService
	memberships MembershipService
	templates   TemplateService
	quota       QuotaService
	wiki        WikiService
	attachments AttachmentService

	projectRepo repository.ProjectRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// 默认不限制配额, 单个用例按需覆写
	config.GlobalConfig = &config.Config{
		Projects: config.ProjectsConfig{DefaultTemplateSlug: "scrum"},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	// 内存库每个连接各自独立, 限制为单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	logger := zap.NewNop()
	bus := core.NewBus(logger)
	closure := core.NewClosureEvaluator(bus, logger)
	engine := core.NewDeletionEngine(db, bus, logger)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	taxonomyRepo := repository.NewTaxonomyRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	userStoryRepo := repository.NewUserStoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	epicRepo := repository.NewEpicRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	wikiRepo := repository.NewWikiRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	quotaService := NewQuotaService(projectRepo, membershipRepo)
	templateService := NewTemplateService(db, templateRepo, taxonomyRepo, projectRepo, membershipRepo)
	require.NoError(t, templateService.SeedBuiltin())

	storyService := NewUserStoryService(db, userStoryRepo, taskRepo, taxonomyRepo, projectRepo, milestoneRepo, referenceRepo, closure, bus)

	env := &testEnv{
		db:          db,
		bus:         bus,
		closure:     closure,
		engine:      engine,
		projects:    NewProjectService(db, projectRepo, membershipRepo, taxonomyRepo, templateService, quotaService, bus),
		taxonomies:  NewTaxonomyService(db, taxonomyRepo, projectRepo, userStoryRepo, taskRepo, closure, bus),
		stories:     storyService,
		tasks:       NewTaskService(db, taskRepo, userStoryRepo, taxonomyRepo, projectRepo, milestoneRepo, referenceRepo, closure),
		issues:      NewIssueService(db, issueRepo, userStoryRepo, taxonomyRepo, projectRepo, milestoneRepo, referenceRepo, closure, storyService),
		epics:       NewEpicService(db, epicRepo, userStoryRepo, taxonomyRepo, projectRepo, referenceRepo, storyService),
		milestones:  NewMilestoneService(db, milestoneRepo, projectRepo),
		memberships: NewMembershipService(db, membershipRepo, projectRepo, taxonomyRepo, userRepo, quotaService, bus),
		templates:   templateService,
		quota:       quotaService,
		wiki:        NewWikiService(db, wikiRepo, projectRepo),
		attachments: NewAttachmentService(db, attachmentRepo, projectRepo),
		projectRepo: projectRepo,
	}
	return env
}

func (env *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	user := &model.User{
		AuthProvider: "local",
		Username:     username,
		IsActive:     true,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env *testEnv) createProject(t *testing.T, ownerID int64, name string) *dto.ProjectResponse {
	t.Helper()
	project, err := env.projects.Create(ownerID, &dto.CreateProjectRequest{Name: name})
	require.NoError(t, err)
	return project
}

// taxonomyByName 在项目配置中按名称定位一行
func (env *testEnv) taxonomyByName(t *testing.T, projectID int64, kind, name string) *dto.TaxonomyResponse {
	t.Helper()
	rows, err := env.taxonomies.List(projectID, kind)
	require.NoError(t, err)
	for _, row := range rows {
		if row.Name == name {
			return row
		}
	}
	t.Fatalf("配置行 %s/%s 不存在", kind, name)
	return nil
}

func (env *testEnv) reloadProject(t *testing.T, id int64) *model.Project {
	t.Helper()
	project, err := env.projectRepo.FindByID(id)
	require.NoError(t, err)
	return project
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
func int64Ptr(v int64) *int64 { return &v }
