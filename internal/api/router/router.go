package router

import (
	"agile-pm/internal/api/handler"
	"agile-pm/internal/api/middleware"
	"agile-pm/internal/core"
	"agile-pm/internal/pkg/config"
	"agile-pm/internal/repository"
	"agile-pm/internal/service"
	"agile-pm/pkg/constants"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup 设置路由
func Setup(cfg *config.Config, bus *core.Bus, closure *core.ClosureEvaluator, logger *zap.Logger) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 获取数据库连接
	db := cfg.DB.(*gorm.DB)

	// 初始化Repository
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

	// 初始化Service
	ldapService := service.NewLDAPService(&cfg.Auth.LDAP)
	authService := service.NewAuthService(&cfg.Auth, userRepo, ldapService)
	userService := service.NewUserService(userRepo)
	quotaService := service.NewQuotaService(projectRepo, membershipRepo)
	templateService := service.NewTemplateService(db, templateRepo, taxonomyRepo, projectRepo, membershipRepo)
	projectService := service.NewProjectService(db, projectRepo, membershipRepo, taxonomyRepo, templateService, quotaService, bus)
	membershipService := service.NewMembershipService(db, membershipRepo, projectRepo, taxonomyRepo, userRepo, quotaService, bus)
	taxonomyService := service.NewTaxonomyService(db, taxonomyRepo, projectRepo, userStoryRepo, taskRepo, closure, bus)
	userStoryService := service.NewUserStoryService(db, userStoryRepo, taskRepo, taxonomyRepo, projectRepo, milestoneRepo, referenceRepo, closure, bus)
	taskService := service.NewTaskService(db, taskRepo, userStoryRepo, taxonomyRepo, projectRepo, milestoneRepo, referenceRepo, closure)
	issueService := service.NewIssueService(db, issueRepo, userStoryRepo, taxonomyRepo, projectRepo, milestoneRepo, referenceRepo, closure, userStoryService)
	epicService := service.NewEpicService(db, epicRepo, userStoryRepo, taxonomyRepo, projectRepo, referenceRepo, userStoryService)
	milestoneService := service.NewMilestoneService(db, milestoneRepo, projectRepo)
	wikiService := service.NewWikiService(db, wikiRepo, projectRepo)
	attachmentService := service.NewAttachmentService(db, attachmentRepo, projectRepo)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)
	membershipHandler := handler.NewMembershipHandler(membershipService)
	taxonomyHandler := handler.NewTaxonomyHandler(taxonomyService)
	userStoryHandler := handler.NewUserStoryHandler(userStoryService)
	taskHandler := handler.NewTaskHandler(taskService)
	issueHandler := handler.NewIssueHandler(issueService)
	epicHandler := handler.NewEpicHandler(epicService)
	milestoneHandler := handler.NewMilestoneHandler(milestoneService)
	wikiHandler := handler.NewWikiHandler(wikiService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	templateHandler := handler.NewTemplateHandler(templateService)

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证相关(无需token)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		// 需要认证的路由
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.GET("/auth/me", authHandler.GetMe)

			// 用户
			authed.GET("/users", userHandler.List)
			authed.GET("/users/:id", userHandler.Get)

			// 项目模板
			authed.GET("/project-templates", templateHandler.List)
			authed.POST("/project-templates/snapshot", templateHandler.Snapshot)
			authed.GET("/project-templates/:slug", templateHandler.GetBySlug)

			// 项目
			authed.POST("/projects", projectHandler.Create)
			authed.GET("/projects", projectHandler.List)
			authed.GET("/projects/by-slug/:slug", projectHandler.GetBySlug)
			authed.GET("/projects/:id", projectHandler.Get)
			authed.PUT("/projects/:id", projectHandler.Update)
			authed.DELETE("/projects/:id", projectHandler.Delete)
			authed.POST("/projects/:id/duplicate", projectHandler.Duplicate)
			authed.POST("/projects/:id/transfer", projectHandler.Transfer)
			authed.POST("/projects/:id/tag-color", projectHandler.SetTagColor)

			// 成员邀请
			authed.POST("/invitations/accept", membershipHandler.AcceptInvitation)

			// 项目下的资源: 要求当前用户持有该项目的成员关系
			project := authed.Group("/projects/:id")
			project.Use(middleware.ProjectMemberMiddleware(membershipRepo))
			{
				// 成员
				project.POST("/memberships", membershipHandler.Create)
				project.GET("/memberships", membershipHandler.List)
				project.PUT("/memberships/:memberId", membershipHandler.Update)
				project.DELETE("/memberships/:memberId", membershipHandler.Delete)

				// 项目配置项: 八类共用一套处理器
				registerTaxonomyRoutes(project, taxonomyHandler, "us-statuses", constants.KindUserStoryStatus)
				registerTaxonomyRoutes(project, taxonomyHandler, "task-statuses", constants.KindTaskStatus)
				registerTaxonomyRoutes(project, taxonomyHandler, "issue-statuses", constants.KindIssueStatus)
				registerTaxonomyRoutes(project, taxonomyHandler, "issue-types", constants.KindIssueType)
				registerTaxonomyRoutes(project, taxonomyHandler, "priorities", constants.KindPriority)
				registerTaxonomyRoutes(project, taxonomyHandler, "severities", constants.KindSeverity)
				registerTaxonomyRoutes(project, taxonomyHandler, "points", constants.KindPoints)
				registerTaxonomyRoutes(project, taxonomyHandler, "roles", constants.KindRole)

				// 用户故事
				project.POST("/userstories", userStoryHandler.Create)
				project.GET("/userstories", userStoryHandler.List)
				project.GET("/userstories/:ref", userStoryHandler.GetByRef)
				project.PUT("/userstories/:ref", userStoryHandler.Update)
				project.DELETE("/userstories/:ref", userStoryHandler.Delete)

				// 任务
				project.POST("/tasks", taskHandler.Create)
				project.GET("/tasks", taskHandler.List)
				project.GET("/tasks/:ref", taskHandler.GetByRef)
				project.PUT("/tasks/:ref", taskHandler.Update)
				project.DELETE("/tasks/:ref", taskHandler.Delete)

				// 问题
				project.POST("/issues", issueHandler.Create)
				project.GET("/issues", issueHandler.List)
				project.GET("/issues/:ref", issueHandler.GetByRef)
				project.PUT("/issues/:ref", issueHandler.Update)
				project.DELETE("/issues/:ref", issueHandler.Delete)
				project.POST("/issues/:ref/promote", issueHandler.Promote)

				// 史诗
				project.POST("/epics", epicHandler.Create)
				project.GET("/epics", epicHandler.List)
				project.GET("/epics/:ref", epicHandler.GetByRef)
				project.PUT("/epics/:ref", epicHandler.Update)
				project.DELETE("/epics/:ref", epicHandler.Delete)
				project.POST("/epics/:ref/userstories", epicHandler.LinkUserStory)
				project.GET("/epics/:ref/userstories", epicHandler.ListUserStories)
				project.DELETE("/epics/:ref/userstories/:storyId", epicHandler.UnlinkUserStory)

				// 里程碑
				project.POST("/milestones", milestoneHandler.Create)
				project.GET("/milestones", milestoneHandler.List)
				project.GET("/milestones/:milestoneId", milestoneHandler.Get)
				project.PUT("/milestones/:milestoneId", milestoneHandler.Update)
				project.DELETE("/milestones/:milestoneId", milestoneHandler.Delete)

				// Wiki
				project.POST("/wiki", wikiHandler.CreatePage)
				project.GET("/wiki", wikiHandler.ListPages)
				project.GET("/wiki/:slug", wikiHandler.GetPageBySlug)
				project.PUT("/wiki/:slug", wikiHandler.UpdatePage)
				project.DELETE("/wiki/:slug", wikiHandler.DeletePage)
				project.POST("/wiki-links", wikiHandler.CreateLink)
				project.GET("/wiki-links", wikiHandler.ListLinks)
				project.DELETE("/wiki-links/:linkId", wikiHandler.DeleteLink)

				// 附件
				project.POST("/attachments", attachmentHandler.Create)
				project.GET("/attachments", attachmentHandler.List)
				project.PUT("/attachments/:attachmentId", attachmentHandler.Update)
				project.DELETE("/attachments/:attachmentId", attachmentHandler.Delete)
			}
		}
	}

	return r
}

// registerTaxonomyRoutes 按配置类型注册一组配置项路由
func registerTaxonomyRoutes(g *gin.RouterGroup, h *handler.TaxonomyHandler, path, kind string) {
	g.GET("/"+path, h.List(kind))
	g.POST("/"+path, h.Create(kind))
	g.PUT("/"+path+"/:rowId", h.Update(kind))
	g.POST("/"+path+"/:rowId/default", h.SetDefault(kind))
	g.DELETE("/"+path+"/:rowId", h.Delete(kind))
}
