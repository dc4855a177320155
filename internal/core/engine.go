package core

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"agile-pm/internal/model"
	"agile-pm/pkg/constants"
)

// DeletionEngine 项目删除引擎。
// 删除是两阶段的: 请求方事务只把项目标记为 BlockedByDeleting,
// 引擎异步扫描标记项目并逐个在独立事务中级联清理。
type DeletionEngine struct {
	db     *gorm.DB
	bus    *Bus
	logger *zap.Logger

	running  bool
	stopChan chan struct{}
}

// NewDeletionEngine 创建删除引擎
func NewDeletionEngine(db *gorm.DB, bus *Bus, logger *zap.Logger) *DeletionEngine {
	return &DeletionEngine{
		db:       db,
		bus:      bus,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start 启动删除引擎
func (e *DeletionEngine) Start(scanInterval time.Duration) {
	if e.running {
		e.logger.Warn("删除引擎已在运行中")
		return
	}

	e.running = true
	e.logger.Info("DeletionEngine starting...", zap.Duration("scan_interval", scanInterval))

	go e.run(scanInterval)
}

// Stop 停止删除引擎
func (e *DeletionEngine) Stop() {
	if !e.running {
		return
	}

	e.logger.Info("正在停止删除引擎...")
	close(e.stopChan)
	e.running = false
	e.logger.Info("删除引擎已停止")
}

func (e *DeletionEngine) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.ScanDeleting()
		case <-e.stopChan:
			return
		}
	}
}

// ScanDeleting 扫描待删除项目并逐个清理, 单个项目失败不影响其他项目
func (e *DeletionEngine) ScanDeleting() {
	var projects []model.Project
	err := e.db.Where("blocked_code = ?", constants.BlockedByDeleting).
		Order("id ASC").Limit(20).Find(&projects).Error
	if err != nil {
		e.logger.Error(fmt.Sprintf("[DeletionEngine] 查询待删除项目失败: %v", err))
		return
	}
	if len(projects) == 0 {
		return
	}

	ids := lo.Map(projects, func(p model.Project, _ int) int64 { return p.ID })
	e.logger.Debug(fmt.Sprintf("[DeletionEngine] 待删除项目 %v个: %v", len(projects), ids))

	for i := range projects {
		if err := e.CascadeDelete(&projects[i]); err != nil {
			e.logger.Error("级联删除项目失败",
				zap.Int64("project_id", projects[i].ID),
				zap.String("slug", projects[i].Slug),
				zap.Error(err))
		}
	}
}

// CascadeDelete 在独立事务中级联删除单个项目的全部数据。
// 删除顺序从叶到根, 任一步失败整体回滚, 项目保持标记态等待下次扫描。
func (e *DeletionEngine) CascadeDelete(project *model.Project) error {
	err := e.db.Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name  string
			apply func(tx *gorm.DB) error
		}{
			{"attachments", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.Attachment{}).Error
			}},
			{"wiki_links", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.WikiLink{}).Error
			}},
			{"wiki_pages", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.WikiPage{}).Error
			}},
			{"role_points", func(tx *gorm.DB) error {
				sub := tx.Model(&model.UserStory{}).Select("id").Where("project_id = ?", project.ID)
				return tx.Where("user_story_id IN (?)", sub).Delete(&model.RolePoints{}).Error
			}},
			{"epic_links", func(tx *gorm.DB) error {
				sub := tx.Model(&model.Epic{}).Select("id").Where("project_id = ?", project.ID)
				return tx.Where("epic_id IN (?)", sub).Delete(&model.EpicUserStory{}).Error
			}},
			{"tasks", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.Task{}).Error
			}},
			{"issues", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.Issue{}).Error
			}},
			{"epics", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.Epic{}).Error
			}},
			{"userstories", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.UserStory{}).Error
			}},
			{"milestones", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.Milestone{}).Error
			}},
			{"memberships", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.Membership{}).Error
			}},
			{"references", func(tx *gorm.DB) error {
				return tx.Where("project_id = ?", project.ID).Delete(&model.Reference{}).Error
			}},
		}

		for _, step := range steps {
			if err := step.apply(tx); err != nil {
				return fmt.Errorf("清理%s失败: %w", step.name, err)
			}
		}

		// 清空默认指针, 避免配置行删除时触发外键约束
		clearDefaults := map[string]interface{}{
			"default_us_status_id":    nil,
			"default_task_status_id":  nil,
			"default_issue_status_id": nil,
			"default_issue_type_id":   nil,
			"default_priority_id":     nil,
			"default_severity_id":     nil,
			"default_points_id":       nil,
		}
		if err := tx.Model(&model.Project{}).Where("id = ?", project.ID).
			Updates(clearDefaults).Error; err != nil {
			return fmt.Errorf("清空默认指针失败: %w", err)
		}

		taxonomies := []interface{}{
			&model.UserStoryStatus{}, &model.TaskStatus{}, &model.IssueStatus{},
			&model.IssueType{}, &model.Priority{}, &model.Severity{},
			&model.Points{}, &model.Role{},
		}
		for _, m := range taxonomies {
			if err := tx.Where("project_id = ?", project.ID).Delete(m).Error; err != nil {
				return fmt.Errorf("清理项目配置失败: %w", err)
			}
		}

		return tx.Delete(&model.Project{}, project.ID).Error
	})
	if err != nil {
		return err
	}

	e.logger.Info("项目已级联删除",
		zap.Int64("project_id", project.ID),
		zap.String("slug", project.Slug))

	e.bus.PublishAsync(ProjectDeletedEvent{ProjectID: project.ID, Slug: project.Slug})
	return nil
}
