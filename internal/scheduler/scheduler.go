package scheduler

import (
	"agile-pm/internal/core"
	"agile-pm/internal/pkg/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	engine        *core.DeletionEngine
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
}

// NewScheduler 创建调度器
func NewScheduler(engine *core.DeletionEngine, logger *zap.Logger) *Scheduler {
	// 创建 cron 实例（带秒级支持）
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:          c,
		logger:        logger,
		engine:        engine,
		cronSchedules: make(map[string]cron.EntryID),
	}
}

// Start 启动调度器
func (s *Scheduler) Start(cfg *config.Config) error {
	log := s.logger.Sugar()

	log.Info("启动定时任务调度器...")

	// 删除引擎本身按 scan_interval 轮询, 这里的 cron 任务是兜底:
	// 引擎曾异常退出或单次级联失败时, 标记中的项目由它再扫一遍
	// cron 表达式格式: 秒 分 时 日 月 周
	cronExpr := cfg.Projects.SweepCron
	if cronExpr == "" {
		cronExpr = "0 0 3 * * *" // 默认: 每天凌晨3点
		log.Warn("未配置projects.sweep_cron，使用默认值", zap.String("cron", cronExpr))
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		log.Info("执行定时任务: 待删除项目兜底清理")
		s.engine.ScanDeleting()
	})

	if err != nil {
		log.Errorf("注册兜底清理任务: %v 失败: %v", cronExpr, err)
		return err
	}

	s.cronSchedules["deletion_sweep"] = entryID
	log.Infof("兜底清理任务已注册: %s entry_id=%d", cronExpr, entryID)

	// 启动 cron
	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// TriggerSweep 手动触发一次兜底清理（用于测试或手动触发）
func (s *Scheduler) TriggerSweep() {
	s.logger.Info("手动触发待删除项目清理")
	s.engine.ScanDeleting()
}
