package core

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

// ClosureEvaluator 用户故事关闭状态求值器。
// 故事关闭 = 故事状态为关闭态 且 其下所有任务均关闭; 无任务时只看故事状态。
type ClosureEvaluator struct {
	bus    *Bus
	logger *zap.Logger
}

// NewClosureEvaluator 创建求值器
func NewClosureEvaluator(bus *Bus, logger *zap.Logger) *ClosureEvaluator {
	return &ClosureEvaluator{bus: bus, logger: logger}
}

// Recompute 重算单个故事的关闭状态, 发生翻转时落库并发布事件。
// 幂等: 状态未变化时不写库。
func (c *ClosureEvaluator) Recompute(tx *gorm.DB, story *model.UserStory) error {
	closed, err := c.evaluate(tx, story)
	if err != nil {
		return err
	}
	if closed == story.IsClosed {
		return nil
	}

	err = tx.Model(&model.UserStory{}).Where("id = ?", story.ID).
		Update("is_closed", closed).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新故事关闭状态失败", err)
	}
	story.IsClosed = closed

	c.logger.Info(fmt.Sprintf("[Closure] 故事关闭状态翻转: #%d -> %v", story.Ref, closed),
		zap.Int64("project_id", story.ProjectID),
		zap.Int64("user_story_id", story.ID))

	return c.bus.PublishSync(tx, ClosureChangedEvent{UserStory: story, IsClosed: closed})
}

// RecomputeByIDs 批量重算, 用于任务状态迁移后的回填
func (c *ClosureEvaluator) RecomputeByIDs(tx *gorm.DB, storyIDs []int64) error {
	if len(storyIDs) == 0 {
		return nil
	}

	var stories []model.UserStory
	if err := tx.Where("id IN ?", storyIDs).Find(&stories).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户故事失败", err)
	}
	for i := range stories {
		if err := c.Recompute(tx, &stories[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *ClosureEvaluator) evaluate(tx *gorm.DB, story *model.UserStory) (bool, error) {
	if story.StatusID == nil {
		return false, nil
	}

	var status model.UserStoryStatus
	if err := tx.First(&status, *story.StatusID).Error; err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询故事状态失败", err)
	}
	if !status.IsClosed {
		return false, nil
	}

	var openTasks int64
	err := tx.Model(&model.Task{}).
		Where("user_story_id = ? AND is_closed = ?", story.ID, false).
		Count(&openTasks).Error
	if err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计未关闭任务失败", err)
	}

	return openTasks == 0, nil
}
