package core

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"agile-pm/internal/model"
)

// EventKind 领域事件类型
type EventKind string

const (
	EventProjectPostSave    EventKind = "project.post_save"
	EventMembershipPostSave EventKind = "membership.post_save"
	EventMembershipDeleted  EventKind = "membership.deleted"
	EventMoveOnDestroy      EventKind = "taxonomy.move_on_destroy"
	EventClosureChanged     EventKind = "userstory.closure_changed"
	EventProjectDeleted     EventKind = "project.deleted"
)

// Event 领域事件
type Event interface {
	Kind() EventKind
}

// ProjectPostSaveEvent 项目创建/更新后触发
type ProjectPostSaveEvent struct {
	Project *model.Project
	Created bool
}

func (ProjectPostSaveEvent) Kind() EventKind { return EventProjectPostSave }

// MembershipPostSaveEvent 成员新增/更新后触发
type MembershipPostSaveEvent struct {
	Membership *model.Membership
	Created    bool
}

func (MembershipPostSaveEvent) Kind() EventKind { return EventMembershipPostSave }

// MembershipDeletedEvent 成员移除后触发
type MembershipDeletedEvent struct {
	Membership *model.Membership
}

func (MembershipDeletedEvent) Kind() EventKind { return EventMembershipDeleted }

// MoveOnDestroyEvent 配置项销毁并迁移引用后触发
type MoveOnDestroyEvent struct {
	TaxonomyKind string
	Deleted      *model.CatalogRow
	MovedTo      *model.CatalogRow
	MovedCount   int64
}

func (MoveOnDestroyEvent) Kind() EventKind { return EventMoveOnDestroy }

// ClosureChangedEvent 用户故事关闭状态翻转后触发
type ClosureChangedEvent struct {
	UserStory *model.UserStory
	IsClosed  bool
}

func (ClosureChangedEvent) Kind() EventKind { return EventClosureChanged }

// ProjectDeletedEvent 项目级联删除完成后触发
type ProjectDeletedEvent struct {
	ProjectID int64
	Slug      string
}

func (ProjectDeletedEvent) Kind() EventKind { return EventProjectDeleted }

// SyncHandler 事务内处理器, 返回错误将使整个事务回滚
type SyncHandler func(tx *gorm.DB, e Event) error

// AsyncHandler 事务提交后在独立goroutine中执行的处理器
type AsyncHandler func(e Event)

// Bus 领域事件总线
// 同步订阅在发起方的事务内按注册顺序执行; 异步订阅在事务提交后投递,
// panic 只记录日志, 不影响其他订阅者。
type Bus struct {
	mu    sync.RWMutex
	sync  map[EventKind][]SyncHandler
	async map[EventKind][]AsyncHandler

	logger *zap.Logger
}

// NewBus 创建事件总线
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		sync:   make(map[EventKind][]SyncHandler),
		async:  make(map[EventKind][]AsyncHandler),
		logger: logger,
	}
}

// SubscribeSync 注册事务内处理器
func (b *Bus) SubscribeSync(kind EventKind, handler SyncHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sync[kind] = append(b.sync[kind], handler)
}

// SubscribeAsync 注册事务后处理器
func (b *Bus) SubscribeAsync(kind EventKind, handler AsyncHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.async[kind] = append(b.async[kind], handler)
}

// PublishSync 在事务内发布事件, 第一个失败的处理器中断发布
func (b *Bus) PublishSync(tx *gorm.DB, e Event) error {
	b.mu.RLock()
	handlers := b.sync[e.Kind()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(tx, e); err != nil {
			return err
		}
	}
	return nil
}

// PublishAsync 发布事务后事件, 调用方应在事务提交成功后调用
func (b *Bus) PublishAsync(e Event) {
	b.mu.RLock()
	handlers := b.async[e.Kind()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		h := handler
		go func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error(fmt.Sprintf("[EventBus] 异步处理器panic: %v", r),
						zap.String("event", string(e.Kind())))
				}
			}()
			h(e)
		}()
	}
}
