package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"agile-pm/internal/model"
)

func TestPublishSyncRunsInOrder(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls []string
	bus.SubscribeSync(EventProjectPostSave, func(tx *gorm.DB, e Event) error {
		calls = append(calls, "first")
		return nil
	})
	bus.SubscribeSync(EventProjectPostSave, func(tx *gorm.DB, e Event) error {
		calls = append(calls, "second")
		return nil
	})

	err := bus.PublishSync(nil, ProjectPostSaveEvent{Project: &model.Project{}, Created: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishSyncStopsOnError(t *testing.T) {
	bus := NewBus(zap.NewNop())

	boom := errors.New("handler failed")
	var reached bool
	bus.SubscribeSync(EventClosureChanged, func(tx *gorm.DB, e Event) error {
		return boom
	})
	bus.SubscribeSync(EventClosureChanged, func(tx *gorm.DB, e Event) error {
		reached = true
		return nil
	})

	err := bus.PublishSync(nil, ClosureChangedEvent{UserStory: &model.UserStory{}, IsClosed: true})
	require.ErrorIs(t, err, boom)
	assert.False(t, reached)
}

func TestPublishAsyncDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	var got []int64

	record := func(e Event) {
		defer wg.Done()
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.(ProjectDeletedEvent).ProjectID)
	}
	bus.SubscribeAsync(EventProjectDeleted, record)
	bus.SubscribeAsync(EventProjectDeleted, record)

	bus.PublishAsync(ProjectDeletedEvent{ProjectID: 42, Slug: "backlog-tool"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("异步订阅者未在超时内收到事件")
	}
	assert.Equal(t, []int64{42, 42}, got)
}

func TestPublishAsyncRecoversPanic(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	bus.SubscribeAsync(EventMembershipDeleted, func(e Event) {
		defer wg.Done()
		panic("订阅者崩溃")
	})
	bus.SubscribeAsync(EventMembershipDeleted, func(e Event) {})

	// panic被recover吞掉, 不会冒泡到测试goroutine
	bus.PublishAsync(MembershipDeletedEvent{Membership: &model.Membership{}})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("异步订阅者未执行")
	}
}
