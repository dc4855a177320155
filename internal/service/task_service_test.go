package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pm/internal/dto"
	"agile-pm/pkg/constants"
)

func TestTaskClosureMirror(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	closedStatus := env.taxonomyByName(t, project.ID, constants.KindTaskStatus, "Closed")

	task, err := env.tasks.Create(project.ID, owner.ID, &dto.CreateTaskRequest{Subject: "t"})
	require.NoError(t, err)
	assert.False(t, task.IsClosed)

	updated, err := env.tasks.Update(project.ID, task.ID, &dto.UpdateTaskRequest{
		Version:  task.Version,
		StatusID: &closedStatus.ID,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsClosed)
}

func TestStoryClosesWhenStatusAndTasksClosed(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	doneStory := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Done")
	openTask := env.taxonomyByName(t, project.ID, constants.KindTaskStatus, "In progress")
	closedTask := env.taxonomyByName(t, project.ID, constants.KindTaskStatus, "Closed")

	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject:  "s",
		StatusID: &doneStory.ID,
	})
	require.NoError(t, err)
	// 没有任务时, 闭合只看状态
	assert.True(t, story.IsClosed)

	task, err := env.tasks.Create(project.ID, owner.ID, &dto.CreateTaskRequest{
		Subject:     "t",
		StatusID:    &openTask.ID,
		UserStoryID: &story.ID,
	})
	require.NoError(t, err)

	// 挂上一个未闭合任务, 故事重新打开
	reopened, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	assert.False(t, reopened.IsClosed)

	// 最后一个任务闭合, 故事随之闭合
	_, err = env.tasks.Update(project.ID, task.ID, &dto.UpdateTaskRequest{
		Version:  task.Version,
		StatusID: &closedTask.ID,
	})
	require.NoError(t, err)

	closed, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	assert.True(t, closed.IsClosed)
}

func TestStoryReopensOnTaskDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	openStory := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Ready")
	openTask := env.taxonomyByName(t, project.ID, constants.KindTaskStatus, "In progress")

	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject:  "s",
		StatusID: &openStory.ID,
	})
	require.NoError(t, err)

	task, err := env.tasks.Create(project.ID, owner.ID, &dto.CreateTaskRequest{
		Subject:     "t",
		StatusID:    &openTask.ID,
		UserStoryID: &story.ID,
	})
	require.NoError(t, err)

	// 故事状态未闭合, 删除开任务不改变闭合态
	require.NoError(t, env.tasks.Delete(project.ID, task.ID))

	fresh, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	assert.False(t, fresh.IsClosed)
}

func TestTaskDetachFromStory(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	doneStory := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Done")
	openTask := env.taxonomyByName(t, project.ID, constants.KindTaskStatus, "In progress")

	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject:  "s",
		StatusID: &doneStory.ID,
	})
	require.NoError(t, err)

	task, err := env.tasks.Create(project.ID, owner.ID, &dto.CreateTaskRequest{
		Subject:     "t",
		StatusID:    &openTask.ID,
		UserStoryID: &story.ID,
	})
	require.NoError(t, err)

	opened, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	assert.False(t, opened.IsClosed)

	// 任务从故事上摘下(user_story_id=0), 故事重新只看自身状态
	detached, err := env.tasks.Update(project.ID, task.ID, &dto.UpdateTaskRequest{
		Version:     task.Version,
		UserStoryID: int64Ptr(0),
	})
	require.NoError(t, err)
	assert.Nil(t, detached.UserStoryID)

	fresh, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	assert.True(t, fresh.IsClosed)
}
