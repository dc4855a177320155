package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pm/internal/dto"
	pkgErrors "agile-pm/pkg/errors"
)

func TestMilestoneCreateAndCounter(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	sprint, err := env.milestones.Create(project.ID, alice.ID, &dto.CreateMilestoneRequest{Name: "Sprint 1"})
	require.NoError(t, err)
	assert.Equal(t, "sprint-1", sprint.Slug)

	reloaded := env.reloadProject(t, project.ID)
	assert.Equal(t, 1, reloaded.TotalMilestones)

	// 同名冲突, slug冲突时追加序号
	_, err = env.milestones.Create(project.ID, alice.ID, &dto.CreateMilestoneRequest{Name: "Sprint 1"})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeConflict))

	second, err := env.milestones.Create(project.ID, alice.ID, &dto.CreateMilestoneRequest{Name: "Sprint 1!"})
	require.NoError(t, err)
	assert.Equal(t, "sprint-1-1", second.Slug)
}

func TestMilestoneDeleteDetachesItems(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	sprint, err := env.milestones.Create(project.ID, alice.ID, &dto.CreateMilestoneRequest{Name: "Sprint 1"})
	require.NoError(t, err)

	story, err := env.stories.Create(project.ID, alice.ID, &dto.CreateUserStoryRequest{
		Subject:     "登录页",
		MilestoneID: &sprint.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, story.MilestoneID)

	require.NoError(t, env.milestones.Delete(project.ID, sprint.ID))

	detached, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	assert.Nil(t, detached.MilestoneID)

	reloaded := env.reloadProject(t, project.ID)
	assert.Equal(t, 0, reloaded.TotalMilestones)
}

func TestMilestoneWrongProject(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	p1 := env.createProject(t, alice.ID, "Backlog Tool")
	p2 := env.createProject(t, alice.ID, "Other Tool")

	sprint, err := env.milestones.Create(p1.ID, alice.ID, &dto.CreateMilestoneRequest{Name: "Sprint 1"})
	require.NoError(t, err)

	_, err = env.milestones.Get(p2.ID, sprint.ID)
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeWrongProject))
}
