package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

func TestEpicLinkUserStories(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	epic, err := env.epics.Create(project.ID, alice.ID, &dto.CreateEpicRequest{Subject: "账号体系"})
	require.NoError(t, err)

	s1, err := env.stories.Create(project.ID, alice.ID, &dto.CreateUserStoryRequest{Subject: "注册"})
	require.NoError(t, err)
	s2, err := env.stories.Create(project.ID, alice.ID, &dto.CreateUserStoryRequest{Subject: "登录"})
	require.NoError(t, err)

	require.NoError(t, env.epics.LinkUserStory(project.ID, epic.ID, &dto.LinkUserStoryRequest{UserStoryID: s1.ID}))
	require.NoError(t, env.epics.LinkUserStory(project.ID, epic.ID, &dto.LinkUserStoryRequest{UserStoryID: s2.ID}))

	// 重复关联
	err = env.epics.LinkUserStory(project.ID, epic.ID, &dto.LinkUserStoryRequest{UserStoryID: s1.ID})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeConflict))

	stories, err := env.epics.ListUserStories(project.ID, epic.ID)
	require.NoError(t, err)
	require.Len(t, stories, 2)
	// 按关联顺序排列
	assert.Equal(t, "注册", stories[0].Subject)
	assert.Equal(t, "登录", stories[1].Subject)

	var links []model.EpicUserStory
	require.NoError(t, env.db.Where("epic_id = ?", epic.ID).Order("`order`").Find(&links).Error)
	require.Len(t, links, 2)
	assert.Less(t, links[0].Order, links[1].Order)

	require.NoError(t, env.epics.UnlinkUserStory(project.ID, epic.ID, s1.ID))
	stories, err = env.epics.ListUserStories(project.ID, epic.ID)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "登录", stories[0].Subject)
}

func TestEpicLinkForeignStoryRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	p1 := env.createProject(t, alice.ID, "Backlog Tool")
	p2 := env.createProject(t, alice.ID, "Other Tool")

	epic, err := env.epics.Create(p1.ID, alice.ID, &dto.CreateEpicRequest{Subject: "账号体系"})
	require.NoError(t, err)
	foreign, err := env.stories.Create(p2.ID, alice.ID, &dto.CreateUserStoryRequest{Subject: "外部故事"})
	require.NoError(t, err)

	err = env.epics.LinkUserStory(p1.ID, epic.ID, &dto.LinkUserStoryRequest{UserStoryID: foreign.ID})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeWrongProject))
}

func TestEpicRefSequenceIndependent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	_, err := env.stories.Create(project.ID, alice.ID, &dto.CreateUserStoryRequest{Subject: "占位"})
	require.NoError(t, err)

	epic, err := env.epics.Create(project.ID, alice.ID, &dto.CreateEpicRequest{Subject: "账号体系"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), epic.Ref)

	second, err := env.epics.Create(project.ID, alice.ID, &dto.CreateEpicRequest{Subject: "支付体系"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Ref)
}
