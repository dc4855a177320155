package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

func TestReferenceAllocation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")
	other := env.createProject(t, owner.ID, "Other Tool")

	// 同项目同类型编号连续递增
	for i := int64(1); i <= 3; i++ {
		story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{Subject: "s"})
		require.NoError(t, err)
		assert.Equal(t, i, story.Ref)
	}

	// 各类型的序列互相独立
	issue, err := env.issues.Create(project.ID, owner.ID, &dto.CreateIssueRequest{Subject: "i"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, issue.Ref)

	task, err := env.tasks.Create(project.ID, owner.ID, &dto.CreateTaskRequest{Subject: "t"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, task.Ref)

	// 各项目的序列互相独立
	foreign, err := env.stories.Create(other.ID, owner.ID, &dto.CreateUserStoryRequest{Subject: "s"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, foreign.Ref)

	// 删除不回收编号
	last, err := env.stories.GetByRef(project.ID, 3)
	require.NoError(t, err)
	require.NoError(t, env.stories.Delete(project.ID, last.ID))

	next, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{Subject: "s"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, next.Ref)
}

func TestUserStoryDefaultStatus(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{Subject: "s"})
	require.NoError(t, err)
	require.NotNil(t, story.StatusID)
	assert.Equal(t, *project.DefaultUsStatusID, *story.StatusID)
}

func TestUserStoryStaleWrite(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{Subject: "s"})
	require.NoError(t, err)

	updated, err := env.stories.Update(project.ID, story.ID, &dto.UpdateUserStoryRequest{
		Version: story.Version,
		Subject: strPtr("renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, story.Version+1, updated.Version)

	// 拿旧version再写
	_, err = env.stories.Update(project.ID, story.ID, &dto.UpdateUserStoryRequest{
		Version: story.Version,
		Subject: strPtr("conflict"),
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeStaleWrite))

	// 失败的写不落库
	fresh, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	assert.Equal(t, "renamed", fresh.Subject)
}

func TestUserStoryWrongProjectStatus(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")
	other := env.createProject(t, owner.ID, "Other Tool")

	foreign := env.taxonomyByName(t, other.ID, constants.KindUserStoryStatus, "Done")
	_, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject:  "s",
		StatusID: &foreign.ID,
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeWrongProject))
}

func TestRolePointsAggregation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	ux := env.taxonomyByName(t, project.ID, constants.KindRole, "UX")
	back := env.taxonomyByName(t, project.ID, constants.KindRole, "Back")
	po := env.taxonomyByName(t, project.ID, constants.KindRole, "Product Owner")
	p8 := env.taxonomyByName(t, project.ID, constants.KindPoints, "8")
	p5 := env.taxonomyByName(t, project.ID, constants.KindPoints, "5")
	unknown := env.taxonomyByName(t, project.ID, constants.KindPoints, "?")

	// 不可计点角色不能估点
	_, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject:    "s",
		RolePoints: map[int64]int64{po.ID: p8.ID},
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeValidationError))

	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject: "s",
		RolePoints: map[int64]int64{
			ux.ID:   p8.ID,
			back.ID: p5.ID,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, story.TotalPoints)
	assert.InDelta(t, 13, *story.TotalPoints, 0.001)

	// 项目级汇总缓存同步
	fresh := env.reloadProject(t, project.ID)
	assert.InDelta(t, 13, fresh.TotalStoryPoints, 0.001)

	// 估点改为未定("?")后退出合计
	updated, err := env.stories.Update(project.ID, story.ID, &dto.UpdateUserStoryRequest{
		Version:    story.Version,
		RolePoints: map[int64]int64{ux.ID: unknown.ID, back.ID: p5.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.TotalPoints)
	assert.InDelta(t, 5, *updated.TotalPoints, 0.001)

	fresh = env.reloadProject(t, project.ID)
	assert.InDelta(t, 5, fresh.TotalStoryPoints, 0.001)
}

func TestUserStoryDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject: "s",
		Tags:    []string{"infra"},
	})
	require.NoError(t, err)

	_, err = env.tasks.Create(project.ID, owner.ID, &dto.CreateTaskRequest{
		Subject:     "t",
		UserStoryID: &story.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.stories.Delete(project.ID, story.ID))

	var taskCount int64
	require.NoError(t, env.db.Model(&model.Task{}).
		Where("user_story_id = ?", story.ID).Count(&taskCount).Error)
	assert.Zero(t, taskCount)

	// 标签登记表随最后一个使用者消失而回收
	fresh := env.reloadProject(t, project.ID)
	assert.Empty(t, fresh.TagsColors)
}

func TestTagRegistryAccumulates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	_, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject: "s",
		Tags:    []string{"Infra", " infra ", "API"},
	})
	require.NoError(t, err)

	fresh := env.reloadProject(t, project.ID)
	tags := make([]string, 0, len(fresh.TagsColors))
	for _, tc := range fresh.TagsColors {
		tags = append(tags, tc.Tag)
	}
	// 规范化去重后登记
	assert.ElementsMatch(t, []string{"infra", "api"}, tags)
}
