package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"agile-pm/internal/core"
	"agile-pm/internal/dto"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

func TestTaxonomyCreateNameConflict(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	_, err := env.taxonomies.Create(project.ID, constants.KindUserStoryStatus, &dto.CreateTaxonomyRequest{
		Name: "New", // scrum模板已有同名行
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeConflict))

	// 另一个类型下同名不冲突
	_, err = env.taxonomies.Create(project.ID, constants.KindPriority, &dto.CreateTaxonomyRequest{
		Name: "New",
	})
	require.NoError(t, err)
}

func TestTaxonomyDeleteWithoutReferrers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	row := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Archived")

	// 无引用方时不需要替换行
	require.NoError(t, env.taxonomies.Delete(project.ID, constants.KindUserStoryStatus, row.ID, 0))

	rows, err := env.taxonomies.List(project.ID, constants.KindUserStoryStatus)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestTaxonomyDeleteMovesReferrers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	from := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Ready")
	to := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "In progress")

	var refs []int64
	for _, subject := range []string{"s1", "s2", "s3"} {
		story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
			Subject:  subject,
			StatusID: &from.ID,
		})
		require.NoError(t, err)
		refs = append(refs, story.Ref)
	}

	// 批量迁移只发一次事件, 携带迁移数量
	var moveEvents int
	env.bus.SubscribeSync(core.EventMoveOnDestroy, func(tx *gorm.DB, e core.Event) error {
		moveEvents++
		assert.Equal(t, int64(3), e.(core.MoveOnDestroyEvent).MovedCount)
		return nil
	})

	require.NoError(t, env.taxonomies.Delete(project.ID, constants.KindUserStoryStatus, from.ID, to.ID))
	assert.Equal(t, 1, moveEvents)

	for _, ref := range refs {
		story, err := env.stories.GetByRef(project.ID, ref)
		require.NoError(t, err)
		require.NotNil(t, story.StatusID)
		assert.Equal(t, to.ID, *story.StatusID)
	}
}

func TestTaxonomyDeleteRequiresReplacement(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")
	other := env.createProject(t, owner.ID, "Other Tool")

	row := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Ready")
	created, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject:  "story",
		StatusID: &row.ID,
	})
	require.NoError(t, err)

	// 有引用方但未指定替换行
	err = env.taxonomies.Delete(project.ID, constants.KindUserStoryStatus, row.ID, 0)
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeBadReplacement))

	// 替换行是自己
	err = env.taxonomies.Delete(project.ID, constants.KindUserStoryStatus, row.ID, row.ID)
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeBadReplacement))

	// 替换行属于别的项目
	foreign := env.taxonomyByName(t, other.ID, constants.KindUserStoryStatus, "Done")
	err = env.taxonomies.Delete(project.ID, constants.KindUserStoryStatus, row.ID, foreign.ID)
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeBadReplacement))

	// 失败是原子的: 引用原地不动
	story, err := env.stories.GetByRef(project.ID, created.Ref)
	require.NoError(t, err)
	require.NotNil(t, story.StatusID)
	assert.Equal(t, row.ID, *story.StatusID)
}

func TestTaxonomyDeleteClearsDefaultPointer(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	require.NotNil(t, project.DefaultUsStatusID)
	defaultID := *project.DefaultUsStatusID

	require.NoError(t, env.taxonomies.Delete(project.ID, constants.KindUserStoryStatus, defaultID, 0))

	fresh := env.reloadProject(t, project.ID)
	assert.Nil(t, fresh.DefaultUsStatusID)
}

func TestTaxonomySetDefault(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	row := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Done")
	require.NoError(t, env.taxonomies.SetDefault(project.ID, constants.KindUserStoryStatus, row.ID))

	fresh := env.reloadProject(t, project.ID)
	require.NotNil(t, fresh.DefaultUsStatusID)
	assert.Equal(t, row.ID, *fresh.DefaultUsStatusID)
}

func TestTaxonomyClosedFlipPropagates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	status := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Ready")
	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject:  "story",
		StatusID: &status.ID,
	})
	require.NoError(t, err)
	assert.False(t, story.IsClosed)

	// 状态翻为closed, 挂在其上的故事随之闭合
	_, err = env.taxonomies.Update(project.ID, constants.KindUserStoryStatus, status.ID, &dto.UpdateTaxonomyRequest{
		IsClosed: boolPtr(true),
	})
	require.NoError(t, err)

	closed, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	assert.True(t, closed.IsClosed)

	// 翻回去重新打开
	_, err = env.taxonomies.Update(project.ID, constants.KindUserStoryStatus, status.ID, &dto.UpdateTaxonomyRequest{
		IsClosed: boolPtr(false),
	})
	require.NoError(t, err)

	reopened, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	assert.False(t, reopened.IsClosed)
}

func TestTaxonomyDeleteRecomputesClosure(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	open := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Ready")
	closed := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Done")

	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{
		Subject:  "story",
		StatusID: &open.ID,
	})
	require.NoError(t, err)
	assert.False(t, story.IsClosed)

	// 删除打开态并迁移到closed态: 迁移后的故事重新判定为闭合
	require.NoError(t, env.taxonomies.Delete(project.ID, constants.KindUserStoryStatus, open.ID, closed.ID))

	moved, err := env.stories.GetByRef(project.ID, story.Ref)
	require.NoError(t, err)
	require.NotNil(t, moved.StatusID)
	assert.Equal(t, closed.ID, *moved.StatusID)
	assert.True(t, moved.IsClosed)
}

func TestRoleRenameKeepsSlug(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	role := env.taxonomyByName(t, project.ID, constants.KindRole, "Back")
	renamed, err := env.taxonomies.Update(project.ID, constants.KindRole, role.ID, &dto.UpdateTaxonomyRequest{
		Name: strPtr("Backend"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend", renamed.Name)
	assert.Equal(t, role.Slug, renamed.Slug)
}
