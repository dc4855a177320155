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

func TestSeedBuiltinIdempotent(t *testing.T) {
	env := newTestEnv(t)

	// newTestEnv 已经seed过一次, 再来两次不产生重复
	require.NoError(t, env.templates.SeedBuiltin())
	require.NoError(t, env.templates.SeedBuiltin())

	templates, err := env.templates.List()
	require.NoError(t, err)
	assert.Len(t, templates, 2)

	slugs := []string{templates[0].Slug, templates[1].Slug}
	assert.ElementsMatch(t, []string{"scrum", "kanban"}, slugs)
}

func TestResolveUnknownTemplate(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.templates.Resolve("ghost")
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeTemplateUnknown))
}

func TestKanbanTemplateCarriesWipLimits(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	project, err := env.projects.Create(owner.ID, &dto.CreateProjectRequest{
		Name:         "Kanban Board",
		TemplateSlug: "kanban",
	})
	require.NoError(t, err)

	ready := env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Ready")
	require.NotNil(t, ready.WipLimit)
	assert.Equal(t, 6, *ready.WipLimit)
}

func TestSnapshotTemplateFromProject(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	source := env.createProject(t, owner.ID, "Backlog Tool")

	// 项目改出自己的风格再抽取
	_, err := env.taxonomies.Create(source.ID, constants.KindUserStoryStatus, &dto.CreateTaxonomyRequest{
		Name:  "Waiting review",
		Order: 45,
	})
	require.NoError(t, err)

	snapshot, err := env.templates.Snapshot(&dto.SnapshotTemplateRequest{
		ProjectID: source.ID,
		Slug:      "team-flavor",
		Name:      "Team Flavor",
	})
	require.NoError(t, err)
	assert.Equal(t, "team-flavor", snapshot.Slug)

	// 新模板能直接用于开项目, 自定义状态随之出现
	project, err := env.projects.Create(owner.ID, &dto.CreateProjectRequest{
		Name:         "Derived",
		TemplateSlug: "team-flavor",
	})
	require.NoError(t, err)

	statuses, err := env.taxonomies.List(project.ID, constants.KindUserStoryStatus)
	require.NoError(t, err)
	assert.Len(t, statuses, 7)
	env.taxonomyByName(t, project.ID, constants.KindUserStoryStatus, "Waiting review")
}

func TestSnapshotSlugConflict(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	source := env.createProject(t, owner.ID, "Backlog Tool")

	_, err := env.templates.Snapshot(&dto.SnapshotTemplateRequest{
		ProjectID: source.ID,
		Slug:      "scrum", // 与内置模板撞slug
		Name:      "Scrum again",
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeConflict))
}

func TestApplyTemplateFailureRollsBackProject(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	// 默认项指向不存在的状态行, 套用时在建完目录行之后才会失败
	broken := &model.ProjectTemplate{
		Slug:             "broken",
		Name:             "Broken",
		DefaultOwnerRole: "product-owner",
	}
	def := &model.TemplateDefinition{
		UsStatuses:     []model.TemplateStatus{{Name: "New", Order: 1}},
		DefaultOptions: map[string]string{constants.DefaultOptionUsStatus: "Ghost"},
	}
	require.NoError(t, broken.Encode(def))
	require.NoError(t, env.db.Create(broken).Error)

	var before int64
	require.NoError(t, env.db.Model(&model.UserStoryStatus{}).Count(&before).Error)

	_, err := env.projects.Create(owner.ID, &dto.CreateProjectRequest{
		Name:         "Doomed",
		TemplateSlug: "broken",
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeValidationError))

	// 项目行与已写入的目录行一并回滚
	_, err = env.projectRepo.FindByName("Doomed")
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeNotFound))

	var after int64
	require.NoError(t, env.db.Model(&model.UserStoryStatus{}).Count(&after).Error)
	assert.Equal(t, before, after)
}
