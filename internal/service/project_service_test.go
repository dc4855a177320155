package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/pkg/config"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

func TestCreateProjectAppliesTemplate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	project := env.createProject(t, owner.ID, "Backlog Tool")

	assert.Equal(t, "backlog-tool", project.Slug)
	assert.NotNil(t, project.OwnerID)
	assert.Equal(t, owner.ID, *project.OwnerID)

	// scrum模板的配置集落库, 默认指针指向各类第一行
	statuses, err := env.taxonomies.List(project.ID, constants.KindUserStoryStatus)
	require.NoError(t, err)
	assert.Len(t, statuses, 6)
	require.NotNil(t, project.DefaultUsStatusID)
	assert.Equal(t, statuses[0].ID, *project.DefaultUsStatusID)
	assert.True(t, statuses[0].IsDefault)

	require.NotNil(t, project.DefaultTaskStatusID)
	require.NotNil(t, project.DefaultIssueStatusID)
	require.NotNil(t, project.DefaultPointsID)

	// 所有者作为管理员成员入组, 角色取模板的product-owner
	var membership model.Membership
	require.NoError(t, env.db.Preload("Role").
		Where("project_id = ? AND user_id = ?", project.ID, owner.ID).
		First(&membership).Error)
	assert.True(t, membership.IsAdmin)
	require.NotNil(t, membership.Role)
	assert.Equal(t, "product-owner", membership.Role.Slug)
}

func TestCreateProjectNameConflict(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	env.createProject(t, owner.ID, "Backlog Tool")

	_, err := env.projects.Create(owner.ID, &dto.CreateProjectRequest{Name: "Backlog Tool"})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeConflict))
}

func TestCreateProjectSlugDisambiguation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	first := env.createProject(t, owner.ID, "Atlas")
	second := env.createProject(t, owner.ID, "Atlas!") // 标点去掉后slug同名

	assert.Equal(t, "atlas", first.Slug)
	assert.Equal(t, "atlas-1", second.Slug)
}

func TestCreateProjectUnknownTemplate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	_, err := env.projects.Create(owner.ID, &dto.CreateProjectRequest{
		Name:         "Backlog Tool",
		TemplateSlug: "nonexistent",
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeTemplateUnknown))
}

func TestProjectDeleteTwoPhase(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	story, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{Subject: "story"})
	require.NoError(t, err)
	_, err = env.tasks.Create(project.ID, owner.ID, &dto.CreateTaskRequest{
		Subject:     "task",
		UserStoryID: &story.ID,
	})
	require.NoError(t, err)

	// 第一阶段: 标记+孤立, 数据原地保留
	require.NoError(t, env.projects.Delete(project.ID))

	marked := env.reloadProject(t, project.ID)
	assert.Equal(t, constants.BlockedByDeleting, marked.BlockedCode)
	assert.Nil(t, marked.OwnerID)

	var storyCount int64
	require.NoError(t, env.db.Model(&model.UserStory{}).Where("project_id = ?", project.ID).Count(&storyCount).Error)
	assert.EqualValues(t, 1, storyCount)

	// 标记后项目只读
	_, err = env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{Subject: "late"})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeBlocked))

	// 重复删除是幂等的
	require.NoError(t, env.projects.Delete(project.ID))

	// 第二阶段: 引擎级联清理
	env.engine.ScanDeleting()

	_, err = env.projectRepo.FindByID(project.ID)
	require.Error(t, err)

	for table, m := range map[string]interface{}{
		"userstories": &model.UserStory{},
		"tasks":       &model.Task{},
		"memberships": &model.Membership{},
		"references":  &model.Reference{},
		"us_statuses": &model.UserStoryStatus{},
		"roles":       &model.Role{},
	} {
		var count int64
		require.NoError(t, env.db.Model(m).Where("project_id = ?", project.ID).Count(&count).Error)
		assert.Zerof(t, count, "%s 应已被清理", table)
	}
}

func TestProjectPrivacyFlipQuota(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	// 已有一个私有项目占满额度
	private := true
	_, err := env.projects.Create(owner.ID, &dto.CreateProjectRequest{Name: "P1", IsPrivate: &private})
	require.NoError(t, err)
	public := env.createProject(t, owner.ID, "P2")

	config.GlobalConfig.Limits.MaxPrivateProjects = intPtr(1)

	_, err = env.projects.Update(public.ID, &dto.UpdateProjectRequest{IsPrivate: boolPtr(true)})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeQuotaExceeded))
}

func TestProjectOwnershipTransfer(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	// 非成员不能接手
	_, err := env.projects.Update(project.ID, &dto.UpdateProjectRequest{OwnerID: &bob.ID})
	require.Error(t, err)

	role := env.taxonomyByName(t, project.ID, constants.KindRole, "Back")
	_, err = env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		UserID: &bob.ID,
		RoleID: role.ID,
	})
	require.NoError(t, err)

	updated, err := env.projects.Update(project.ID, &dto.UpdateProjectRequest{OwnerID: &bob.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.OwnerID)
	assert.Equal(t, bob.ID, *updated.OwnerID)
}

func TestSetTagColor(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	project, err := env.projects.Create(owner.ID, &dto.CreateProjectRequest{
		Name: "Backlog Tool",
		Tags: []string{"Infra"},
	})
	require.NoError(t, err)

	color := "#ff0000"
	updated, err := env.projects.SetTagColor(project.ID, &dto.SetTagColorRequest{Tag: "infra", Color: &color})
	require.NoError(t, err)
	require.Len(t, updated.TagsColors, 1)
	require.NotNil(t, updated.TagsColors[0].Color)
	assert.Equal(t, color, *updated.TagsColors[0].Color)

	// 未使用的标签不能设色
	_, err = env.projects.SetTagColor(project.ID, &dto.SetTagColorRequest{Tag: "ghost", Color: &color})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeValidationError))
}

func TestDuplicateProject(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	source := env.createProject(t, alice.ID, "Backlog Tool")

	// 给源项目加一行自定义状态, 复制要带过去
	custom, err := env.taxonomies.Create(source.ID, constants.KindUserStoryStatus, &dto.CreateTaxonomyRequest{
		Name:  "Blocked upstream",
		Order: 99,
	})
	require.NoError(t, err)
	assert.NotZero(t, custom.ID)

	role := env.taxonomyByName(t, source.ID, constants.KindRole, "Front")
	_, err = env.memberships.Create(source.ID, alice.ID, &dto.CreateMembershipRequest{
		UserID: &bob.ID,
		RoleID: role.ID,
	})
	require.NoError(t, err)

	copied, err := env.projects.Duplicate(source.ID, alice.ID, &dto.DuplicateProjectRequest{
		Name:  "Backlog Tool Copy",
		Users: []int64{bob.ID},
	})
	require.NoError(t, err)
	assert.NotEqual(t, source.ID, copied.ID)

	statuses, err := env.taxonomies.List(copied.ID, constants.KindUserStoryStatus)
	require.NoError(t, err)
	assert.Len(t, statuses, 7) // scrum的6行 + 自定义1行

	members, err := env.memberships.List(copied.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	// 带入成员沿用其在源项目中的角色
	var bobRole string
	for _, m := range members {
		if m.UserID != nil && *m.UserID == bob.ID {
			bobRole = m.RoleName
		}
	}
	assert.Equal(t, "Front", bobRole)

	// 源项目内容不受影响
	sourceStatuses, err := env.taxonomies.List(source.ID, constants.KindUserStoryStatus)
	require.NoError(t, err)
	assert.Len(t, sourceStatuses, 7)
}
