package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pm/internal/dto"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

func TestIssueCreateUsesProjectDefaults(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	issue, err := env.issues.Create(project.ID, owner.ID, &dto.CreateIssueRequest{Subject: "i"})
	require.NoError(t, err)

	require.NotNil(t, issue.StatusID)
	assert.Equal(t, *project.DefaultIssueStatusID, *issue.StatusID)
	require.NotNil(t, issue.TypeID)
	assert.Equal(t, *project.DefaultIssueTypeID, *issue.TypeID)
	require.NotNil(t, issue.PriorityID)
	assert.Equal(t, *project.DefaultPriorityID, *issue.PriorityID)
	require.NotNil(t, issue.SeverityID)
	assert.Equal(t, *project.DefaultSeverityID, *issue.SeverityID)
	assert.False(t, issue.IsClosed)
}

func TestIssueClosedMirror(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	closed := env.taxonomyByName(t, project.ID, constants.KindIssueStatus, "Closed")

	issue, err := env.issues.Create(project.ID, owner.ID, &dto.CreateIssueRequest{
		Subject:  "i",
		StatusID: &closed.ID,
	})
	require.NoError(t, err)
	assert.True(t, issue.IsClosed)
}

func TestIssueStaleWrite(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	issue, err := env.issues.Create(project.ID, owner.ID, &dto.CreateIssueRequest{Subject: "i"})
	require.NoError(t, err)

	_, err = env.issues.Update(project.ID, issue.ID, &dto.UpdateIssueRequest{
		Version: issue.Version,
		Subject: strPtr("renamed"),
	})
	require.NoError(t, err)

	_, err = env.issues.Update(project.ID, issue.ID, &dto.UpdateIssueRequest{
		Version: issue.Version,
		Subject: strPtr("conflict"),
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeStaleWrite))
}

func TestPromoteIssueToUserStory(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner.ID, "Backlog Tool")

	// 先占掉故事序列的第一个编号
	_, err := env.stories.Create(project.ID, owner.ID, &dto.CreateUserStoryRequest{Subject: "s"})
	require.NoError(t, err)

	issue, err := env.issues.Create(project.ID, owner.ID, &dto.CreateIssueRequest{
		Subject: "crash on login",
		Tags:    []string{"bug"},
	})
	require.NoError(t, err)

	story, err := env.issues.Promote(project.ID, issue.ID, owner.ID, &dto.PromoteIssueRequest{})
	require.NoError(t, err)

	// 新故事在故事序列里取号, 与问题编号无关
	assert.EqualValues(t, 2, story.Ref)
	assert.Equal(t, issue.Subject, story.Subject)
	assert.Equal(t, issue.Tags, story.Tags)
	require.NotNil(t, story.GeneratedFromIssueID)
	assert.Equal(t, issue.ID, *story.GeneratedFromIssueID)
	require.NotNil(t, story.StatusID)
	assert.Equal(t, *project.DefaultUsStatusID, *story.StatusID)

	// 原问题保留不动
	kept, err := env.issues.GetByRef(project.ID, issue.Ref)
	require.NoError(t, err)
	assert.Equal(t, issue.Subject, kept.Subject)

	// 可以改标题转化
	story2, err := env.issues.Promote(project.ID, issue.ID, owner.ID, &dto.PromoteIssueRequest{
		Subject: "rework login flow",
	})
	require.NoError(t, err)
	assert.Equal(t, "rework login flow", story2.Subject)
	assert.EqualValues(t, 3, story2.Ref)
}
