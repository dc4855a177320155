package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pm/internal/dto"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

func TestAttachmentObjectValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	story, err := env.stories.Create(project.ID, alice.ID, &dto.CreateUserStoryRequest{Subject: "登录页"})
	require.NoError(t, err)

	attachment, err := env.attachments.Create(project.ID, alice.ID, &dto.CreateAttachmentRequest{
		ContentType:  constants.ObjectKindUserStory,
		ObjectID:     story.ID,
		AttachedFile: "attachments/1/mockup.png",
	})
	require.NoError(t, err)
	assert.Equal(t, story.ID, attachment.ObjectID)

	// 未知实体类型
	_, err = env.attachments.Create(project.ID, alice.ID, &dto.CreateAttachmentRequest{
		ContentType:  "sprint",
		ObjectID:     story.ID,
		AttachedFile: "attachments/1/x.png",
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeValidationError))

	// 实体不存在
	_, err = env.attachments.Create(project.ID, alice.ID, &dto.CreateAttachmentRequest{
		ContentType:  constants.ObjectKindTask,
		ObjectID:     story.ID,
		AttachedFile: "attachments/1/y.png",
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeNotFound))

	listed, err := env.attachments.ListByObject(project.ID, &dto.AttachmentListQuery{
		ContentType: constants.ObjectKindUserStory,
		ObjectID:    story.ID,
	})
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestAttachmentDeprecateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	story, err := env.stories.Create(project.ID, alice.ID, &dto.CreateUserStoryRequest{Subject: "登录页"})
	require.NoError(t, err)
	attachment, err := env.attachments.Create(project.ID, alice.ID, &dto.CreateAttachmentRequest{
		ContentType:  constants.ObjectKindUserStory,
		ObjectID:     story.ID,
		AttachedFile: "attachments/1/mockup.png",
	})
	require.NoError(t, err)

	updated, err := env.attachments.Update(project.ID, attachment.ID, &dto.UpdateAttachmentRequest{
		IsDeprecated: boolPtr(true),
		Description:  strPtr("旧版设计稿"),
	})
	require.NoError(t, err)
	assert.True(t, updated.IsDeprecated)
	assert.Equal(t, "旧版设计稿", updated.Description)

	require.NoError(t, env.attachments.Delete(project.ID, attachment.ID))
	listed, err := env.attachments.ListByObject(project.ID, &dto.AttachmentListQuery{
		ContentType: constants.ObjectKindUserStory,
		ObjectID:    story.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, listed)
}
