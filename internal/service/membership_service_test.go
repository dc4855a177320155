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

func TestMembershipCreateByUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, alice.ID, "Backlog Tool")
	role := env.taxonomyByName(t, project.ID, constants.KindRole, "Back")

	member, err := env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		UserID: &bob.ID,
		RoleID: role.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, member.UserID)
	assert.Equal(t, bob.ID, *member.UserID)
	assert.True(t, member.Confirmed)

	// 重复入组
	_, err = env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		UserID: &bob.ID,
		RoleID: role.ID,
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeConflict))
}

func TestMembershipInviteAndAccept(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, alice.ID, "Backlog Tool")
	role := env.taxonomyByName(t, project.ID, constants.KindRole, "Front")

	invite, err := env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		Email:  "Bob@Example.com",
		RoleID: role.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, invite.UserID)
	assert.False(t, invite.Confirmed)
	require.NotNil(t, invite.Email)
	assert.Equal(t, "bob@example.com", *invite.Email)

	var stored model.Membership
	require.NoError(t, env.db.First(&stored, invite.ID).Error)
	require.NotNil(t, stored.Token)

	accepted, err := env.memberships.AcceptInvitation(bob.ID, &dto.AcceptInvitationRequest{Token: *stored.Token})
	require.NoError(t, err)
	require.NotNil(t, accepted.UserID)
	assert.Equal(t, bob.ID, *accepted.UserID)
	assert.True(t, accepted.Confirmed)
	assert.Nil(t, accepted.Email)

	// 接受后邀请痕迹清空, 不能二次接受
	_, err = env.memberships.AcceptInvitation(bob.ID, &dto.AcceptInvitationRequest{Token: *stored.Token})
	require.Error(t, err)
}

func TestMembershipCannotRemoveOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	members, err := env.memberships.List(project.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)

	err = env.memberships.Delete(project.ID, members[0].ID)
	require.Error(t, err)
}

func TestMembershipRequiresUserOrEmail(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")
	role := env.taxonomyByName(t, project.ID, constants.KindRole, "Back")

	_, err := env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{RoleID: role.ID})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeValidationError))
}

func TestMembershipDuplicateInviteRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")
	role := env.taxonomyByName(t, project.ID, constants.KindRole, "Front")

	_, err := env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		Email:  "bob@example.com",
		RoleID: role.ID,
	})
	require.NoError(t, err)

	// 同一邮箱重复邀请被拒, 大小写归一后同样算重复
	_, err = env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		Email:  "Bob@Example.com",
		RoleID: role.ID,
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeConflict))
}
