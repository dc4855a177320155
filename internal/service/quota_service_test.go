package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pm/internal/dto"
	"agile-pm/internal/pkg/config"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

func TestProjectCountQuota(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	config.GlobalConfig.Limits.MaxPublicProjects = intPtr(1)

	env.createProject(t, owner.ID, "P1")

	_, err := env.projects.Create(owner.ID, &dto.CreateProjectRequest{Name: "P2"})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeQuotaExceeded))

	// 私有项目额度独立
	private := true
	_, err = env.projects.Create(owner.ID, &dto.CreateProjectRequest{Name: "P3", IsPrivate: &private})
	require.NoError(t, err)

	// 别的用户不受影响
	bob := env.createUser(t, "bob")
	_, err = env.projects.Create(bob.ID, &dto.CreateProjectRequest{Name: "P4"})
	require.NoError(t, err)
}

func TestMembershipQuota(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	project := env.createProject(t, alice.ID, "Backlog Tool")
	role := env.taxonomyByName(t, project.ID, constants.KindRole, "Back")

	// 所有者本人已占1席, 上限2还能进1人
	config.GlobalConfig.Limits.MaxMembershipsPublicProjects = intPtr(2)

	_, err := env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		UserID: &bob.ID,
		RoleID: role.ID,
	})
	require.NoError(t, err)

	_, err = env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		UserID: &carol.ID,
		RoleID: role.ID,
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeQuotaExceeded))
}

func TestMembershipQuotaCountsPendingInvitations(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	project := env.createProject(t, alice.ID, "Backlog Tool")
	role := env.taxonomyByName(t, project.ID, constants.KindRole, "Back")

	config.GlobalConfig.Limits.MaxMembershipsPublicProjects = intPtr(2)

	// 未接受的邀请按邮箱占席
	_, err := env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		Email:  "bob@example.com",
		RoleID: role.ID,
	})
	require.NoError(t, err)

	_, err = env.memberships.Create(project.ID, alice.ID, &dto.CreateMembershipRequest{
		Email:  "carol@example.com",
		RoleID: role.ID,
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeQuotaExceeded))
}

func TestQuotaCountsDistinctUsersAcrossProjects(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	p1 := env.createProject(t, alice.ID, "P1")
	p2 := env.createProject(t, alice.ID, "P2")

	r1 := env.taxonomyByName(t, p1.ID, constants.KindRole, "Back")
	r2 := env.taxonomyByName(t, p2.ID, constants.KindRole, "Back")

	_, err := env.memberships.Create(p1.ID, alice.ID, &dto.CreateMembershipRequest{
		UserID: &bob.ID,
		RoleID: r1.ID,
	})
	require.NoError(t, err)

	// 跨项目按用户去重: {alice, bob}=2席, 新席位预留1个, 上限3可进
	config.GlobalConfig.Limits.MaxMembershipsPublicProjects = intPtr(3)

	_, err = env.memberships.Create(p2.ID, alice.ID, &dto.CreateMembershipRequest{
		UserID: &bob.ID,
		RoleID: r2.ID,
	})
	require.NoError(t, err)
}

func TestQuotaOwnerlessProject(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	orphan := env.reloadProject(t, project.ID)
	orphan.OwnerID = nil

	result, err := env.quota.CheckPrivacyFlip(orphan)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, pkgErrors.ReasonOwnerless, result.Reason)
}

func TestCreateQuotaOwnerSeatDeduped(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createProject(t, alice.ID, "First")

	// 新项目的所有者席位与既有项目按用户去重: 并集仍是 {alice}=1席
	config.GlobalConfig.Limits.MaxMembershipsPublicProjects = intPtr(1)

	_, err := env.projects.Create(alice.ID, &dto.CreateProjectRequest{Name: "Second"})
	require.NoError(t, err)
}

func TestDuplicateQuotaDedupsMembers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	source := env.createProject(t, alice.ID, "Source")
	role := env.taxonomyByName(t, source.ID, constants.KindRole, "Back")

	_, err := env.memberships.Create(source.ID, alice.ID, &dto.CreateMembershipRequest{
		UserID: &bob.ID,
		RoleID: role.ID,
	})
	require.NoError(t, err)

	config.GlobalConfig.Limits.MaxMembershipsPublicProjects = intPtr(2)

	// 带入成员与源项目成员重合: 并集 {alice, bob}=2席, 正好达限可进
	_, err = env.projects.Duplicate(source.ID, alice.ID, &dto.DuplicateProjectRequest{
		Name:  "Copy",
		Users: []int64{bob.ID},
	})
	require.NoError(t, err)

	// 再引入新用户则并集变为3席, 超限
	_, err = env.projects.Duplicate(source.ID, alice.ID, &dto.DuplicateProjectRequest{
		Name:  "Copy Two",
		Users: []int64{bob.ID, carol.ID},
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeQuotaExceeded))
}
