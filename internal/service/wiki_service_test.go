package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pm/internal/dto"
	pkgErrors "agile-pm/pkg/errors"
)

func TestWikiPageSlugConflict(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	page, err := env.wiki.CreatePage(project.ID, alice.ID, &dto.CreateWikiPageRequest{
		Slug:    "Home Page",
		Content: "欢迎",
	})
	require.NoError(t, err)
	assert.Equal(t, "home-page", page.Slug)
	assert.Equal(t, int64(1), page.Version)

	// slug按规范化后判重
	_, err = env.wiki.CreatePage(project.ID, alice.ID, &dto.CreateWikiPageRequest{Slug: "home page"})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeConflict))
}

func TestWikiPageOptimisticLock(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	page, err := env.wiki.CreatePage(project.ID, alice.ID, &dto.CreateWikiPageRequest{
		Slug:    "spec",
		Content: "v1",
	})
	require.NoError(t, err)

	updated, err := env.wiki.UpdatePage(project.ID, page.ID, bob.ID, &dto.UpdateWikiPageRequest{
		Version: 1,
		Content: strPtr("v2"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "v2", updated.Content)

	// 旧版本号写入被拒, 内容保持不变
	_, err = env.wiki.UpdatePage(project.ID, page.ID, alice.ID, &dto.UpdateWikiPageRequest{
		Version: 1,
		Content: strPtr("v3"),
	})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeStaleWrite))

	current, err := env.wiki.GetPageBySlug(project.ID, "spec")
	require.NoError(t, err)
	assert.Equal(t, "v2", current.Content)
}

func TestWikiLinkDuplicateHref(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice.ID, "Backlog Tool")

	_, err := env.wiki.CreateLink(project.ID, &dto.CreateWikiLinkRequest{Title: "首页", Href: "home"})
	require.NoError(t, err)

	_, err = env.wiki.CreateLink(project.ID, &dto.CreateWikiLinkRequest{Title: "又是首页", Href: "home"})
	require.Error(t, err)
	assert.True(t, pkgErrors.IsCode(err, pkgErrors.CodeConflict))

	links, err := env.wiki.ListLinks(project.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}
