package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agile-pm/internal/model"
)

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Infra ", "infra", "API", "", "  "})
	assert.Equal(t, []string{"infra", "api"}, got)
}

func TestRegisterTagsKeepsExistingColors(t *testing.T) {
	red := "#ff0000"
	project := &model.Project{
		TagsColors: model.TagColorList{{Tag: "infra", Color: &red}},
	}

	changed := RegisterTags(project, []string{"infra", "api"})
	assert.True(t, changed)
	assert.Len(t, project.TagsColors, 2)

	color, ok := project.TagsColors.Find("infra")
	assert.True(t, ok)
	assert.Equal(t, "#ff0000", *color)

	// 已注册标签不再触发变化
	assert.False(t, RegisterTags(project, []string{"api"}))
}
