package core

import (
	"strings"

	"github.com/samber/lo"

	"agile-pm/internal/model"
)

// NormalizeTags 规范化标签列表: 去首尾空白、转小写、去重。
// 保留首次出现的顺序, 空白标签被丢弃。
func NormalizeTags(tags []string) []string {
	cleaned := lo.FilterMap(tags, func(tag string, _ int) (string, bool) {
		t := strings.ToLower(strings.TrimSpace(tag))
		return t, t != ""
	})
	return lo.Uniq(cleaned)
}

// RegisterTags 把标签并入项目标签注册表, 新标签颜色为空。
// 返回注册表是否发生变化。
func RegisterTags(project *model.Project, tags []string) bool {
	changed := false
	for _, tag := range tags {
		if _, ok := project.TagsColors.Find(tag); !ok {
			project.TagsColors = append(project.TagsColors, model.TagColor{Tag: tag})
			changed = true
		}
	}
	return changed
}

// RebuildTagRegistry 按项目内实际使用的标签重建注册表:
// 缺失的标签补登(颜色为空), 不再使用的标签回收, 仍在使用的保留已设颜色。
func RebuildTagRegistry(project *model.Project, usedTags []string) bool {
	used := lo.SliceToMap(usedTags, func(tag string) (string, struct{}) {
		return tag, struct{}{}
	})

	rebuilt := make(model.TagColorList, 0, len(usedTags))
	for _, entry := range project.TagsColors {
		if _, ok := used[entry.Tag]; ok {
			rebuilt = append(rebuilt, entry)
			delete(used, entry.Tag)
		}
	}
	for _, tag := range usedTags {
		if _, ok := used[tag]; ok {
			rebuilt = append(rebuilt, model.TagColor{Tag: tag})
		}
	}

	if tagRegistryEqual(project.TagsColors, rebuilt) {
		return false
	}
	project.TagsColors = rebuilt
	return true
}

func tagRegistryEqual(a, b model.TagColorList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Tag != b[i].Tag {
			return false
		}
		ac, bc := a[i].Color, b[i].Color
		if (ac == nil) != (bc == nil) {
			return false
		}
		if ac != nil && *ac != *bc {
			return false
		}
	}
	return true
}
