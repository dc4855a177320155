package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Backlog Tool":    "backlog-tool",
		"  Atlas!  ":      "atlas",
		"v2.0 -- Final":   "v2-0-final",
		"项目管理":            "",
		"Mixed 项目 Name":   "mixed-name",
		"---":             "",
		"already-slugged": "already-slugged",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input=%q", input)
	}
}

func TestRandomTokenHexLength(t *testing.T) {
	token, err := RandomToken(20)
	require.NoError(t, err)
	assert.Len(t, token, 40)

	other, err := RandomToken(20)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
