package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"agile-pm/pkg/utils"
)

// pathID 解析路径中的整型参数, 非法时直接写错误响应
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorWithCode(c, 400, "无效的路径参数 "+name)
		return 0, false
	}
	return id, true
}
