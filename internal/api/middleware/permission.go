package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/repository"
	pkgErrors "agile-pm/pkg/errors"
	"agile-pm/pkg/utils"
)

// ProjectMemberMiddleware 项目内路由要求当前用户持有该项目的已确认成员关系
func ProjectMemberMiddleware(membershipRepo repository.MembershipRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || projectID <= 0 {
			utils.ErrorWithCode(c, pkgErrors.CodeBadRequest, "无效的路径参数 id")
			c.Abort()
			return
		}

		userID := CurrentUserID(c)
		if _, err := membershipRepo.FindByProjectAndUser(projectID, userID); err != nil {
			if pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
				utils.Error(c, pkgErrors.ErrPermissionDenied)
			} else {
				utils.Error(c, err)
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
