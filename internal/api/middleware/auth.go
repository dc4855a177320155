package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/dto"
	"agile-pm/internal/pkg/jwt"
	"agile-pm/pkg/constants"
	"agile-pm/pkg/utils"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorWithCode(c, 401, "缺少Authorization Header")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			utils.ErrorWithCode(c, 401, "Authorization格式错误")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix)

		claims, err := jwt.ValidateToken(token)
		if err != nil {
			utils.Error(c, err)
			c.Abort()
			return
		}

		// 必须是AccessToken
		if claims.Type != constants.JWTTypeAccess {
			utils.ErrorWithCode(c, 401, "无效的Token类型")
			c.Abort()
			return
		}

		userInfo := &dto.UserInfo{
			ID:          claims.UserID,
			Username:    claims.Username,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
			AuthType:    claims.AuthType,
		}
		c.Set("user", userInfo)
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)

		c.Next()
	}
}

// CurrentUserID 从请求上下文取当前登录用户ID
func CurrentUserID(c *gin.Context) int64 {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
