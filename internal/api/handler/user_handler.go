package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Get 用户详情
// @Summary 用户详情
// @Tags User
// @Produce json
// @Param id path int64 true "用户ID"
// @Success 200 {object} utils.Response{data=dto.UserInfo}
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(userID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, user)
}

// List 用户列表
// @Summary 用户列表(支持关键字搜索)
// @Tags User
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param keyword query string false "关键字"
// @Success 200 {object} utils.PageResponse{data=[]dto.UserInfo}
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	users, total, err := h.userService.List(query.GetPage(), query.GetPageSize(), query.Keyword)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.PageSuccess(c, users, total, query.GetPage(), query.GetPageSize())
}
