package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/api/middleware"
	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type UserStoryHandler struct {
	storyService service.UserStoryService
}

func NewUserStoryHandler(storyService service.UserStoryService) *UserStoryHandler {
	return &UserStoryHandler{storyService: storyService}
}

// Create 创建用户故事
// @Summary 创建用户故事
// @Tags UserStory
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateUserStoryRequest true "创建用户故事请求"
// @Success 200 {object} utils.Response{data=dto.UserStoryResponse}
// @Router /api/v1/projects/{id}/userstories [post]
func (h *UserStoryHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateUserStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	story, err := h.storyService.Create(projectID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, story)
}

// List 用户故事列表
// @Summary 用户故事列表
// @Tags UserStory
// @Produce json
// @Param id path int64 true "项目ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} utils.PageResponse{data=[]dto.UserStoryResponse}
// @Router /api/v1/projects/{id}/userstories [get]
func (h *UserStoryHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	stories, total, err := h.storyService.List(projectID, query.GetPage(), query.GetPageSize())
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.PageSuccess(c, stories, total, query.GetPage(), query.GetPageSize())
}

// GetByRef 按项目内编号查询用户故事
// @Summary 按项目内编号查询用户故事
// @Tags UserStory
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Success 200 {object} utils.Response{data=dto.UserStoryResponse}
// @Router /api/v1/projects/{id}/userstories/{ref} [get]
func (h *UserStoryHandler) GetByRef(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}

	story, err := h.storyService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, story)
}

// Update 更新用户故事
// @Summary 更新用户故事(乐观锁, version必传)
// @Tags UserStory
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Param request body dto.UpdateUserStoryRequest true "更新用户故事请求"
// @Success 200 {object} utils.Response{data=dto.UserStoryResponse}
// @Router /api/v1/projects/{id}/userstories/{ref} [put]
func (h *UserStoryHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}
	var req dto.UpdateUserStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	current, err := h.storyService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	story, err := h.storyService.Update(projectID, current.ID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, story)
}

// Delete 删除用户故事
// @Summary 删除用户故事(故事下任务一并删除)
// @Tags UserStory
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/userstories/{ref} [delete]
func (h *UserStoryHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}

	current, err := h.storyService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	if err := h.storyService.Delete(projectID, current.ID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}
