package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/api/middleware"
	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type EpicHandler struct {
	epicService service.EpicService
}

func NewEpicHandler(epicService service.EpicService) *EpicHandler {
	return &EpicHandler{epicService: epicService}
}

// Create 创建史诗
// @Summary 创建史诗
// @Tags Epic
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateEpicRequest true "创建史诗请求"
// @Success 200 {object} utils.Response{data=dto.EpicResponse}
// @Router /api/v1/projects/{id}/epics [post]
func (h *EpicHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateEpicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	epic, err := h.epicService.Create(projectID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, epic)
}

// List 史诗列表
// @Summary 史诗列表
// @Tags Epic
// @Produce json
// @Param id path int64 true "项目ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} utils.PageResponse{data=[]dto.EpicResponse}
// @Router /api/v1/projects/{id}/epics [get]
func (h *EpicHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	epics, total, err := h.epicService.List(projectID, query.GetPage(), query.GetPageSize())
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.PageSuccess(c, epics, total, query.GetPage(), query.GetPageSize())
}

// GetByRef 按项目内编号查询史诗
// @Summary 按项目内编号查询史诗
// @Tags Epic
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Success 200 {object} utils.Response{data=dto.EpicResponse}
// @Router /api/v1/projects/{id}/epics/{ref} [get]
func (h *EpicHandler) GetByRef(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}

	epic, err := h.epicService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, epic)
}

// Update 更新史诗
// @Summary 更新史诗(乐观锁, version必传)
// @Tags Epic
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Param request body dto.UpdateEpicRequest true "更新史诗请求"
// @Success 200 {object} utils.Response{data=dto.EpicResponse}
// @Router /api/v1/projects/{id}/epics/{ref} [put]
func (h *EpicHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}
	var req dto.UpdateEpicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	current, err := h.epicService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	epic, err := h.epicService.Update(projectID, current.ID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, epic)
}

// Delete 删除史诗
// @Summary 删除史诗(关联随之解除, 故事保留)
// @Tags Epic
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/epics/{ref} [delete]
func (h *EpicHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}

	current, err := h.epicService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	if err := h.epicService.Delete(projectID, current.ID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}

// LinkUserStory 关联用户故事
// @Summary 把用户故事挂到史诗
// @Tags Epic
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Param request body dto.LinkUserStoryRequest true "关联请求"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/epics/{ref}/userstories [post]
func (h *EpicHandler) LinkUserStory(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}
	var req dto.LinkUserStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	current, err := h.epicService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	if err := h.epicService.LinkUserStory(projectID, current.ID, &req); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}

// ListUserStories 史诗下的用户故事
// @Summary 史诗下的用户故事(按关联顺序)
// @Tags Epic
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Success 200 {object} utils.Response{data=[]dto.UserStoryResponse}
// @Router /api/v1/projects/{id}/epics/{ref}/userstories [get]
func (h *EpicHandler) ListUserStories(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}

	current, err := h.epicService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	stories, err := h.epicService.ListUserStories(projectID, current.ID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, stories)
}

// UnlinkUserStory 解除关联
// @Summary 把用户故事从史诗摘下
// @Tags Epic
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Param storyId path int64 true "用户故事ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/epics/{ref}/userstories/{storyId} [delete]
func (h *EpicHandler) UnlinkUserStory(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}
	storyID, ok := pathID(c, "storyId")
	if !ok {
		return
	}

	current, err := h.epicService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	if err := h.epicService.UnlinkUserStory(projectID, current.ID, storyID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}
