package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/api/middleware"
	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type MilestoneHandler struct {
	milestoneService service.MilestoneService
}

func NewMilestoneHandler(milestoneService service.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestoneService: milestoneService}
}

// Create 创建里程碑
// @Summary 创建里程碑
// @Tags Milestone
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateMilestoneRequest true "创建里程碑请求"
// @Success 200 {object} utils.Response{data=dto.MilestoneResponse}
// @Router /api/v1/projects/{id}/milestones [post]
func (h *MilestoneHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	milestone, err := h.milestoneService.Create(projectID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, milestone)
}

// List 里程碑列表
// @Summary 里程碑列表
// @Tags Milestone
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.MilestoneResponse}
// @Router /api/v1/projects/{id}/milestones [get]
func (h *MilestoneHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	milestones, err := h.milestoneService.List(projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, milestones)
}

// Get 里程碑详情
// @Summary 里程碑详情
// @Tags Milestone
// @Produce json
// @Param id path int64 true "项目ID"
// @Param milestoneId path int64 true "里程碑ID"
// @Success 200 {object} utils.Response{data=dto.MilestoneResponse}
// @Router /api/v1/projects/{id}/milestones/{milestoneId} [get]
func (h *MilestoneHandler) Get(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathID(c, "milestoneId")
	if !ok {
		return
	}

	milestone, err := h.milestoneService.Get(projectID, milestoneID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, milestone)
}

// Update 更新里程碑
// @Summary 更新里程碑
// @Tags Milestone
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param milestoneId path int64 true "里程碑ID"
// @Param request body dto.UpdateMilestoneRequest true "更新里程碑请求"
// @Success 200 {object} utils.Response{data=dto.MilestoneResponse}
// @Router /api/v1/projects/{id}/milestones/{milestoneId} [put]
func (h *MilestoneHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathID(c, "milestoneId")
	if !ok {
		return
	}
	var req dto.UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	milestone, err := h.milestoneService.Update(projectID, milestoneID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, milestone)
}

// Delete 删除里程碑
// @Summary 删除里程碑(挂在其上的条目摘回待办)
// @Tags Milestone
// @Produce json
// @Param id path int64 true "项目ID"
// @Param milestoneId path int64 true "里程碑ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/milestones/{milestoneId} [delete]
func (h *MilestoneHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathID(c, "milestoneId")
	if !ok {
		return
	}

	if err := h.milestoneService.Delete(projectID, milestoneID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}
