package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/api/middleware"
	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type IssueHandler struct {
	issueService service.IssueService
}

func NewIssueHandler(issueService service.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

// Create 创建问题
// @Summary 创建问题
// @Tags Issue
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateIssueRequest true "创建问题请求"
// @Success 200 {object} utils.Response{data=dto.IssueResponse}
// @Router /api/v1/projects/{id}/issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	issue, err := h.issueService.Create(projectID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, issue)
}

// List 问题列表
// @Summary 问题列表
// @Tags Issue
// @Produce json
// @Param id path int64 true "项目ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} utils.PageResponse{data=[]dto.IssueResponse}
// @Router /api/v1/projects/{id}/issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	issues, total, err := h.issueService.List(projectID, query.GetPage(), query.GetPageSize())
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.PageSuccess(c, issues, total, query.GetPage(), query.GetPageSize())
}

// GetByRef 按项目内编号查询问题
// @Summary 按项目内编号查询问题
// @Tags Issue
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Success 200 {object} utils.Response{data=dto.IssueResponse}
// @Router /api/v1/projects/{id}/issues/{ref} [get]
func (h *IssueHandler) GetByRef(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}

	issue, err := h.issueService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, issue)
}

// Update 更新问题
// @Summary 更新问题(乐观锁, version必传)
// @Tags Issue
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Param request body dto.UpdateIssueRequest true "更新问题请求"
// @Success 200 {object} utils.Response{data=dto.IssueResponse}
// @Router /api/v1/projects/{id}/issues/{ref} [put]
func (h *IssueHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}
	var req dto.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	current, err := h.issueService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	issue, err := h.issueService.Update(projectID, current.ID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, issue)
}

// Delete 删除问题
// @Summary 删除问题
// @Tags Issue
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/issues/{ref} [delete]
func (h *IssueHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}

	current, err := h.issueService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	if err := h.issueService.Delete(projectID, current.ID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}

// Promote 问题转用户故事
// @Summary 把问题转化为用户故事
// @Tags Issue
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Param request body dto.PromoteIssueRequest true "转化请求"
// @Success 200 {object} utils.Response{data=dto.UserStoryResponse}
// @Router /api/v1/projects/{id}/issues/{ref}/promote [post]
func (h *IssueHandler) Promote(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}
	var req dto.PromoteIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	current, err := h.issueService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	story, err := h.issueService.Promote(projectID, current.ID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, story)
}
