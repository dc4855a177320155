package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/api/middleware"
	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create 创建项目
// @Summary 创建项目
// @Tags Project
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectRequest true "创建项目请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	project, err := h.projectService.Create(middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, project)
}

// List 项目列表
// @Summary 项目列表
// @Tags Project
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} utils.PageResponse{data=[]dto.ProjectResponse}
// @Router /api/v1/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	var query dto.ProjectListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	projects, total, err := h.projectService.List(&query)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.PageSuccess(c, projects, total, query.GetPage(), query.GetPageSize())
}

// Get 项目详情
// @Summary 项目详情
// @Tags Project
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(id)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, project)
}

// GetBySlug 按slug查询项目
// @Summary 按slug查询项目
// @Tags Project
// @Produce json
// @Param slug path string true "项目slug"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/by-slug/{slug} [get]
func (h *ProjectHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		utils.ErrorWithCode(c, 400, "无效的路径参数 slug")
		return
	}

	project, err := h.projectService.GetBySlug(slug)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, project)
}

// Update 更新项目
// @Summary 更新项目(含私密性翻转与所有权转让)
// @Tags Project
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.UpdateProjectRequest true "更新项目请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	project, err := h.projectService.Update(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, project)
}

// Delete 删除项目
// @Summary 删除项目(标记删除, 级联清理由后台引擎完成)
// @Tags Project
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(id); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "项目已进入删除队列", nil)
}

// Duplicate 复制项目
// @Summary 复制项目
// @Tags Project
// @Accept json
// @Produce json
// @Param id path int64 true "源项目ID"
// @Param request body dto.DuplicateProjectRequest true "复制项目请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id}/duplicate [post]
func (h *ProjectHandler) Duplicate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.DuplicateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	project, err := h.projectService.Duplicate(id, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, project)
}

// Transfer 所有权转让
// @Summary 转让项目所有权(新所有者须已是项目成员)
// @Tags Project
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.TransferProjectRequest true "转让请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id}/transfer [post]
func (h *ProjectHandler) Transfer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.TransferProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	project, err := h.projectService.Update(id, &dto.UpdateProjectRequest{OwnerID: &req.OwnerID})
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, project)
}

// SetTagColor 设置标签颜色
// @Summary 设置项目标签颜色
// @Tags Project
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.SetTagColorRequest true "标签颜色请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id}/tag-color [post]
func (h *ProjectHandler) SetTagColor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SetTagColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	project, err := h.projectService.SetTagColor(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, project)
}
