package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// List 项目模板列表
// @Summary 项目模板列表
// @Tags Template
// @Produce json
// @Success 200 {object} utils.Response{data=[]dto.TemplateResponse}
// @Router /api/v1/project-templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.List()
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, templates)
}

// GetBySlug 项目模板详情
// @Summary 按slug查询项目模板
// @Tags Template
// @Produce json
// @Param slug path string true "模板slug"
// @Success 200 {object} utils.Response{data=dto.TemplateResponse}
// @Router /api/v1/project-templates/{slug} [get]
func (h *TemplateHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		utils.ErrorWithCode(c, http.StatusBadRequest, "无效的路径参数 slug")
		return
	}

	template, err := h.templateService.GetBySlug(slug)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, template)
}

// Snapshot 从项目抽取模板
// @Summary 把既有项目的配置抽取为新模板
// @Tags Template
// @Accept json
// @Produce json
// @Param request body dto.SnapshotTemplateRequest true "抽取模板请求"
// @Success 200 {object} utils.Response{data=dto.TemplateResponse}
// @Router /api/v1/project-templates/snapshot [post]
func (h *TemplateHandler) Snapshot(c *gin.Context) {
	var req dto.SnapshotTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	template, err := h.templateService.Snapshot(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, template)
}
