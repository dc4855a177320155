package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

// TaxonomyHandler 八类项目配置共用一套处理器, 配置类型由路由注册时绑定
type TaxonomyHandler struct {
	taxonomyService service.TaxonomyService
}

func NewTaxonomyHandler(taxonomyService service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyService: taxonomyService}
}

// List 配置项列表
// @Summary 配置项列表
// @Tags Taxonomy
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.TaxonomyResponse}
// @Router /api/v1/projects/{id}/{kind} [get]
func (h *TaxonomyHandler) List(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "id")
		if !ok {
			return
		}
		rows, err := h.taxonomyService.List(projectID, kind)
		if err != nil {
			utils.Error(c, err)
			return
		}
		utils.Success(c, rows)
	}
}

// Create 新增配置项
// @Summary 新增配置项(该类首行自动成为项目默认)
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateTaxonomyRequest true "创建配置项请求"
// @Success 200 {object} utils.Response{data=dto.TaxonomyResponse}
// @Router /api/v1/projects/{id}/{kind} [post]
func (h *TaxonomyHandler) Create(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req dto.CreateTaxonomyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
			return
		}

		row, err := h.taxonomyService.Create(projectID, kind, &req)
		if err != nil {
			utils.Error(c, err)
			return
		}
		utils.Success(c, row)
	}
}

// Update 更新配置项
// @Summary 更新配置项
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param rowId path int64 true "配置项ID"
// @Param request body dto.UpdateTaxonomyRequest true "更新配置项请求"
// @Success 200 {object} utils.Response{data=dto.TaxonomyResponse}
// @Router /api/v1/projects/{id}/{kind}/{rowId} [put]
func (h *TaxonomyHandler) Update(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "id")
		if !ok {
			return
		}
		rowID, ok := pathID(c, "rowId")
		if !ok {
			return
		}
		var req dto.UpdateTaxonomyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
			return
		}

		row, err := h.taxonomyService.Update(projectID, kind, rowID, &req)
		if err != nil {
			utils.Error(c, err)
			return
		}
		utils.Success(c, row)
	}
}

// SetDefault 设为项目默认
// @Summary 把配置项设为项目默认
// @Tags Taxonomy
// @Produce json
// @Param id path int64 true "项目ID"
// @Param rowId path int64 true "配置项ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/{kind}/{rowId}/default [post]
func (h *TaxonomyHandler) SetDefault(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "id")
		if !ok {
			return
		}
		rowID, ok := pathID(c, "rowId")
		if !ok {
			return
		}

		if err := h.taxonomyService.SetDefault(projectID, kind, rowID); err != nil {
			utils.Error(c, err)
			return
		}
		utils.Success(c, nil)
	}
}

// Delete 删除配置项
// @Summary 删除配置项(存在引用方时必须带 moveTo 指定迁移目标)
// @Tags Taxonomy
// @Produce json
// @Param id path int64 true "项目ID"
// @Param rowId path int64 true "配置项ID"
// @Param moveTo query int64 false "引用迁移目标配置项ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/{kind}/{rowId} [delete]
func (h *TaxonomyHandler) Delete(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "id")
		if !ok {
			return
		}
		rowID, ok := pathID(c, "rowId")
		if !ok {
			return
		}
		var query dto.DeleteTaxonomyQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
			return
		}

		if err := h.taxonomyService.Delete(projectID, kind, rowID, query.MoveTo); err != nil {
			utils.Error(c, err)
			return
		}
		utils.Success(c, nil)
	}
}
