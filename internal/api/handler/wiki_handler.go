package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/api/middleware"
	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type WikiHandler struct {
	wikiService service.WikiService
}

func NewWikiHandler(wikiService service.WikiService) *WikiHandler {
	return &WikiHandler{wikiService: wikiService}
}

// CreatePage 创建Wiki页面
// @Summary 创建Wiki页面
// @Tags Wiki
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateWikiPageRequest true "创建Wiki页面请求"
// @Success 200 {object} utils.Response{data=dto.WikiPageResponse}
// @Router /api/v1/projects/{id}/wiki [post]
func (h *WikiHandler) CreatePage(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateWikiPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	page, err := h.wikiService.CreatePage(projectID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, page)
}

// ListPages Wiki页面列表
// @Summary Wiki页面列表
// @Tags Wiki
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.WikiPageResponse}
// @Router /api/v1/projects/{id}/wiki [get]
func (h *WikiHandler) ListPages(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pages, err := h.wikiService.ListPages(projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, pages)
}

// GetPageBySlug 按slug查询Wiki页面
// @Summary 按slug查询Wiki页面
// @Tags Wiki
// @Produce json
// @Param id path int64 true "项目ID"
// @Param slug path string true "页面slug"
// @Success 200 {object} utils.Response{data=dto.WikiPageResponse}
// @Router /api/v1/projects/{id}/wiki/{slug} [get]
func (h *WikiHandler) GetPageBySlug(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	slug := c.Param("slug")
	if slug == "" {
		utils.ErrorWithCode(c, http.StatusBadRequest, "无效的路径参数 slug")
		return
	}

	page, err := h.wikiService.GetPageBySlug(projectID, slug)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, page)
}

// UpdatePage 更新Wiki页面
// @Summary 更新Wiki页面(乐观锁, version必传)
// @Tags Wiki
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param slug path string true "页面slug"
// @Param request body dto.UpdateWikiPageRequest true "更新Wiki页面请求"
// @Success 200 {object} utils.Response{data=dto.WikiPageResponse}
// @Router /api/v1/projects/{id}/wiki/{slug} [put]
func (h *WikiHandler) UpdatePage(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	slug := c.Param("slug")
	if slug == "" {
		utils.ErrorWithCode(c, http.StatusBadRequest, "无效的路径参数 slug")
		return
	}
	var req dto.UpdateWikiPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	current, err := h.wikiService.GetPageBySlug(projectID, slug)
	if err != nil {
		utils.Error(c, err)
		return
	}
	page, err := h.wikiService.UpdatePage(projectID, current.ID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, page)
}

// DeletePage 删除Wiki页面
// @Summary 删除Wiki页面
// @Tags Wiki
// @Produce json
// @Param id path int64 true "项目ID"
// @Param slug path string true "页面slug"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/wiki/{slug} [delete]
func (h *WikiHandler) DeletePage(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	slug := c.Param("slug")
	if slug == "" {
		utils.ErrorWithCode(c, http.StatusBadRequest, "无效的路径参数 slug")
		return
	}

	current, err := h.wikiService.GetPageBySlug(projectID, slug)
	if err != nil {
		utils.Error(c, err)
		return
	}
	if err := h.wikiService.DeletePage(projectID, current.ID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}

// CreateLink 创建Wiki导航链接
// @Summary 创建Wiki导航链接
// @Tags Wiki
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateWikiLinkRequest true "创建Wiki链接请求"
// @Success 200 {object} utils.Response{data=dto.WikiLinkResponse}
// @Router /api/v1/projects/{id}/wiki-links [post]
func (h *WikiHandler) CreateLink(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateWikiLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	link, err := h.wikiService.CreateLink(projectID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, link)
}

// ListLinks Wiki导航链接列表
// @Summary Wiki导航链接列表
// @Tags Wiki
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.WikiLinkResponse}
// @Router /api/v1/projects/{id}/wiki-links [get]
func (h *WikiHandler) ListLinks(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	links, err := h.wikiService.ListLinks(projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, links)
}

// DeleteLink 删除Wiki导航链接
// @Summary 删除Wiki导航链接
// @Tags Wiki
// @Produce json
// @Param id path int64 true "项目ID"
// @Param linkId path int64 true "链接ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/wiki-links/{linkId} [delete]
func (h *WikiHandler) DeleteLink(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	linkID, ok := pathID(c, "linkId")
	if !ok {
		return
	}

	if err := h.wikiService.DeleteLink(projectID, linkID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}
