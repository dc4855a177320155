package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/api/middleware"
	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// Create 登记附件
// @Summary 登记附件元数据
// @Tags Attachment
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateAttachmentRequest true "登记附件请求"
// @Success 200 {object} utils.Response{data=dto.AttachmentResponse}
// @Router /api/v1/projects/{id}/attachments [post]
func (h *AttachmentHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	attachment, err := h.attachmentService.Create(projectID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, attachment)
}

// List 按归属实体查询附件
// @Summary 按归属实体查询附件
// @Tags Attachment
// @Produce json
// @Param id path int64 true "项目ID"
// @Param content_type query string true "归属实体类型"
// @Param object_id query int64 true "归属实体ID"
// @Success 200 {object} utils.Response{data=[]dto.AttachmentResponse}
// @Router /api/v1/projects/{id}/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var query dto.AttachmentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	attachments, err := h.attachmentService.ListByObject(projectID, &query)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, attachments)
}

// Update 更新附件属性
// @Summary 更新附件属性
// @Tags Attachment
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param attachmentId path int64 true "附件ID"
// @Param request body dto.UpdateAttachmentRequest true "更新附件请求"
// @Success 200 {object} utils.Response{data=dto.AttachmentResponse}
// @Router /api/v1/projects/{id}/attachments/{attachmentId} [put]
func (h *AttachmentHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachmentId")
	if !ok {
		return
	}
	var req dto.UpdateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	attachment, err := h.attachmentService.Update(projectID, attachmentID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, attachment)
}

// Delete 删除附件
// @Summary 删除附件
// @Tags Attachment
// @Produce json
// @Param id path int64 true "项目ID"
// @Param attachmentId path int64 true "附件ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/attachments/{attachmentId} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachmentId")
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(projectID, attachmentID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}
