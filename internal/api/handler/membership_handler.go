package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/api/middleware"
	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type MembershipHandler struct {
	membershipService service.MembershipService
}

func NewMembershipHandler(membershipService service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// Create 添加成员/发出邀请
// @Summary 添加成员或发出邀请
// @Tags Membership
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateMembershipRequest true "添加成员请求"
// @Success 200 {object} utils.Response{data=dto.MembershipResponse}
// @Router /api/v1/projects/{id}/memberships [post]
func (h *MembershipHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	membership, err := h.membershipService.Create(projectID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, membership)
}

// List 成员列表
// @Summary 项目成员列表
// @Tags Membership
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.MembershipResponse}
// @Router /api/v1/projects/{id}/memberships [get]
func (h *MembershipHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	memberships, err := h.membershipService.List(projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, memberships)
}

// Update 更新成员
// @Summary 更新成员角色/管理员标记
// @Tags Membership
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param memberId path int64 true "成员关系ID"
// @Param request body dto.UpdateMembershipRequest true "更新成员请求"
// @Success 200 {object} utils.Response{data=dto.MembershipResponse}
// @Router /api/v1/projects/{id}/memberships/{memberId} [put]
func (h *MembershipHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "memberId")
	if !ok {
		return
	}
	var req dto.UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	membership, err := h.membershipService.Update(projectID, memberID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, membership)
}

// Delete 移除成员
// @Summary 移除成员
// @Tags Membership
// @Produce json
// @Param id path int64 true "项目ID"
// @Param memberId path int64 true "成员关系ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/memberships/{memberId} [delete]
func (h *MembershipHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "memberId")
	if !ok {
		return
	}

	if err := h.membershipService.Delete(projectID, memberID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}

// AcceptInvitation 接受邀请
// @Summary 当前用户通过token接受项目邀请
// @Tags Membership
// @Accept json
// @Produce json
// @Param request body dto.AcceptInvitationRequest true "接受邀请请求"
// @Success 200 {object} utils.Response{data=dto.MembershipResponse}
// @Router /api/v1/invitations/accept [post]
func (h *MembershipHandler) AcceptInvitation(c *gin.Context) {
	var req dto.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	membership, err := h.membershipService.AcceptInvitation(middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, membership)
}
