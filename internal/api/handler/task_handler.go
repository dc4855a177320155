package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pm/internal/api/middleware"
	"agile-pm/internal/dto"
	"agile-pm/internal/service"
	"agile-pm/pkg/utils"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create 创建任务
// @Summary 创建任务
// @Tags Task
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.CreateTaskRequest true "创建任务请求"
// @Success 200 {object} utils.Response{data=dto.TaskResponse}
// @Router /api/v1/projects/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	task, err := h.taskService.Create(projectID, middleware.CurrentUserID(c), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, task)
}

// List 任务列表
// @Summary 任务列表
// @Tags Task
// @Produce json
// @Param id path int64 true "项目ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} utils.PageResponse{data=[]dto.TaskResponse}
// @Router /api/v1/projects/{id}/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	tasks, total, err := h.taskService.List(projectID, query.GetPage(), query.GetPageSize())
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.PageSuccess(c, tasks, total, query.GetPage(), query.GetPageSize())
}

// GetByRef 按项目内编号查询任务
// @Summary 按项目内编号查询任务
// @Tags Task
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Success 200 {object} utils.Response{data=dto.TaskResponse}
// @Router /api/v1/projects/{id}/tasks/{ref} [get]
func (h *TaskHandler) GetByRef(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}

	task, err := h.taskService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, task)
}

// Update 更新任务
// @Summary 更新任务(乐观锁, version必传)
// @Tags Task
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Param request body dto.UpdateTaskRequest true "更新任务请求"
// @Success 200 {object} utils.Response{data=dto.TaskResponse}
// @Router /api/v1/projects/{id}/tasks/{ref} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", err.Error())
		return
	}

	current, err := h.taskService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	task, err := h.taskService.Update(projectID, current.ID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, task)
}

// Delete 删除任务
// @Summary 删除任务
// @Tags Task
// @Produce json
// @Param id path int64 true "项目ID"
// @Param ref path int64 true "项目内编号"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/tasks/{ref} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, ok := pathID(c, "ref")
	if !ok {
		return
	}

	current, err := h.taskService.GetByRef(projectID, ref)
	if err != nil {
		utils.Error(c, err)
		return
	}
	if err := h.taskService.Delete(projectID, current.ID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, nil)
}
