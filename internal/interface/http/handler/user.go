package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/usercenter/internal/application/user"
	"github.com/xiebiao/usercenter/internal/interface/http/dto"
	apperrors "github.com/xiebiao/usercenter/pkg/errors"
	"github.com/xiebiao/usercenter/pkg/response"
)

// UserHandler 用户HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 不包含业务逻辑（业务逻辑在domain和application层）
// 3. 错误统一交给response.Error，按业务码映射HTTP状态码
type UserHandler struct {
	listUseCase   *appuser.ListUsersUseCase
	getUseCase    *appuser.GetUserUseCase
	createUseCase *appuser.CreateUserUseCase
	updateUseCase *appuser.UpdateUserUseCase
	deleteUseCase *appuser.DeleteUserUseCase
	exportUseCase *appuser.ExportUsersUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	listUseCase *appuser.ListUsersUseCase,
	getUseCase *appuser.GetUserUseCase,
	createUseCase *appuser.CreateUserUseCase,
	updateUseCase *appuser.UpdateUserUseCase,
	deleteUseCase *appuser.DeleteUserUseCase,
	exportUseCase *appuser.ExportUsersUseCase,
) *UserHandler {
	return &UserHandler{
		listUseCase:   listUseCase,
		getUseCase:    getUseCase,
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		exportUseCase: exportUseCase,
	}
}

// List 用户列表
// @Summary      用户列表
// @Description  按姓名或邮箱搜索（不区分大小写），排序后分页
// @Tags         用户
// @Produce      json
// @Param        search   query string false "搜索关键词"
// @Param        page     query int    false "页码" default(1)
// @Param        limit    query int    false "每页数量" default(10)
// @Param        sort_by  query string false "排序字段" Enums(id, name, email, role) default(id)
// @Param        order    query string false "排序方向" Enums(asc, desc) default(asc)
// @Success      200 {object} response.Response{data=dto.UserListResponse}
// @Failure      400 {object} response.Response "page或limit不是正整数"
// @Router       /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var q dto.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperrors.Validation("page和limit必须是正整数"))
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appuser.ListUsersRequest{
		Search: q.Search,
		Page:   q.Page,
		Limit:  q.Limit,
		SortBy: q.SortBy,
		Order:  q.Order,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, toUserResponses(result.Data), result.Total, result.Page, result.Limit, result.Pages)
}

// Get 用户详情
// @Summary      用户详情
// @Tags         用户
// @Produce      json
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=dto.UserResponse}
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toUserResponse(result))
}

// Create 创建用户
// @Summary      创建用户
// @Description  姓名、邮箱、角色必填，邮箱必须包含@且不区分大小写唯一
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateUserRequest true "用户信息"
// @Success      201 {object} response.Response{data=dto.UserResponse}
// @Failure      400 {object} response.Response "参数错误（details列出全部违规项）"
// @Failure      409 {object} response.Response "邮箱已被使用"
// @Router       /api/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	fields, err := bindJSONObject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := dto.UserFieldsFromJSON(fields).ToCreate()

	result, err := h.createUseCase.Execute(c.Request.Context(), appuser.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toUserResponse(result))
}

// Update 更新用户
// @Summary      更新用户
// @Description  部分更新，只修改请求中提供的字段；校验的是更新后的完整记录
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        id      path int                   true "用户ID"
// @Param        request body dto.UpdateUserRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=dto.UserResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "用户不存在"
// @Failure      409 {object} response.Response "邮箱已被使用"
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	fields, err := bindJSONObject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := dto.UserFieldsFromJSON(fields)

	result, err := h.updateUseCase.Execute(c.Request.Context(), id, appuser.UpdateUserRequest{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toUserResponse(result))
}

// Delete 删除用户
// @Summary      删除用户
// @Tags         用户
// @Produce      json
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "用户已删除", nil)
}

// Export 导出用户
// @Summary      导出用户
// @Description  以附件形式导出完整集合（不过滤、不分页）
// @Tags         用户
// @Produce      json
// @Produce      text/csv
// @Param        format query string false "导出格式（不区分大小写）" Enums(csv, json) default(json)
// @Success      200 {file} file
// @Failure      400 {object} response.Response "导出格式必须是csv或json"
// @Router       /api/users/export [get]
func (h *UserHandler) Export(c *gin.Context) {
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperrors.ErrExportFormat)
		return
	}

	result, err := h.exportUseCase.Execute(c.Request.Context(), q.Format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType+"; charset=utf-8", result.Content)
}

// =========================================
// 辅助函数
// =========================================

// pathID 解析路径中的ID，不是整数时按用户不存在处理（404）
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, apperrors.New(apperrors.ErrCodeUserNotFound, "用户 "+c.Param("id")+" 不存在"))
		return 0, false
	}
	return id, true
}

// bindJSONObject 请求体必须是非空JSON对象，返回原始字段
// 字段类型不在这里检查，交给领域校验一次列出全部违规项
func bindJSONObject(c *gin.Context) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
		return nil, apperrors.ErrBindError
	}
	return fields, nil
}

func toUserResponse(u *appuser.UserDTO) *dto.UserResponse {
	return &dto.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

func toUserResponses(users []*appuser.UserDTO) []dto.UserResponse {
	out := make([]dto.UserResponse, len(users))
	for i, u := range users {
		out[i] = *toUserResponse(u)
	}
	return out
}
