package dto

import "encoding/json"

// ListUsersQuery 列表查询参数
// 未提供时使用默认值：page=1, limit=10, sort_by=id, order=asc
type ListUsersQuery struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=10"`
	SortBy string `form:"sort_by,default=id"`
	Order  string `form:"order,default=asc"`
}

// CreateUserRequest 创建用户请求
// 说明：不使用binding tag，字段校验在领域层统一完成并一次返回全部违规项
type CreateUserRequest struct {
	Name  string `json:"name" example:"Alice Johnson"`
	Email string `json:"email" example:"alice@example.com"`
	Role  string `json:"role" example:"Admin"`
}

// UpdateUserRequest 部分更新请求，未提供的字段保持不变
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty" example:"Alice Smith"`
	Email *string `json:"email,omitempty" example:"alice.smith@example.com"`
	Role  *string `json:"role,omitempty" example:"User"`
}

// UserFieldsFromJSON 从请求体的原始字段中取出姓名、邮箱、角色
// 出现但不是JSON字符串的字段（包括null）记为空串，交给领域校验报告违规；
// 未出现的字段保持nil，其他字段忽略
func UserFieldsFromJSON(raw map[string]json.RawMessage) UpdateUserRequest {
	return UpdateUserRequest{
		Name:  stringField(raw, "name"),
		Email: stringField(raw, "email"),
		Role:  stringField(raw, "role"),
	}
}

// ToCreate 未提供的字段按空串处理
func (r UpdateUserRequest) ToCreate() CreateUserRequest {
	return CreateUserRequest{
		Name:  deref(r.Name),
		Email: deref(r.Email),
		Role:  deref(r.Role),
	}
}

func stringField(raw map[string]json.RawMessage, key string) *string {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	var s string
	// null解码到string不报错，需要单独识别
	if string(v) == "null" || json.Unmarshal(v, &s) != nil {
		s = ""
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportQuery 导出参数
type ExportQuery struct {
	Format string `form:"format,default=json" enums:"csv,json"`
}

// UserResponse 用户响应
type UserResponse struct {
	ID    int    `json:"id" example:"1"`
	Name  string `json:"name" example:"Alice Johnson"`
	Email string `json:"email" example:"alice@example.com"`
	Role  string `json:"role" example:"Admin"`
}

// UserListResponse 分页列表响应
type UserListResponse struct {
	Data  []UserResponse `json:"data"`
	Total int            `json:"total" example:"5"`
	Page  int            `json:"page" example:"1"`
	Limit int            `json:"limit" example:"10"`
	Pages int            `json:"pages" example:"1"`
}
