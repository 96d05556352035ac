package user

import (
	"github.com/xiebiao/usercenter/internal/domain/user"
)

// UserDTO 用户响应（应用层DTO）
// 字段顺序与持久化格式一致：id, name, email, role
type UserDTO struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toDTO(u *user.User) *UserDTO {
	return &UserDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

func toDTOs(users []*user.User) []*UserDTO {
	out := make([]*UserDTO, len(users))
	for i, u := range users {
		out[i] = toDTO(u)
	}
	return out
}
