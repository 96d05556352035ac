package user

import (
	"strings"
)

// User 用户实体
// DDD设计说明：
// 1. 集合中唯一的实体类型，ID创建后不可变
// 2. Email唯一性按不区分大小写比较
// 3. 领域实体不带json/gorm tag（持久化层负责映射）
type User struct {
	ID    int
	Name  string
	Email string
	Role  string
}

// Clone 返回副本（快照语义，调用方修改不影响存储）
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Validate 校验实体，返回全部违反的规则（不是只返回第一个）
func (u *User) Validate() []string {
	var violations []string
	if u.Name == "" {
		violations = append(violations, "姓名必填且必须是字符串")
	}
	if u.Email == "" {
		violations = append(violations, "邮箱必填且必须是字符串")
	}
	if u.Role == "" {
		violations = append(violations, "角色必填且必须是字符串")
	}
	// 邮箱非空时才检查格式
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		violations = append(violations, "邮箱格式不正确")
	}
	return violations
}

// SameEmail 不区分大小写比较邮箱
func (u *User) SameEmail(email string) bool {
	return strings.EqualFold(u.Email, email)
}

// Patch 部分更新，nil字段表示不修改
type Patch struct {
	Name  *string
	Email *string
	Role  *string
}

// IsEmpty 是否没有任何字段需要修改
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil
}

// ApplyTo 将补丁叠加到u的副本上，返回更新后的记录（u本身不变）
func (p Patch) ApplyTo(u *User) *User {
	merged := u.Clone()
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Email != nil {
		merged.Email = *p.Email
	}
	if p.Role != nil {
		merged.Role = *p.Role
	}
	return merged
}

// SeedUsers 初始数据（存储为空时写入，也作为测试夹具）
func SeedUsers() []*User {
	return []*User{
		{ID: 1, Name: "Alice Johnson", Email: "alice@example.com", Role: "Admin"},
		{ID: 2, Name: "Bob Smith", Email: "bob@example.com", Role: "User"},
		{ID: 3, Name: "Carol Davis", Email: "carol@example.com", Role: "Manager"},
		{ID: 4, Name: "David Wilson", Email: "david@example.com", Role: "User"},
		{ID: 5, Name: "Eva Martinez", Email: "eva@example.com", Role: "Admin"},
	}
}

// CloneAll 深拷贝集合
func CloneAll(users []*User) []*User {
	out := make([]*User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}
