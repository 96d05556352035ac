// Package codec 用户集合的持久化格式
//
// 文件和Redis中存的都是同一种格式：按集合顺序排列的
// {id, name, email, role}对象数组，2空格缩进，便于人工查看。
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xiebiao/usercenter/internal/domain/user"
)

// Record 持久化记录（字段顺序即输出顺序）
type Record struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// FromEntity 领域实体 → 持久化记录
func FromEntity(u *user.User) Record {
	return Record{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// ToEntity 持久化记录 → 领域实体
func (r Record) ToEntity() *user.User {
	return &user.User{ID: r.ID, Name: r.Name, Email: r.Email, Role: r.Role}
}

// Marshal 编码整个集合，空集合编码为[]
func Marshal(users []*user.User) ([]byte, error) {
	records := make([]Record, len(users))
	for i, u := range users {
		records[i] = FromEntity(u)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("编码用户集合失败: %w", err)
	}
	return data, nil
}

// Unmarshal 解码整个集合，空内容视为空集合
func Unmarshal(data []byte) ([]*user.User, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*user.User{}, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("解码用户集合失败: %w", err)
	}
	users := make([]*user.User, len(records))
	for i, r := range records {
		users[i] = r.ToEntity()
	}
	return users, nil
}
