package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name string
		user User
		want []string
	}{
		{"合法记录", User{Name: "X", Email: "x@a.com", Role: "User"}, nil},
		{"全部为空", User{}, []string{"姓名必填且必须是字符串", "邮箱必填且必须是字符串", "角色必填且必须是字符串"}},
		{"邮箱缺少@", User{Name: "X", Email: "xa.com", Role: "User"}, []string{"邮箱格式不正确"}},
		{"多项违规一起返回", User{Email: "bad", Role: ""}, []string{"姓名必填且必须是字符串", "角色必填且必须是字符串", "邮箱格式不正确"}},
		{"空白字符不算空", User{Name: " ", Email: "@", Role: " "}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.Validate())
		})
	}
}

func TestUser_SameEmail(t *testing.T) {
	u := &User{Email: "a@x.com"}
	assert.True(t, u.SameEmail("A@X.com"))
	assert.False(t, u.SameEmail("b@x.com"))
}

func TestPatch_ApplyTo(t *testing.T) {
	orig := &User{ID: 1, Name: "A", Email: "a@x.com", Role: "User"}

	t.Run("只修改提供的字段", func(t *testing.T) {
		got := Patch{Role: strPtr("Admin")}.ApplyTo(orig)
		assert.Equal(t, &User{ID: 1, Name: "A", Email: "a@x.com", Role: "Admin"}, got)
		assert.Equal(t, "User", orig.Role, "原记录不应被修改")
	})

	t.Run("提供空串也算修改", func(t *testing.T) {
		got := Patch{Name: strPtr("")}.ApplyTo(orig)
		assert.Equal(t, "", got.Name)
		assert.Equal(t, []string{"姓名必填且必须是字符串"}, got.Validate())
	})

	t.Run("空补丁", func(t *testing.T) {
		assert.True(t, Patch{}.IsEmpty())
		assert.Equal(t, orig, Patch{}.ApplyTo(orig))
	})
}

func TestCloneAll(t *testing.T) {
	users := SeedUsers()
	clones := CloneAll(users)
	clones[0].Name = "changed"
	assert.Equal(t, "Alice Johnson", users[0].Name)
}
