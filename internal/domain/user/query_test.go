package user

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(users []*User) []int {
	out := make([]int, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	users := SeedUsers()

	tests := []struct {
		name   string
		search string
		want   []int
	}{
		{"空串匹配全部", "", []int{1, 2, 3, 4, 5}},
		{"按姓名不区分大小写", "SMITH", []int{2}},
		{"按邮箱", "eva@", []int{5}},
		{"子串匹配多条", "a", []int{1, 2, 3, 4, 5}},
		{"不匹配角色", "Manager", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(users, tt.search)))
		})
	}
}

func TestSort(t *testing.T) {
	users := []*User{
		{ID: 3, Name: "Cat", Email: "c@x.com", Role: "User"},
		{ID: 1, Name: "Ann", Email: "a@x.com", Role: "Admin"},
		{ID: 2, Name: "Bob", Email: "b@x.com", Role: "User"},
		{ID: 4, Name: "Dan", Email: "d@x.com", Role: "Admin"},
	}

	t.Run("按ID升序", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3, 4}, ids(Sort(users, SortByID, "asc")))
	})

	t.Run("降序不区分大小写", func(t *testing.T) {
		assert.Equal(t, []int{4, 3, 2, 1}, ids(Sort(users, SortByName, "DESC")))
	})

	t.Run("相同键升序保持原顺序", func(t *testing.T) {
		assert.Equal(t, []int{1, 4, 3, 2}, ids(Sort(users, SortByRole, "asc")))
	})

	t.Run("降序整体反转相同键的顺序", func(t *testing.T) {
		assert.Equal(t, []int{2, 3, 4, 1}, ids(Sort(users, SortByRole, "desc")))
	})

	t.Run("未知字段保持存储顺序", func(t *testing.T) {
		assert.Equal(t, []int{3, 1, 2, 4}, ids(Sort(users, "created_at", "desc")))
	})

	t.Run("不修改输入", func(t *testing.T) {
		Sort(users, SortByID, "asc")
		assert.Equal(t, []int{3, 1, 2, 4}, ids(users))
	})
}

func TestPaginate(t *testing.T) {
	three := SeedUsers()[:3]

	t.Run("第二页只剩一条", func(t *testing.T) {
		p := Paginate(three, 2, 2)
		assert.Equal(t, []int{3}, ids(p.Data))
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, 2, p.Pages)
	})

	t.Run("页码越界返回空页", func(t *testing.T) {
		p := Paginate(three, 5, 2)
		assert.Empty(t, p.Data)
		assert.Equal(t, 3, p.Total)
	})

	t.Run("空集合", func(t *testing.T) {
		p := Paginate(nil, 1, 10)
		assert.Empty(t, p.Data)
		assert.Equal(t, 0, p.Pages)
	})

	t.Run("超大参数不溢出", func(t *testing.T) {
		p := Paginate(three, math.MaxInt, math.MaxInt)
		assert.Empty(t, p.Data)
		assert.Equal(t, 1, p.Pages)
	})

	t.Run("任意page和limit", func(t *testing.T) {
		users := make([]*User, 23)
		for i := range users {
			users[i] = &User{ID: i + 1}
		}
		for limit := 1; limit <= 25; limit++ {
			seen := 0
			for page := 1; page <= 26; page++ {
				p := Paginate(users, page, limit)
				require.LessOrEqual(t, len(p.Data), limit)
				require.Equal(t, int(math.Ceil(23/float64(limit))), p.Pages)
				seen += len(p.Data)
			}
			assert.Equal(t, 23, seen, "limit=%d 时所有页合起来应覆盖全部记录", limit)
		}
	})
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID(nil))
	assert.Equal(t, 6, NextID(SeedUsers()))
	assert.Equal(t, 10, NextID([]*User{{ID: 9}, {ID: 2}}))
}
