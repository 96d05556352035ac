package user

import (
	"sort"
	"strings"
)

// 可排序字段
const (
	SortByID    = "id"
	SortByName  = "name"
	SortByEmail = "email"
	SortByRole  = "role"
)

// OrderDesc 降序；其他任何值都按升序处理
const OrderDesc = "desc"

// ListParams 列表查询参数
type ListParams struct {
	Search string // 按姓名或邮箱做不区分大小写的子串匹配，空串匹配全部
	Page   int    // 页码，从1开始
	Limit  int    // 每页数量
	SortBy string // id | name | email | role，其他值保持存储顺序
	Order  string // asc | desc（不区分大小写）
}

// Page 列表查询结果
type Page struct {
	Data  []*User
	Total int
	Page  int
	Limit int
	Pages int
}

// Filter 按姓名或邮箱过滤
func Filter(users []*User, search string) []*User {
	if search == "" {
		return users
	}
	needle := strings.ToLower(search)
	out := make([]*User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, u)
		}
	}
	return out
}

// Sort 稳定升序排序；order为desc时把升序结果整体反转
// 注意：整体反转会让键相同的记录顺序也反过来
func Sort(users []*User, sortBy, order string) []*User {
	less := lessFunc(sortBy)
	if less == nil {
		return users
	}
	sorted := make([]*User, len(users))
	copy(sorted, users)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	if strings.ToLower(order) == OrderDesc {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}
	return sorted
}

func lessFunc(sortBy string) func(a, b *User) bool {
	switch sortBy {
	case SortByID:
		return func(a, b *User) bool { return a.ID < b.ID }
	case SortByName:
		return func(a, b *User) bool { return a.Name < b.Name }
	case SortByEmail:
		return func(a, b *User) bool { return a.Email < b.Email }
	case SortByRole:
		return func(a, b *User) bool { return a.Role < b.Role }
	default:
		return nil
	}
}

// Paginate 切出第page页，越界时返回空页而不是错误
// 调用方保证 page >= 1 且 limit >= 1
func Paginate(users []*User, page, limit int) *Page {
	total := len(users)
	// 先比较再相乘，避免超大page/limit溢出
	start := total
	if page-1 <= total/limit {
		start = (page - 1) * limit
	}
	end := total
	if limit < total-start {
		end = start + limit
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return &Page{
		Data:  users[start:end],
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}
}

// NextID 分配新ID：max(已有ID)+1，空集合返回1
func NextID(users []*User) int {
	maxID := 0
	for _, u := range users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return maxID + 1
}

// indexOf 返回id所在下标，不存在返回-1
func indexOf(users []*User, id int) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// findByEmail 不区分大小写查找邮箱
func findByEmail(users []*User, email string) *User {
	for _, u := range users {
		if u.SameEmail(email) {
			return u
		}
	}
	return nil
}
