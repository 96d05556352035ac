package user

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/pretty"

	"github.com/xiebiao/usercenter/internal/domain/user"
	apperrors "github.com/xiebiao/usercenter/pkg/errors"
	"github.com/xiebiao/usercenter/pkg/metrics"
)

// 导出格式
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var csvHeader = []string{"id", "name", "email", "role"}

// ExportUsersUseCase 导出用例
// 导出完整集合（不过滤、不分页），保持存储顺序
type ExportUsersUseCase struct {
	userService user.Service
}

// NewExportUsersUseCase 创建导出用例
func NewExportUsersUseCase(userService user.Service) *ExportUsersUseCase {
	return &ExportUsersUseCase{userService: userService}
}

// ExportResult 导出结果，HTTP层作为附件返回
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Execute 执行导出，format不区分大小写，空值按json处理
func (uc *ExportUsersUseCase) Execute(ctx context.Context, format string) (result *ExportResult, err error) {
	defer func(start time.Time) { metrics.ObserveUserOperation("export", err, time.Since(start)) }(time.Now())

	format = strings.ToLower(format)
	if format == "" {
		format = FormatJSON
	}
	if format != FormatCSV && format != FormatJSON {
		return nil, apperrors.ErrExportFormat
	}

	users, err := uc.userService.Export(ctx)
	if err != nil {
		return nil, err
	}
	metrics.SetUsersStored(len(users))

	if format == FormatCSV {
		content, err := encodeCSV(users)
		if err != nil {
			return nil, apperrors.Wrap(err, "导出CSV失败")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "users.csv"}, nil
	}

	content, err := encodeJSON(users)
	if err != nil {
		return nil, apperrors.Wrap(err, "导出JSON失败")
	}
	return &ExportResult{Content: content, ContentType: "application/json", Filename: "users.json"}, nil
}

func encodeCSV(users []*user.User) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := w.Write([]string{strconv.Itoa(u.ID), u.Name, u.Email, u.Role}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSON(users []*user.User) ([]byte, error) {
	raw, err := json.Marshal(toDTOs(users))
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(raw, &pretty.Options{Indent: "  ", Width: 80}), nil
}
