package binding

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX 从工作簿的第一个 sheet 读取两列的 键/值 表，构造可供
// Interpolate 使用的数据映射。A 列是点分路径（如 project.name），B 列是值；
// 键为空的行跳过。
func LoadXLSX(path string) (map[string]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("打开数据工作簿 %s 失败: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("数据工作簿 %s 没有任何 sheet", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取 sheet %s 失败: %w", sheets[0], err)
	}

	data := map[string]any{}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := strings.TrimSpace(row[0])
		if key == "" {
			continue
		}
		insertPath(data, strings.Split(key, "."), strings.TrimSpace(row[1]))
	}
	return data, nil
}

// insertPath 沿点分路径建立嵌套 map，叶子写入字符串值。
// 路径冲突时（途中某段已是叶子值）后写者覆盖为子树。
func insertPath(m map[string]any, segments []string, value string) {
	if len(segments) == 1 {
		m[segments[0]] = value
		return
	}
	child, ok := m[segments[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[segments[0]] = child
	}
	insertPath(child, segments[1:], value)
}
