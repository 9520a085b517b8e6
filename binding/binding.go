package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 单元格文本里的占位符形如 ${project.name} 或 ${rows[0].title}。
var placeholder = regexp.MustCompile(`\$\{([^}]*)\}`)

// Interpolate 将文本中的占位符替换为 data 中对应路径的值。
// data 为空、文本不含占位符或路径无法解析时，占位符原样保留，便于排查。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		val, ok := lookup(data, path)
		if !ok {
			return match
		}
		return fmt.Sprint(val)
	})
}

// lookup 沿点分路径在嵌套的 map/数组中下钻，段内允许 [i] 下标（如 revs[0]）。
func lookup(data any, path string) (any, bool) {
	cur := data
	for _, seg := range strings.Split(path, ".") {
		key, idxs, ok := splitIndexes(seg)
		if !ok {
			return nil, false
		}
		if key != "" {
			m, isMap := cur.(map[string]any)
			if !isMap {
				return nil, false
			}
			v, found := m[key]
			if !found {
				return nil, false
			}
			cur = v
		}
		for _, idx := range idxs {
			arr, isArr := cur.([]any)
			if !isArr || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			cur = arr[idx]
		}
	}
	return cur, true
}

// splitIndexes 把 "revs[1][0]" 拆成字段名与下标序列；下标不是数字时整段判为无效。
func splitIndexes(seg string) (string, []int, bool) {
	open := strings.IndexByte(seg, '[')
	if open == -1 {
		return seg, nil, true
	}
	name := seg[:open]
	var idxs []int
	rest := seg[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		idxs = append(idxs, idx)
		rest = rest[end+1:]
	}
	return name, idxs, true
}
