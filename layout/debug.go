package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteDebugJSON 将布局结果落盘为缩进 JSON，用于排查网格占用、折行与 anchor 解析。
// 目标目录不存在时自动创建；res 为空时不产出文件。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化布局结果失败: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
