package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/cartouche/layout"
	"github.com/ByLCY/cartouche/renderer"
)

// MediaTypePDF 是导出产物的媒体类型。
const MediaTypePDF = "application/pdf"

// PDF 文件头，落盘前据此确认渲染产物与声明的媒体类型一致。
var pdfMagic = []byte("%PDF")

// Save 渲染布局结果并写入目标文件。
// 渲染或写盘失败时返回适合直接展示给用户的错误，调用方据此终止导出。
func Save(result *layout.Result, r renderer.Renderer, outPath string) error {
	if result == nil {
		return fmt.Errorf("没有可导出的布局结果")
	}
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	data, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return fmt.Errorf("渲染结果不是 %s 格式", MediaTypePDF)
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", outPath, err)
	}
	return nil
}
