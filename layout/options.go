package layout

// BuildOptions 配置布局阶段所需的依赖，例如文本测量后端。
// Measurer 在启动时获取一次并显式传入，布局核心不持有任何全局状态。
type BuildOptions struct {
	Measurer Measurer
	Debug    DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	Anchors bool // 在调试 JSON 中输出解析后的 anchor 列表
}

// Surface 是注入的绘图表面：依次接收矩形、线段、文本与图片指令。
// 所有坐标与尺寸与 GridSpec 使用同一长度单位（mm）。
type Surface interface {
	AddRect(Rect) error
	AddLine(Line) error
	AddText(TextBox) error
	AddImage(ImageBox) error
}
