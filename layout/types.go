package layout

// 该文件定义标题栏布局的输入规格、绘图原语与资源描述，供布局计算、渲染与调试 JSON 共用。

// Result 保存单张幻灯片的布局结果与资源信息。
type Result struct {
	Slide     Slide        `json:"slide"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
	// Anchors 仅在开启 DebugOptions.Anchors 时填充。
	Anchors []Anchor `json:"anchors,omitempty"`
}

// ResourceSet 记录解析出的颜色与图片定义。
type ResourceSet struct {
	Colors map[string]Color         `json:"colors"`
	Images map[string]ImageResource `json:"images"`
}

// ImageResource 记录图片资源，宽高统一以毫米为单位保存。
type ImageResource struct {
	Name   string  `json:"name"`
	Src    string  `json:"src"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Slide 记录幻灯片尺寸与最终可以直接渲染的元素（单位：mm，原点在左上角）。
type Slide struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Rects  []Rect     `json:"rects,omitempty"`
	Lines  []Line     `json:"lines,omitempty"`
	Texts  []TextBox  `json:"texts,omitempty"`
	Images []ImageBox `json:"images,omitempty"`
}

// TextBox 表示一个已经排好坐标的文本块。Content 内的换行符分隔各行。
type TextBox struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	FontSize float64 `json:"fontSize"` // pt
	Bold     bool    `json:"bold,omitempty"`
	Color    Color   `json:"color"`
	Align    string  `json:"align,omitempty"` // left（默认）/center/right
}

// ImageBox 用于描述图片位置与尺寸。
type ImageBox struct {
	Path   string  `json:"path"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// Rect 表示一个矩形。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"` // mm
	FillColor   *Color  `json:"fillColor,omitempty"` // 为空表示不填充
}

// Palette 定义标题栏使用的四种颜色。
type Palette struct {
	Line  Color `json:"line"`
	Label Color `json:"label"`
	Text  Color `json:"text"`
	Fill  Color `json:"fill"`
}

// GridSpec 描述标题栏表格所在的区域与网格划分。
// 区域由画布尺寸减去右/下偏移倒推得到，因此无论画布多大，表格始终锚定在右下角。
type GridSpec struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`

	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
	RightOffset  float64 `json:"rightOffset"`
	BottomOffset float64 `json:"bottomOffset"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`

	StrokeWidth   float64 `json:"strokeWidth"`   // mm
	LabelFontSize float64 `json:"labelFontSize"` // pt
	ValueFontSize float64 `json:"valueFontSize"` // pt
	CellPadding   float64 `json:"cellPadding"`   // mm，<=0 时取单元格短边的 0.08

	Palette Palette `json:"palette"`
}

// CellSpec 是稀疏的单元格描述。缺省位置视为空单元格，只画边框。
type CellSpec struct {
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	Label    string  `json:"label,omitempty"`
	Value    string  `json:"value,omitempty"`
	Colspan  int     `json:"colspan,omitempty"`  // <1 视为 1
	Rowspan  int     `json:"rowspan,omitempty"`  // <1 视为 1
	MaxLines int     `json:"maxLines,omitempty"` // <1 时取默认 2
	FontSize float64 `json:"fontSize,omitempty"` // pt，0 时用表格默认值
	Image    string  `json:"image,omitempty"`    // 图片路径或资源名
}

// Anchor 是跨行/跨列区域的左上角拥有者。Span 已按网格边界裁剪。
type Anchor struct {
	Row     int       `json:"row"`
	Col     int       `json:"col"`
	Colspan int       `json:"colspan"`
	Rowspan int       `json:"rowspan"`
	Cell    *CellSpec `json:"cell,omitempty"`
}

// DocumentMeta 保存导出文件的元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// DefaultPalette 是 GridSpec 未指定颜色时的默认配色。
func DefaultPalette() Palette {
	return Palette{
		Line:  Color{R: 0x7A, G: 0x93, B: 0xA6},
		Label: Color{R: 0x6B, G: 0x72, B: 0x80},
		Text:  Color{R: 0, G: 0, B: 0},
		Fill:  Color{R: 255, G: 255, B: 255},
	}
}
